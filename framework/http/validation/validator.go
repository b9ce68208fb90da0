package validation

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ── Errors ───────────────────────────────────────────────────────────────────

// Errors maps field names to their failure messages.
type Errors struct {
	Bag map[string][]string `json:"errors"`
}

func (e *Errors) add(field, msg string) {
	if e.Bag == nil {
		e.Bag = make(map[string][]string)
	}
	e.Bag[field] = append(e.Bag[field], msg)
}

// Has reports whether any field failed.
func (e *Errors) Has() bool { return len(e.Bag) > 0 }

// First returns the first message for field, or "".
func (e *Errors) First(field string) string {
	if msgs := e.Bag[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Error joins all messages, ordered by field name.
func (e *Errors) Error() string {
	fields := make([]string, 0, len(e.Bag))
	for f := range e.Bag {
		fields = append(fields, f)
	}
	slices.Sort(fields)

	var b strings.Builder
	b.WriteString("validation failed")
	for i, f := range fields {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(strings.Join(e.Bag[f], " "))
	}
	return b.String()
}

// ── Validator ────────────────────────────────────────────────────────────────

// Rules maps a field to its pipe separated rules, e.g. "required|string|max:80".
type Rules map[string]string

// Validator validates one input map against a rule set.
type Validator struct {
	data   map[string]any
	rules  Rules
	errors *Errors
	ran    bool
}

// Make creates a Validator. Nothing runs until Fails, Passes or Errors.
func Make(data map[string]any, rules Rules) *Validator {
	return &Validator{data: data, rules: rules, errors: &Errors{}}
}

// Validate runs rules against data and returns *Errors when any field fails.
func Validate(data map[string]any, rules Rules) error {
	v := Make(data, rules)
	if v.Fails() {
		return v.Errors()
	}
	return nil
}

// Fails reports whether any rule failed.
func (v *Validator) Fails() bool {
	v.validate()
	return v.errors.Has()
}

// Passes reports whether every rule passed.
func (v *Validator) Passes() bool { return !v.Fails() }

// Errors returns the error bag, running validation if needed.
func (v *Validator) Errors() *Errors {
	v.validate()
	return v.errors
}

func (v *Validator) validate() {
	if v.ran {
		return
	}
	v.ran = true

	for field, list := range v.rules {
		rules := splitRules(list)
		value, present := v.data[field]
		if (!present || value == nil) && !slices.Contains(rules, "required") {
			continue
		}

		for _, rule := range rules {
			name, param, _ := strings.Cut(rule, ":")
			if msg, ok := check(field, value, name, param); !ok {
				v.errors.add(field, msg)
				break
			}
		}
	}
}

func splitRules(list string) []string {
	var out []string
	for _, r := range strings.Split(list, "|") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

// check applies one rule and returns the failure message when it does not hold.
func check(field string, value any, rule, param string) (string, bool) {
	switch rule {
	case "required":
		if value == nil {
			return fmt.Sprintf("The %s field is required.", field), false
		}
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			return fmt.Sprintf("The %s field is required.", field), false
		}

	case "string":
		if _, ok := value.(string); !ok {
			return fmt.Sprintf("The %s must be a string.", field), false
		}

	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Sprintf("The %s field must be true or false.", field), false
		}

	case "numeric":
		if _, ok := number(value); !ok {
			return fmt.Sprintf("The %s must be a number.", field), false
		}

	case "integer":
		if n, ok := number(value); !ok || n != math.Trunc(n) {
			return fmt.Sprintf("The %s must be an integer.", field), false
		}

	case "min", "max":
		limit, err := strconv.ParseFloat(param, 64)
		if err != nil {
			return fmt.Sprintf("The %s rule %q has an invalid parameter.", field, rule), false
		}
		size, unit, ok := measure(value)
		if !ok {
			return fmt.Sprintf("The %s must be a string or a number.", field), false
		}
		if rule == "min" && size < limit {
			return fmt.Sprintf("The %s must be at least %s%s.", field, param, unit), false
		}
		if rule == "max" && size > limit {
			return fmt.Sprintf("The %s may not be greater than %s%s.", field, param, unit), false
		}

	case "in":
		got := fmt.Sprint(value)
		for _, opt := range strings.Split(param, ",") {
			if strings.TrimSpace(opt) == got {
				return "", true
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", field), false

	default:
		return fmt.Sprintf("The %s field has an unknown rule %q.", field, rule), false
	}

	return "", true
}

func number(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}

// measure returns the size min and max compare against: character count for
// strings, the value itself for numbers.
func measure(value any) (float64, string, bool) {
	if s, ok := value.(string); ok {
		return float64(utf8.RuneCountInString(s)), " characters", true
	}
	n, ok := number(value)
	return n, "", ok
}
