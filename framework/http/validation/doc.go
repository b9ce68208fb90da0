// Package validation checks decoded request input against rule strings.
//
// Input is a map[string]any, usually the result of decoding a JSON body, so
// rules see JSON types: strings, float64 numbers, bools and nil.
//
//	err := validation.Validate(input, validation.Rules{
//	    "text": "string|min:1|max:500",
//	    "done": "boolean",
//	})
//
// Rules are pipe separated and run left to right; the first failing rule of a
// field stops that field. A field that is absent (or null) is skipped unless
// its rules include required.
//
// Available rules:
//   - required  present, non-null, and not blank when a string
//   - string    a JSON string
//   - boolean   a JSON boolean
//   - numeric   a JSON number
//   - integer   a JSON number without a fractional part
//   - min:n     strings have at least n characters, numbers are >= n
//   - max:n     strings have at most n characters, numbers are <= n
//   - in:a,b,c  the value, formatted with %v, is one of the listed options
//
// A failed validation is reported as *Errors, which is an error and encodes to
//
//	{"errors": {"field": ["message", ...]}}
package validation
