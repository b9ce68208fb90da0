package container

import "fmt"

// Resolver is the name-keyed access surface handed to resolver functions and
// to code outside the container (HTTP handlers, jobs).
type Resolver interface {
	Resolve(name string) (any, error)
}

// Values is a static Resolver backed by a map. It lets a resolver be called in
// isolation:
//
//	d := container.Service[todos.Repository]()
//	repo, err := d.Resolve(container.Values{"database.connection": db})
type Values map[string]any

func (v Values) Resolve(name string) (any, error) {
	value, ok := v[name]
	if !ok {
		return nil, &Error{Op: "resolve", Name: name, Err: ErrUnknownDependency}
	}
	return value, nil
}

// Get resolves name through r and asserts the result to T.
//
//	db, err := container.Get[*bun.DB](r, "database.connection")
func Get[T any](r Resolver, name string) (T, error) {
	var zero T
	instance, err := r.Resolve(name)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, &Error{
			Op:   "resolve",
			Name: name,
			Err:  fmt.Errorf("%w: want %T, got %T", ErrTypeMismatch, zero, instance),
		}
	}
	return typed, nil
}

// MustGet is like Get but panics on error.
func MustGet[T any](r Resolver, name string) T {
	typed, err := Get[T](r, name)
	if err != nil {
		panic(err)
	}
	return typed
}
