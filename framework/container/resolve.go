package container

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ── Resolution ────────────────────────────────────────────────────────────────

// Resolve returns the value registered under name.
//
// A value cached in c is returned as is. Otherwise the nearest descriptor in
// the chain is invoked; singletons are resolved by the root so the whole tree
// shares one value. Scoped and singleton results are cached by the container
// that produced them.
func (c *Container) Resolve(name string) (any, error) {
	return c.resolve(name, nil)
}

// Make resolves name and panics on error.
//
//	repo := c.Make("todos.repository").(*todos.Repository)
func (c *Container) Make(name string) any {
	instance, err := c.Resolve(name)
	if err != nil {
		panic(err)
	}
	return instance
}

// resolve implements Resolve. path holds the resolutions currently running
// on this call chain, outermost first.
func (c *Container) resolve(name string, path []step) (any, error) {
	c.mu.RLock()
	cached, ok := c.cache[name]
	c.mu.RUnlock()
	if ok {
		d, _ := c.lookup(name)
		c.shared.notify(ResolveEvent{Name: name, Qualifier: d.qualifier, Cached: true})
		return cached, nil
	}

	d, ok := c.lookup(name)
	if !ok {
		return nil, c.fail(name, 0, ErrUnknownDependency)
	}

	if d.qualifier == Singleton && c.parent != nil {
		return c.parent.resolve(name, path)
	}

	current := step{owner: c, name: name}
	if slices.Contains(path, current) {
		return nil, c.fail(name, d.qualifier, fmt.Errorf("%w: %s", ErrCircularDependency, describe(path, name)))
	}

	instance, err := d.resolve(&frame{owner: c, path: append(slices.Clone(path), current)})
	if err != nil {
		var nested *Error
		if errors.As(err, &nested) && nested.reported {
			return nil, &Error{Op: "resolve", Name: name, Err: err, reported: true}
		}
		return nil, c.fail(name, d.qualifier, err)
	}

	if d.qualifier != Transient {
		c.mu.Lock()
		if existing, raced := c.cache[name]; raced {
			instance = existing
		} else {
			c.cache[name] = instance
		}
		c.mu.Unlock()
	}

	c.shared.notify(ResolveEvent{Name: name, Qualifier: d.qualifier})
	return instance, nil
}

// fail wraps err for name and reports it to the observers. Failures are
// reported once, by the resolution where they started; the resolutions
// waiting on it only wrap the error.
func (c *Container) fail(name string, q Qualifier, err error) error {
	wrapped := &Error{Op: "resolve", Name: name, Err: err, reported: true}
	c.shared.notify(ResolveEvent{Name: name, Qualifier: q, Err: wrapped})
	return wrapped
}

// step is one running resolution. The same name served by two containers of
// a chain may resolve to different descriptors, so both are part of it.
type step struct {
	owner *Container
	name  string
}

func describe(path []step, name string) string {
	names := make([]string, 0, len(path)+1)
	for _, s := range path {
		names = append(names, s.name)
	}
	return strings.Join(append(names, name), " -> ")
}

// frame is the Resolver handed to a resolver function. It is bound to the
// container that invoked the resolver and carries the resolution path.
type frame struct {
	owner *Container
	path  []step
}

func (f *frame) Resolve(name string) (any, error) {
	return f.owner.resolve(name, f.path)
}
