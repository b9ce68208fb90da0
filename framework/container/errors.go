package container

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDescriptor  = errors.New("invalid descriptor")
	ErrUnknownDependency  = errors.New("unknown dependency")
	ErrSingletonOnChild   = errors.New("singleton can only be registered on root container")
	ErrRootOnly           = errors.New("can only be called on a root container")
	ErrEmptySnapshotStack = errors.New("no saved state")
	ErrCircularDependency = errors.New("circular dependency detected")
	ErrTypeMismatch       = errors.New("dependency type mismatch")
)

// Error records the failed operation and the dependency it concerned.
// Name is empty for container-wide operations (save, restore).
type Error struct {
	Op   string
	Name string
	Err  error

	// reported is set once observers have seen the failure.
	reported bool
}

func (e *Error) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("container: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Name, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
