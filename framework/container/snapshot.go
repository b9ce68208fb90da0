package container

import (
	"maps"

	"go.uber.org/zap"
)

// snapshot is a shallow copy of a root's registry and cache.
type snapshot struct {
	registry map[string]Descriptor
	cache    map[string]any
}

// Save pushes a copy of the root's registry and cache onto the snapshot stack.
// Resolved values are copied by reference.
//
//	c.Save()
//	defer c.Restore()
//	c.Register("mailer", container.Constant(fakeMailer))
func (c *Container) Save() error {
	if c.parent != nil {
		return &Error{Op: "save", Err: ErrRootOnly}
	}

	c.mu.Lock()
	c.snapshots = append(c.snapshots, snapshot{
		registry: maps.Clone(c.registry),
		cache:    maps.Clone(c.cache),
	})
	depth := len(c.snapshots)
	c.mu.Unlock()

	c.shared.logger.Debug("container state saved", zap.Int("snapshots", depth))
	return nil
}

// Restore pops the most recent snapshot and replaces the root's registry and
// cache with it in place. Scopes see the restored state immediately since
// they always read through the live chain.
func (c *Container) Restore() error {
	if c.parent != nil {
		return &Error{Op: "restore", Err: ErrRootOnly}
	}

	c.mu.Lock()
	if len(c.snapshots) == 0 {
		c.mu.Unlock()
		return &Error{Op: "restore", Err: ErrEmptySnapshotStack}
	}
	saved := c.snapshots[len(c.snapshots)-1]
	c.snapshots = c.snapshots[:len(c.snapshots)-1]

	clear(c.registry)
	clear(c.cache)
	maps.Copy(c.registry, saved.registry)
	maps.Copy(c.cache, saved.cache)
	depth := len(c.snapshots)
	c.mu.Unlock()

	c.shared.logger.Debug("container state restored", zap.Int("snapshots", depth))
	return nil
}

// Snapshots returns the number of saved states waiting to be restored.
func (c *Container) Snapshots() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snapshots)
}
