package container

import (
	"maps"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// Definitions maps dependency names to descriptors for bulk registration.
type Definitions map[string]Descriptor

// ── Container ─────────────────────────────────────────────────────────────────

// Container is a registry of named descriptors plus a cache of resolved values.
//
// Containers form a tree: Scope creates a child that reads through to its
// ancestors' registrations but never mutates them. Each container owns its
// cache; singletons are cached at the root only.
type Container struct {
	mu sync.RWMutex

	// name → descriptor, own registrations only
	registry map[string]Descriptor

	// name → resolved value, own cache only
	cache map[string]any

	// nil for a root container
	parent *Container

	// root only: LIFO stack of saved registry/cache states
	snapshots []snapshot

	// logger and observers, shared by the whole tree
	shared *settings
}

// New creates an empty root container.
func New(opts ...Option) *Container {
	return &Container{
		registry: make(map[string]Descriptor),
		cache:    make(map[string]any),
		shared:   newSettings(opts),
	}
}

// NewWithDescriptors creates a root container and registers defs in name order.
//
//	c, err := container.NewWithDescriptors(container.Definitions{
//	    "constants.pi":    container.Constant(math.Pi),
//	    "services.double": container.Constant(func(x float64) float64 { return x * 2 }),
//	})
func NewWithDescriptors(defs Definitions, opts ...Option) (*Container, error) {
	c := New(opts...)
	for _, name := range slices.Sorted(maps.Keys(defs)) {
		if err := c.Register(name, defs[name]); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ── Registration ──────────────────────────────────────────────────────────────

// Register stores d under name in this container and drops any value cached
// for name here. Ancestors, descendants and other names are untouched.
//
// Singletons may only be registered on a root container. A failed Register
// leaves the container unchanged.
func (c *Container) Register(name string, d Descriptor) error {
	if !d.Valid() {
		return &Error{Op: "register", Name: name, Err: ErrInvalidDescriptor}
	}
	if c.parent != nil && d.qualifier == Singleton {
		return &Error{Op: "register", Name: name, Err: ErrSingletonOnChild}
	}

	c.mu.Lock()
	c.registry[name] = d
	delete(c.cache, name)
	c.mu.Unlock()

	c.shared.logger.Debug("dependency registered",
		zap.String("name", name),
		zap.Stringer("qualifier", d.qualifier),
		zap.Int("depth", c.depth()),
	)
	return nil
}

// MustRegister is like Register but panics on error.
func (c *Container) MustRegister(name string, d Descriptor) {
	if err := c.Register(name, d); err != nil {
		panic(err)
	}
}

// AfterResolving registers a callback fired after every resolution served by
// any container of this tree.
func (c *Container) AfterResolving(fn func(ResolveEvent)) {
	if fn == nil {
		return
	}
	c.shared.mu.Lock()
	defer c.shared.mu.Unlock()
	c.shared.observers = append(c.shared.observers, fn)
}

// ── Scope chain ───────────────────────────────────────────────────────────────

// Scope creates a child container with an empty cache whose lookups fall back
// to c's live registry chain.
func (c *Container) Scope() *Container {
	return &Container{
		registry: make(map[string]Descriptor),
		cache:    make(map[string]any),
		parent:   c,
		shared:   c.shared,
	}
}

// Parent returns the enclosing container, or nil for a root.
func (c *Container) Parent() *Container { return c.parent }

// IsRoot reports whether c has no parent.
func (c *Container) IsRoot() bool { return c.parent == nil }

// Root returns the root of c's tree.
func (c *Container) Root() *Container {
	root := c
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// Logger returns the logger shared by the tree.
func (c *Container) Logger() *zap.Logger { return c.shared.logger }

func (c *Container) depth() int {
	n := 0
	for p := c.parent; p != nil; p = p.parent {
		n++
	}
	return n
}

// ── Lookup ────────────────────────────────────────────────────────────────────

// lookup returns the nearest descriptor for name: own registry first, then
// each ancestor's.
func (c *Container) lookup(name string) (Descriptor, bool) {
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		d, ok := cur.registry[name]
		cur.mu.RUnlock()
		if ok {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Has reports whether name is registered anywhere in the chain.
func (c *Container) Has(name string) bool {
	_, ok := c.lookup(name)
	return ok
}

// Resolved reports whether c's own cache holds a value for name.
func (c *Container) Resolved(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.cache[name]
	return ok
}

// Names returns every name visible from c, sorted.
func (c *Container) Names() []string {
	seen := make(map[string]struct{})
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		for name := range cur.registry {
			seen[name] = struct{}{}
		}
		cur.mu.RUnlock()
	}
	return slices.Sorted(maps.Keys(seen))
}
