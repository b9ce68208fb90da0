package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-scoped/framework/container"
)

// ── Scope chain ───────────────────────────────────────────────────────────────

func TestScope_InheritsParentRegistrations(t *testing.T) {
	root := container.New()
	root.MustRegister("a", container.Constant("a"))

	child := root.Scope()
	grandchild := child.Scope()

	assert.Equal(t, "a", grandchild.Make("a"))
	assert.Same(t, root, grandchild.Root())
	assert.Same(t, child, grandchild.Parent())
	assert.False(t, grandchild.IsRoot())
}

func TestScope_SeesLaterParentRegistrations(t *testing.T) {
	root := container.New()
	child := root.Scope()

	root.MustRegister("late", container.Constant("late"))

	assert.True(t, child.Has("late"))
	assert.Equal(t, "late", child.Make("late"))
}

func TestScope_ShadowingDoesNotAffectParent(t *testing.T) {
	root := container.New()
	root.MustRegister("n", container.Constant("parent"))

	child := root.Scope()
	child.MustRegister("n", container.Constant("child"))
	grandchild := child.Scope()

	assert.Equal(t, "parent", root.Make("n"))
	assert.Equal(t, "child", child.Make("n"))
	assert.Equal(t, "child", grandchild.Make("n"), "descendants inherit the shadowing entry")
}

func TestScope_ChildRegistrationsInvisibleToParent(t *testing.T) {
	root := container.New()
	child := root.Scope()
	child.MustRegister("only.child", container.Constant(1))

	assert.False(t, root.Has("only.child"))
	assert.Equal(t, []string{"only.child"}, child.Names())
	assert.Empty(t, root.Names())
}

func TestScope_ScopedCachedPerContainer(t *testing.T) {
	root := container.New()
	d, calls := counted()
	root.MustRegister("n", d.Scoped())

	c1 := root.Scope()
	c2 := root.Scope()

	a := c1.Make("n")
	b := c2.Make("n")
	assert.Same(t, a, c1.Make("n"))
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, *calls)
	assert.False(t, root.Resolved("n"), "root cache untouched by child resolutions")
}

func TestScope_ScopedResolverSeesChildRegistrations(t *testing.T) {
	root := container.New()
	root.MustRegister("user", container.Constant("anonymous"))
	root.MustRegister("greeting", container.Factory(func(r container.Resolver) (any, error) {
		user, err := container.Get[string](r, "user")
		return "hello " + user, err
	}).Scoped())

	child := root.Scope()
	child.MustRegister("user", container.Constant("gopher"))

	assert.Equal(t, "hello gopher", child.Make("greeting"))
	assert.Equal(t, "hello anonymous", root.Make("greeting"))
}

// ── Singletons ────────────────────────────────────────────────────────────────

// Root R registers a call-counted singleton; two children and R resolve it.
func TestScope_SingletonSharedAcrossTree(t *testing.T) {
	root := container.New()
	d, calls := counted()
	root.MustRegister("db", d.Singleton())

	c1 := root.Scope()
	c2 := root.Scope()

	fromC1 := c1.Make("db")
	fromC2 := c2.Make("db")
	fromRoot := root.Make("db")

	assert.Same(t, fromC1, fromC2)
	assert.Same(t, fromC1, fromRoot)
	assert.Equal(t, 1, *calls)
	assert.True(t, root.Resolved("db"))
	assert.False(t, c1.Resolved("db"), "singletons are cached at the root only")
	assert.False(t, c2.Resolved("db"))
}

func TestScope_SingletonDeepTree(t *testing.T) {
	root := container.New()
	d, calls := counted()
	root.MustRegister("db", d.Singleton())

	leaf := root.Scope().Scope().Scope()
	other := root.Scope().Scope()

	assert.Same(t, leaf.Make("db"), other.Make("db"))
	assert.Equal(t, 1, *calls)
}

func TestScope_SingletonResolvesDependenciesAtRoot(t *testing.T) {
	root := container.New()
	root.MustRegister("dsn", container.Constant("root-dsn"))
	root.MustRegister("db", container.Factory(func(r container.Resolver) (any, error) {
		return container.Get[string](r, "dsn")
	}).Singleton())

	child := root.Scope()
	child.MustRegister("dsn", container.Constant("child-dsn"))

	assert.Equal(t, "root-dsn", child.Make("db"))
}

func TestScope_SingletonRegistrationOnChildFails(t *testing.T) {
	root := container.New()
	child := root.Scope()
	child.MustRegister("existing", container.Constant(1))
	before := child.Names()

	err := child.Register("db", container.Constant(1).Singleton())

	require.ErrorIs(t, err, container.ErrSingletonOnChild)
	assert.Equal(t, before, child.Names(), "registry unchanged")
	assert.False(t, child.Has("db"))
}
