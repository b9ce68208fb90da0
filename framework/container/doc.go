// Package container provides a scoped IoC container keyed by name.
//
// # Overview
//
// A Container maps names to descriptors (a resolver function plus a
// qualifier) and caches resolved values according to the qualifier:
//
//   - Transient: never cached, every Resolve runs the resolver
//   - Scoped: cached once per container
//   - Singleton: cached once at the root and shared by every scope
//
// Dependencies are resolved lazily, depth first, on first access.
//
// # Descriptors
//
//	c := container.New()
//
//	// Fixed value, Scoped by default
//	c.Register("database.path", container.Constant("todos.sqlite"))
//
//	// Function, Transient by default
//	c.Register("database.connection", container.Factory(func(r container.Resolver) (any, error) {
//	    path, err := container.Get[string](r, "database.path")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return sql.Open("sqlite3", path)
//	}).Singleton())
//
//	// Constructor style: new(Repository) then (*Repository).Init(r)
//	c.Register("todos.repository", container.Service[Repository]().Singleton())
//
// Scoped, Singleton and Transient return a new Descriptor, so one base
// descriptor can be registered under several names with different policies.
//
// # Resolving
//
//	raw, err := c.Resolve("todos.repository")
//	repo, err := container.Get[*Repository](c, "todos.repository")
//	repo := c.Make("todos.repository").(*Repository) // panics on error
//
// Requesting a name that is already being built on the same call chain fails
// with ErrCircularDependency instead of recursing forever.
//
// # Scopes
//
// Scope creates a child container. A child reads through to its ancestors'
// registrations, caches Scoped values itself, and delegates Singletons to the
// root. Registering on a child shadows the parent for that child only.
//
//	request := c.Scope()
//	request.Register("request.id", container.Constant(id))
//
// Singletons can only be registered on a root container.
//
// # Snapshots
//
// Save and Restore checkpoint a root container's registry and cache, LIFO.
// They are meant for test isolation:
//
//	c.Save()
//	c.Register("mailer", container.Constant(fakeMailer))
//	// ...
//	c.Restore()
//
// See containertest.Checkpoint for the testing.TB form.
//
// # Concurrency
//
// Resolution is synchronous. Each container guards its own maps, and never
// holds its lock while a resolver runs. If two goroutines race on the first
// resolution of a cached name, the first stored value wins and both observe it.
//
// # Service Providers
//
//	type TodosProvider struct{ container.BaseProvider }
//
//	func (p *TodosProvider) Register(app *container.Container) error {
//	    return app.Register("todos.repository", container.Service[Repository]().Singleton())
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&TodosProvider{})
//	registry.Boot()
//
// Deferred providers (IsDeferred true) register only when one of the names
// returned by Provides is first resolved.
package container
