package container

import (
	"fmt"
	"sync"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups the registrations of one feature.
//
// Register is called when the provider is added (or, for deferred providers,
// on first resolution of one of its names) and must not resolve anything.
// Boot runs after every eager provider is registered and may resolve freely.
//
//	type MailProvider struct{ container.BaseProvider }
//
//	func (p *MailProvider) Register(app *container.Container) error {
//	    return app.Register("mailer", container.Service[Mailer]().Singleton())
//	}
type ServiceProvider interface {
	Register(app *Container) error
	Boot(app *Container) error

	// Provides lists the names a deferred provider registers.
	Provides() []string

	// IsDeferred reports whether registration waits until one of Provides()
	// is first resolved.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider supplies no-op Boot, Provides and IsDeferred.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }
func (p *BaseProvider) Provides() []string      { return nil }
func (p *BaseProvider) IsDeferred() bool        { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry registers and boots providers against one container.
type ProviderRegistry struct {
	app *Container

	mu         sync.Mutex
	eager      []ServiceProvider
	deferred   map[ServiceProvider]*deferredLoad
	registered map[ServiceProvider]bool
	booted     bool
}

// deferredLoad serializes the loads of one deferred provider.
type deferredLoad struct {
	mu sync.Mutex
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		deferred:   make(map[ServiceProvider]*deferredLoad),
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds provider. Eager providers register immediately, and boot
// immediately if the registry is already booted. Adding the same provider
// twice is a no-op.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	r.mu.Lock()
	if r.registered[provider] {
		r.mu.Unlock()
		return nil
	}
	r.registered[provider] = true

	if provider.IsDeferred() {
		load := &deferredLoad{}
		r.deferred[provider] = load
		r.mu.Unlock()
		return r.installPlaceholders(provider, load)
	}
	r.mu.Unlock()

	if err := provider.Register(r.app); err != nil {
		return fmt.Errorf("register provider %T: %w", provider, err)
	}

	r.mu.Lock()
	r.eager = append(r.eager, provider)
	booted := r.booted
	r.mu.Unlock()

	if booted {
		if err := provider.Boot(r.app); err != nil {
			return fmt.Errorf("boot provider %T: %w", provider, err)
		}
	}
	return nil
}

// installPlaceholders registers a transient stand-in for each deferred name.
// The first resolution registers the provider for real and resolves the
// descriptor it installed.
func (r *ProviderRegistry) installPlaceholders(provider ServiceProvider, load *deferredLoad) error {
	for _, name := range provider.Provides() {
		placeholder := Factory(func(res Resolver) (any, error) {
			if err := r.load(provider, load, name); err != nil {
				return nil, err
			}
			f, ok := res.(*frame)
			if !ok {
				return r.app.Resolve(name)
			}
			if d, _ := f.owner.lookup(name); d.deferred {
				return nil, fmt.Errorf("deferred provider %T did not register %q", provider, name)
			}
			// the placeholder's own entry is the last on the path
			return f.owner.resolve(name, f.path[:len(f.path)-1])
		})
		placeholder.deferred = true

		if err := r.app.Register(name, placeholder); err != nil {
			return err
		}
	}
	return nil
}

// load registers provider unless name already resolves to a real descriptor.
// It runs again if a Restore brings the placeholder back.
func (r *ProviderRegistry) load(provider ServiceProvider, load *deferredLoad, name string) error {
	load.mu.Lock()
	defer load.mu.Unlock()

	if d, ok := r.app.lookup(name); ok && !d.deferred {
		return nil
	}
	if err := provider.Register(r.app); err != nil {
		return fmt.Errorf("register provider %T: %w", provider, err)
	}
	if r.Booted() {
		if err := provider.Boot(r.app); err != nil {
			return fmt.Errorf("boot provider %T: %w", provider, err)
		}
	}
	return nil
}

// Boot calls Boot on every eager provider in registration order. Later calls
// are no-ops.
func (r *ProviderRegistry) Boot() error {
	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return nil
	}
	r.booted = true
	providers := append([]ServiceProvider(nil), r.eager...)
	r.mu.Unlock()

	for _, provider := range providers {
		if err := provider.Boot(r.app); err != nil {
			return fmt.Errorf("boot provider %T: %w", provider, err)
		}
	}
	return nil
}

// Booted reports whether Boot has been called.
func (r *ProviderRegistry) Booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted
}

// Providers returns the eager providers registered so far.
func (r *ProviderRegistry) Providers() []ServiceProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ServiceProvider(nil), r.eager...)
}
