package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/km-arc/go-scoped/framework/config"
	"github.com/km-arc/go-scoped/framework/container"
	"github.com/km-arc/go-scoped/framework/providers"
	"github.com/km-arc/go-scoped/framework/routing"
)

// Module is a feature: a service provider plus the routes it serves.
type Module interface {
	container.ServiceProvider
	Routes(r *routing.Router)
}

// Migrator is implemented by modules that own database tables.
type Migrator interface {
	Migrate(ctx context.Context, r container.Resolver) error
}

// Application is the root container of a running program. It embeds the
// Container and ProviderRegistry so startup code can register services and
// providers directly on it.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry

	config  *config.Config
	logger  *zap.Logger
	modules []Module

	routeOnce sync.Once
	router    *routing.Router
	routeErr  error
}

// New creates the application and registers the framework providers.
func New(cfg *config.Config, logger *zap.Logger) (*Application, error) {
	if cfg == nil {
		cfg = config.Load()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := container.New(container.WithLogger(logger.Named("container")))
	a := &Application{
		Container: c,
		Providers: container.NewProviderRegistry(c),
		config:    cfg,
		logger:    logger,
	}

	for _, p := range []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: cfg},
		&providers.LoggingServiceProvider{Logger: logger},
		&providers.DatabaseServiceProvider{},
		&providers.MetricsServiceProvider{},
		&providers.RoutingServiceProvider{},
		&providers.HTTPServiceProvider{},
	} {
		if err := a.Register(p); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot phase on all providers.
func (a *Application) Boot() error {
	return a.Providers.Boot()
}

// LoadModules enables the modules named by the "app.modules" binding, in
// order. Every name must be a key of available.
func (a *Application) LoadModules(available map[string]Module) error {
	names, err := container.Get[[]string](a, providers.ModulesKey)
	if err != nil {
		return err
	}

	for _, name := range names {
		m, ok := available[name]
		if !ok {
			return fmt.Errorf("unknown module %q", name)
		}
		if err := a.Register(m); err != nil {
			return fmt.Errorf("module %q: %w", name, err)
		}
		a.modules = append(a.modules, m)
		a.logger.Debug("module loaded", zap.String("module", name))
	}
	return nil
}

// Migrate boots the application and runs every loaded module's Migrate, in
// load order.
func (a *Application) Migrate(ctx context.Context) error {
	if err := a.Boot(); err != nil {
		return err
	}
	for _, m := range a.modules {
		mig, ok := m.(Migrator)
		if !ok {
			continue
		}
		if err := mig.Migrate(ctx, a); err != nil {
			return fmt.Errorf("migrate %T: %w", m, err)
		}
	}
	return nil
}

// Handler boots the application if needed and returns the router with every
// loaded module's routes. Routes are added once; later calls return the same
// router.
func (a *Application) Handler() (http.Handler, error) {
	a.routeOnce.Do(func() {
		if a.routeErr = a.Boot(); a.routeErr != nil {
			return
		}
		a.router, a.routeErr = container.Get[*routing.Router](a, providers.RouterKey)
		if a.routeErr != nil {
			return
		}
		for _, m := range a.modules {
			m.Routes(a.router)
		}
	})
	return a.router, a.routeErr
}

// Run serves HTTP on the configured port until ctx is done, then shuts the
// server down and closes the application.
func (a *Application) Run(ctx context.Context) error {
	handler, err := a.Handler()
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", ":"+a.config.App.Port)
	if err != nil {
		return err
	}
	return a.Serve(ctx, ln, handler)
}

// Serve is Run on an existing listener.
func (a *Application) Serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("listening",
			zap.String("app", a.config.App.Name),
			zap.String("addr", ln.Addr().String()),
			zap.String("env", a.config.App.Env),
		)
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		return errors.Join(err, a.Close())
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.logger.Info("shutting down")
	err := srv.Shutdown(shutdownCtx)
	return errors.Join(err, a.Close())
}

// Close releases resources held by resolved singletons. Services that were
// never resolved are not created just to be closed.
func (a *Application) Close() error {
	if !a.Resolved(providers.DBKey) {
		return nil
	}
	db, err := container.Get[*bun.DB](a, providers.DBKey)
	if err != nil {
		return err
	}
	return db.Close()
}

// Config returns the configuration the application was created with.
func (a *Application) Config() *config.Config { return a.config }

// Logger returns the application logger.
func (a *Application) Logger() *zap.Logger { return a.logger }

// Modules returns the loaded modules in load order.
func (a *Application) Modules() []Module { return append([]Module(nil), a.modules...) }

func (a *Application) Environment() string { return a.config.App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.config.App.Debug }
