package providers

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/km-arc/go-scoped/framework/config"
	"github.com/km-arc/go-scoped/framework/container"
	"github.com/km-arc/go-scoped/framework/database"
	gohttp "github.com/km-arc/go-scoped/framework/http"
	"github.com/km-arc/go-scoped/framework/logging"
	"github.com/km-arc/go-scoped/framework/metrics"
	"github.com/km-arc/go-scoped/framework/routing"
)

// Names bound by the framework providers.
const (
	ConfigKey    = "config"
	VersionKey   = "app.version"
	ModulesKey   = "app.modules"
	DBPathKey    = "database.path"
	LoggerKey    = "logger"
	DBKey        = "database.connection"
	MetricsKey   = "metrics.registry"
	CollectorKey = "metrics.collector"
	RouterKey    = "router"
	ErrorsKey    = gohttp.ErrorsKey
)

const slowQueryTime = 200 * time.Millisecond

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the loaded configuration and the plain values
// derived from it.
//
// Bound names:
//   - "config"        → *config.Config
//   - "app.version"   → string
//   - "app.modules"   → []string
//   - "database.path" → string
//
// The derived values are constants, so tests can replace them with
// container.Constant before anything depending on them is resolved.
type ConfigServiceProvider struct {
	container.BaseProvider
	Config *config.Config
}

func (p *ConfigServiceProvider) Register(app *container.Container) error {
	cfg := p.Config
	if cfg == nil {
		cfg = config.Load()
	}

	return register(app, container.Definitions{
		ConfigKey:  container.Constant(cfg),
		VersionKey: container.Constant(cfg.App.Version),
		ModulesKey: container.Constant(cfg.App.Modules),
		DBPathKey:  container.Constant(cfg.DB.Path),
	})
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider binds "logger" → *zap.Logger.
type LoggingServiceProvider struct {
	container.BaseProvider
	Logger *zap.Logger
}

func (p *LoggingServiceProvider) Register(app *container.Container) error {
	if p.Logger != nil {
		return app.Register(LoggerKey, container.Constant(p.Logger))
	}
	return app.Register(LoggerKey, container.Factory(func(r container.Resolver) (any, error) {
		cfg, err := container.Get[*config.Config](r, ConfigKey)
		if err != nil {
			return nil, err
		}
		return logging.New(cfg.Log, cfg.App.Env)
	}).Singleton())
}

// ── DatabaseServiceProvider ───────────────────────────────────────────────────

// DatabaseServiceProvider binds "database.connection" → *bun.DB, a singleton
// opened from "database.path" on first use. The provider is deferred: it is
// only registered once something asks for the connection.
type DatabaseServiceProvider struct {
	container.BaseProvider
}

func (p *DatabaseServiceProvider) IsDeferred() bool   { return true }
func (p *DatabaseServiceProvider) Provides() []string { return []string{DBKey} }

func (p *DatabaseServiceProvider) Register(app *container.Container) error {
	return app.Register(DBKey, container.Factory(func(r container.Resolver) (any, error) {
		path, err := container.Get[string](r, DBPathKey)
		if err != nil {
			return nil, err
		}
		logger, err := container.Get[*zap.Logger](r, LoggerKey)
		if err != nil {
			return nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		db, err := database.Open(ctx, config.DBConfig{Path: path})
		if err != nil {
			return nil, err
		}
		db.AddQueryHook(&database.QueryLogger{Logger: logger.Named("db"), Threshold: slowQueryTime})

		logger.Info("database opened", zap.String("path", path))
		return db, nil
	}).Singleton())
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider binds "metrics.registry" → *prometheus.Registry and
// "metrics.collector" → *metrics.ResolutionCollector. Boot attaches the
// collector to the container so every resolution in the tree is counted.
type MetricsServiceProvider struct {
	container.BaseProvider
}

func (p *MetricsServiceProvider) Register(app *container.Container) error {
	return register(app, container.Definitions{
		MetricsKey: container.Factory(func(container.Resolver) (any, error) {
			return metrics.NewRegistry(), nil
		}).Singleton(),
		CollectorKey: container.Factory(func(r container.Resolver) (any, error) {
			reg, err := container.Get[*prometheus.Registry](r, MetricsKey)
			if err != nil {
				return nil, err
			}
			return metrics.NewResolutionCollector(reg)
		}).Singleton(),
	})
}

func (p *MetricsServiceProvider) Boot(app *container.Container) error {
	collector, err := container.Get[*metrics.ResolutionCollector](app, CollectorKey)
	if err != nil {
		return err
	}
	app.AfterResolving(collector.Observe)
	return nil
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider binds "router" → *routing.Router. Every request
// gets its own scope of the container the provider was registered on, and
// the metrics registry is served at /metrics.
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) error {
	return app.Register(RouterKey, container.Factory(func(r container.Resolver) (any, error) {
		logger, err := container.Get[*zap.Logger](r, LoggerKey)
		if err != nil {
			return nil, err
		}
		reg, err := container.Get[*prometheus.Registry](r, MetricsKey)
		if err != nil {
			return nil, err
		}

		router := routing.New(logger.Named("http"))
		router.Middleware(gohttp.ScopeMiddleware(app))
		router.Mount("/metrics", metrics.Handler(reg))
		return router, nil
	}).Singleton())
}

// ── HTTPServiceProvider ───────────────────────────────────────────────────────

// HTTPServiceProvider binds "http.errors" → gohttp.ErrorHandler. SQLite
// constraint violations are treated as client errors.
type HTTPServiceProvider struct {
	container.BaseProvider
}

func (p *HTTPServiceProvider) Register(app *container.Container) error {
	return app.Register(ErrorsKey, container.Factory(func(r container.Resolver) (any, error) {
		logger, err := container.Get[*zap.Logger](r, LoggerKey)
		if err != nil {
			return nil, err
		}
		return gohttp.NewErrorHandler(logger.Named("http"), database.IsConstraintViolation), nil
	}).Singleton())
}

// ── helpers ──────────────────────────────────────────────────────────────────

// DB resolves the connection; a shorthand for commands and tests.
func DB(r container.Resolver) (*bun.DB, error) {
	return container.Get[*bun.DB](r, DBKey)
}

func register(app *container.Container, defs container.Definitions) error {
	for name, d := range defs {
		if err := app.Register(name, d); err != nil {
			return err
		}
	}
	return nil
}
