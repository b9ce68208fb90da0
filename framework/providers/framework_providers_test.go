package providers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/km-arc/go-scoped/framework/config"
	"github.com/km-arc/go-scoped/framework/container"
	gohttp "github.com/km-arc/go-scoped/framework/http"
	"github.com/km-arc/go-scoped/framework/providers"
	"github.com/km-arc/go-scoped/framework/routing"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "test", Env: "testing", Port: "0", Version: "9.9.9", Modules: []string{"todos"}},
		DB:  config.DBConfig{Path: ":memory:"},
		Log: config.LogConfig{Level: "error"},
	}
}

// boot registers the framework providers on a fresh root and boots them.
func boot(t *testing.T) *container.Container {
	t.Helper()
	c := container.New()
	reg := container.NewProviderRegistry(c)
	for _, p := range []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: testConfig()},
		&providers.LoggingServiceProvider{Logger: zap.NewNop()},
		&providers.DatabaseServiceProvider{},
		&providers.MetricsServiceProvider{},
		&providers.RoutingServiceProvider{},
		&providers.HTTPServiceProvider{},
	} {
		require.NoError(t, reg.Register(p))
	}
	require.NoError(t, reg.Boot())
	return c
}

// ── Config ───────────────────────────────────────────────────────────────────

func TestConfigServiceProvider_BindsValues(t *testing.T) {
	c := boot(t)

	assert.Equal(t, "9.9.9", container.MustGet[string](c, providers.VersionKey))
	assert.Equal(t, []string{"todos"}, container.MustGet[[]string](c, providers.ModulesKey))
	assert.Equal(t, ":memory:", container.MustGet[string](c, providers.DBPathKey))
	assert.Equal(t, "test", container.MustGet[*config.Config](c, providers.ConfigKey).App.Name)
}

func TestLoggingServiceProvider_FromConfig(t *testing.T) {
	c := container.New()
	require.NoError(t, (&providers.ConfigServiceProvider{Config: testConfig()}).Register(c))
	require.NoError(t, (&providers.LoggingServiceProvider{}).Register(c))

	logger, err := container.Get[*zap.Logger](c, providers.LoggerKey)
	require.NoError(t, err)
	assert.Same(t, logger, container.MustGet[*zap.Logger](c.Scope(), providers.LoggerKey))
}

// ── Database ─────────────────────────────────────────────────────────────────

func TestDatabaseServiceProvider_DeferredSingleton(t *testing.T) {
	c := boot(t)
	assert.False(t, c.Resolved(providers.DBKey))

	db, err := providers.DB(c.Scope())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	again, err := providers.DB(c.Scope())
	require.NoError(t, err)
	assert.Same(t, db, again)
	assert.NoError(t, db.Ping())
}

func TestDatabaseServiceProvider_UsesOverriddenPath(t *testing.T) {
	c := boot(t)
	c.MustRegister(providers.DBPathKey, container.Constant("file:override?mode=memory&cache=shared"))

	db, err := providers.DB(c)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var file string
	require.NoError(t, db.QueryRow("PRAGMA database_list").Scan(new(int), new(string), &file))
	assert.Empty(t, file, "in-memory databases have no file")
}

// ── Metrics & routing ────────────────────────────────────────────────────────

func TestRoutingServiceProvider_ServesMetricsAndScopes(t *testing.T) {
	c := boot(t)
	router := container.MustGet[*routing.Router](c, providers.RouterKey)

	var id string
	router.Get("/whoami", gohttp.Controller(func(r container.Resolver, _ *gohttp.Request, _ *gohttp.Response) (any, error) {
		id = container.MustGet[string](r, gohttp.RequestIDKey)
		return map[string]string{"id": id}, nil
	}))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, id, rr.Header().Get("X-Request-ID"))

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `container_resolutions_total{qualifier="scoped",source="resolver"}`)
}

func TestHTTPServiceProvider_ErrorHandler(t *testing.T) {
	c := boot(t)

	h, err := container.Get[gohttp.ErrorHandler](c, providers.ErrorsKey)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	h(gohttp.NewResponse(rr), gohttp.NewRequest(httptest.NewRequest(http.MethodGet, "/", nil)), gohttp.BadRequest("nope"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
