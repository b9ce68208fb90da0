package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-scoped/framework/container"
	gohttp "github.com/km-arc/go-scoped/framework/http"
)

func TestScopeMiddleware_CreatesChildScope(t *testing.T) {
	root := container.New()
	root.MustRegister("greeting", container.Constant("hi"))

	var scope *container.Container
	h := gohttp.ScopeMiddleware(root)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope = gohttp.MustFromContext(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, scope)
	assert.Same(t, root, scope.Parent())
	assert.Equal(t, "hi", scope.Make("greeting"))
}

func TestScopeMiddleware_ScopePerRequest(t *testing.T) {
	root := container.New()
	var scopes []*container.Container
	h := gohttp.ScopeMiddleware(root)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scopes = append(scopes, gohttp.MustFromContext(r.Context()))
	}))

	for range 2 {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	require.Len(t, scopes, 2)
	assert.NotSame(t, scopes[0], scopes[1])
	assert.False(t, root.Has(gohttp.RequestIDKey), "request names stay out of the root")
}

func TestScopeMiddleware_RegistersRequestValues(t *testing.T) {
	var (
		id  string
		req *http.Request
	)
	h := gohttp.ScopeMiddleware(container.New())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope := gohttp.MustFromContext(r.Context())
		id = container.MustGet[string](scope, gohttp.RequestIDKey)
		req = container.MustGet[*http.Request](scope, gohttp.RequestKey)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/todos", nil))

	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, id, rr.Header().Get("X-Request-ID"))
	require.NotNil(t, req)
	assert.Equal(t, "/todos", req.URL.Path)
}

func TestScopeMiddleware_ReusesIncomingRequestID(t *testing.T) {
	incoming := uuid.NewString()
	h := gohttp.ScopeMiddleware(container.New())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-ID", incoming)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	assert.Equal(t, incoming, rr.Header().Get("X-Request-ID"))

	r.Header.Set("X-Request-ID", "not-a-uuid")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	assert.NotEqual(t, "not-a-uuid", rr.Header().Get("X-Request-ID"))
}

func TestFromContext_Missing(t *testing.T) {
	_, ok := gohttp.FromContext(context.Background())
	assert.False(t, ok)
	assert.PanicsWithValue(t, gohttp.ErrNoScope, func() { gohttp.MustFromContext(context.Background()) })
}
