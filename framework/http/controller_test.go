package http_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/km-arc/go-scoped/framework/container"
	gohttp "github.com/km-arc/go-scoped/framework/http"
	"github.com/km-arc/go-scoped/framework/http/validation"
)

// ── helpers ──────────────────────────────────────────────────────────────────

// serve runs action behind ScopeMiddleware on root.
func serve(t *testing.T, root *container.Container, action gohttp.Action) *httptest.ResponseRecorder {
	t.Helper()
	h := gohttp.ScopeMiddleware(root)(gohttp.Controller(action))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	return rr
}

// ── Controller results ───────────────────────────────────────────────────────

func TestController_ValueIsJSON(t *testing.T) {
	rr := serve(t, container.New(), func(container.Resolver, *gohttp.Request, *gohttp.Response) (any, error) {
		return []string{"a", "b"}, nil
	})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `["a","b"]`, rr.Body.String())
}

func TestController_NilIsNoContent(t *testing.T) {
	rr := serve(t, container.New(), func(container.Resolver, *gohttp.Request, *gohttp.Response) (any, error) {
		return nil, nil
	})

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestController_TypedNilIsNoContent(t *testing.T) {
	type todo struct{ ID int }

	results := map[string]any{
		"pointer": (*todo)(nil),
		"slice":   []todo(nil),
		"map":     map[string]int(nil),
	}
	for name, result := range results {
		t.Run(name, func(t *testing.T) {
			rr := serve(t, container.New(), func(container.Resolver, *gohttp.Request, *gohttp.Response) (any, error) {
				return result, nil
			})

			assert.Equal(t, http.StatusNoContent, rr.Code)
			assert.Empty(t, rr.Body.String())
		})
	}
}

func TestController_EmptySliceIsJSON(t *testing.T) {
	rr := serve(t, container.New(), func(container.Resolver, *gohttp.Request, *gohttp.Response) (any, error) {
		return []string{}, nil
	})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestController_WrittenResponseUntouched(t *testing.T) {
	rr := serve(t, container.New(), func(_ container.Resolver, _ *gohttp.Request, res *gohttp.Response) (any, error) {
		res.Created(map[string]int{"id": 1})
		return "ignored", nil
	})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"id":1}`, rr.Body.String())
}

func TestController_ResolvesFromRequestScope(t *testing.T) {
	root := container.New()
	root.MustRegister("request.counter", container.Factory(func(r container.Resolver) (any, error) {
		return new(int), nil
	}).Scoped())

	var seen []*int
	action := func(r container.Resolver, _ *gohttp.Request, _ *gohttp.Response) (any, error) {
		a := container.MustGet[*int](r, "request.counter")
		b := container.MustGet[*int](r, "request.counter")
		assert.Same(t, a, b)
		seen = append(seen, a)
		return nil, nil
	}

	serve(t, root, action)
	serve(t, root, action)

	require.Len(t, seen, 2)
	assert.NotSame(t, seen[0], seen[1])
}

func TestController_WithoutScopeMiddleware(t *testing.T) {
	called := false
	h := gohttp.Controller(func(container.Resolver, *gohttp.Request, *gohttp.Response) (any, error) {
		called = true
		return nil, nil
	})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

// ── Error pipeline ───────────────────────────────────────────────────────────

func TestController_ErrorsUseDefaultHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"bad request", gohttp.BadRequest("text is required"), http.StatusBadRequest, `{"message":"bad request: text is required"}`},
		{"not found", gohttp.NotFound("todo 3"), http.StatusNotFound, `{"message":"not found: todo 3"}`},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, `{"message":"Server Error."}`},
		{"validation", validation.Validate(map[string]any{"done": 1.0}, validation.Rules{"done": "boolean"}), http.StatusBadRequest, `{"errors":{"done":["The done field must be true or false."]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(t, container.New(), func(container.Resolver, *gohttp.Request, *gohttp.Response) (any, error) {
				return nil, tt.err
			})

			assert.Equal(t, tt.code, rr.Code)
			assert.JSONEq(t, tt.body, rr.Body.String())
		})
	}
}

func TestController_ErrorHandlerFromContainer(t *testing.T) {
	root := container.New()
	root.MustRegister(gohttp.ErrorsKey, container.Constant(gohttp.ErrorHandler(func(res *gohttp.Response, _ *gohttp.Request, err error) {
		res.Error(http.StatusTeapot, err.Error())
	})))

	rr := serve(t, root, func(container.Resolver, *gohttp.Request, *gohttp.Response) (any, error) {
		return nil, errors.New("custom")
	})

	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.JSONEq(t, `{"message":"custom"}`, rr.Body.String())
}

func TestErrorHandler_Classifiers(t *testing.T) {
	errConflict := errors.New("constraint failed")
	core, logs := observer.New(zapcore.InfoLevel)
	handler := gohttp.NewErrorHandler(zap.New(core), func(err error) bool { return errors.Is(err, errConflict) })

	rr := httptest.NewRecorder()
	handler(gohttp.NewResponse(rr), gohttp.NewRequest(httptest.NewRequest(http.MethodPost, "/todos", nil)), errConflict)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, logs.Len(), "client errors are not logged")
}

func TestErrorHandler_LogsServerErrors(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := gohttp.NewErrorHandler(zap.New(core))

	rr := httptest.NewRecorder()
	rr.Header().Set("X-Request-ID", "req-9")
	handler(gohttp.NewResponse(rr), gohttp.NewRequest(httptest.NewRequest(http.MethodGet, "/todos", nil)), errors.New("boom"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "request failed", entry.Message)
	assert.Equal(t, "/todos", entry.ContextMap()["path"])
	assert.Equal(t, "req-9", entry.ContextMap()["request_id"])
}

func TestErrorHandler_AfterWriteOnlyLogs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := gohttp.NewErrorHandler(zap.New(core))

	rr := httptest.NewRecorder()
	res := gohttp.NewResponse(rr)
	res.NoContent()
	handler(res, gohttp.NewRequest(httptest.NewRequest(http.MethodGet, "/", nil)), gohttp.BadRequest("late"))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, 1, logs.FilterMessage("error after response was written").Len())
}
