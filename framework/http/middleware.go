package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/km-arc/go-scoped/framework/container"
)

// Names the scope middleware registers in every request scope.
const (
	RequestIDKey = "request.id"
	RequestKey   = "http.request"
)

// ErrNoScope is returned when a request reaches a controller without passing
// through ScopeMiddleware.
var ErrNoScope = errors.New("no request scope in context")

type scopeKey struct{}

// ScopeMiddleware gives every request its own child of root. The scope holds
// the request id (also sent as X-Request-ID) and the *http.Request, and is
// reachable from the request context via FromContext.
//
// An incoming X-Request-ID is reused when it is a valid UUID.
func ScopeMiddleware(root *container.Container) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", id)

			scope := root.Scope()
			r = r.WithContext(WithContainer(r.Context(), scope))
			scope.MustRegister(RequestIDKey, container.Constant(id))
			scope.MustRegister(RequestKey, container.Constant(r))

			next.ServeHTTP(w, r)
		})
	}
}

// WithContainer returns a copy of ctx carrying c.
func WithContainer(ctx context.Context, c *container.Container) context.Context {
	return context.WithValue(ctx, scopeKey{}, c)
}

// FromContext returns the container stored by WithContainer.
func FromContext(ctx context.Context) (*container.Container, bool) {
	c, ok := ctx.Value(scopeKey{}).(*container.Container)
	return c, ok
}

// MustFromContext is FromContext that panics when no container is present.
func MustFromContext(ctx context.Context) *container.Container {
	c, ok := FromContext(ctx)
	if !ok {
		panic(ErrNoScope)
	}
	return c
}
