// Package http connects net/http handlers to the container.
//
// ScopeMiddleware creates a child container per request. Controller adapts an
// Action, which receives a Resolver for that scope, to an http.HandlerFunc:
//
//	router.Middleware(gohttp.ScopeMiddleware(app.Container))
//	router.Get("/todos", gohttp.Controller(func(r container.Resolver, req *gohttp.Request, res *gohttp.Response) (any, error) {
//	    repo, err := container.Get[*todos.Repository](r, "todos.repository")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return repo.List(req.Context())
//	}))
//
// Returned errors are mapped to status codes by an ErrorHandler; see
// NewErrorHandler for the standard mapping.
package http
