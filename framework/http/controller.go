package http

import (
	"net/http"
	"reflect"

	"github.com/km-arc/go-scoped/framework/container"
)

// Action handles one request. r resolves from the request's scope.
//
// A nil result, including a nil pointer, map or slice, sends 204. Anything
// else is sent as a 200 JSON body; return an empty slice to send []. If the
// action wrote the response itself the result is ignored. Errors go to the
// ErrorHandler registered as "http.errors".
type Action func(r container.Resolver, req *Request, res *Response) (any, error)

var defaultErrorHandler = NewErrorHandler(nil)

// Controller adapts an Action to an http.HandlerFunc. The route must be
// behind ScopeMiddleware.
//
//	router.Get("/todos", gohttp.Controller(todos.List))
func Controller(action Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := NewRequest(r)
		res := NewResponse(w)

		scope, ok := FromContext(r.Context())
		if !ok {
			defaultErrorHandler(res, req, ErrNoScope)
			return
		}

		data, err := action(scope, req, res)
		switch {
		case err != nil:
			errorHandler(scope)(res, req, err)
		case res.Written():
		case isNil(data):
			res.NoContent()
		default:
			res.JSON(http.StatusOK, data)
		}
	}
}

func errorHandler(r container.Resolver) ErrorHandler {
	if h, err := container.Get[ErrorHandler](r, ErrorsKey); err == nil && h != nil {
		return h
	}
	return defaultErrorHandler
}

func isNil(data any) bool {
	if data == nil {
		return true
	}
	switch v := reflect.ValueOf(data); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
		return v.IsNil()
	}
	return false
}
