package http

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/km-arc/go-scoped/framework/http/validation"
)

// ErrorsKey is the container name the controller adapter resolves its
// ErrorHandler from.
const ErrorsKey = "http.errors"

var (
	// ErrBadRequest marks errors caused by the client's input.
	ErrBadRequest = errors.New("bad request")

	// ErrNotFound marks errors for missing resources.
	ErrNotFound = errors.New("not found")
)

// BadRequest returns an error wrapping ErrBadRequest.
func BadRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}

// NotFound returns an error wrapping ErrNotFound.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// ErrorHandler turns an error returned by an Action into a response.
type ErrorHandler func(res *Response, req *Request, err error)

// Classifier reports whether err should be answered with 400.
type Classifier func(err error) bool

// NewErrorHandler returns the standard handler:
//   - *validation.Errors → 400 with the error bag
//   - ErrBadRequest, or any classifier match → 400 {"message": ...}
//   - ErrNotFound → 404 {"message": ...}
//   - anything else → logged, 500 {"message": "Server Error."}
//
// If the action already wrote a response the error is only logged.
func NewErrorHandler(logger *zap.Logger, classifiers ...Classifier) ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(res *Response, req *Request, err error) {
		fields := []zap.Field{
			zap.String("method", req.Method()),
			zap.String("path", req.Path()),
			zap.Error(err),
		}
		if id := res.Header().Get("X-Request-ID"); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}

		if res.Written() {
			logger.Error("error after response was written", fields...)
			return
		}

		var verr *validation.Errors
		switch {
		case errors.As(err, &verr):
			res.ValidationError(verr)
		case errors.Is(err, ErrBadRequest) || matches(classifiers, err):
			res.Error(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrNotFound):
			res.Error(http.StatusNotFound, err.Error())
		default:
			logger.Error("request failed", fields...)
			res.Error(http.StatusInternalServerError, "Server Error.")
		}
	}
}

func matches(classifiers []Classifier, err error) bool {
	for _, c := range classifiers {
		if c(err) {
			return true
		}
	}
	return false
}
