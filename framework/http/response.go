package http

import (
	"encoding/json"
	"net/http"

	"github.com/km-arc/go-scoped/framework/http/validation"
)

// ── Response ─────────────────────────────────────────────────────────────────

// Response wraps http.ResponseWriter and remembers whether anything has been
// sent. It is itself an http.ResponseWriter.
type Response struct {
	w      http.ResponseWriter
	status int
}

// NewResponse wraps a ResponseWriter.
func NewResponse(w http.ResponseWriter) *Response {
	return &Response{w: w}
}

// Raw returns a writer that keeps Written accurate. Use it instead of the
// original writer when handing the response to other code.
func (res *Response) Raw() http.ResponseWriter { return res }

func (res *Response) Header() http.Header { return res.w.Header() }

func (res *Response) WriteHeader(status int) {
	if res.status != 0 {
		return
	}
	res.status = status
	res.w.WriteHeader(status)
}

func (res *Response) Write(b []byte) (int, error) {
	if res.status == 0 {
		res.WriteHeader(http.StatusOK)
	}
	return res.w.Write(b)
}

// Written reports whether a status has been sent.
func (res *Response) Written() bool { return res.status != 0 }

// Status returns the status sent so far, or 0.
func (res *Response) Status() int { return res.status }

// ── JSON responses ────────────────────────────────────────────────────────────

// JSON sends data encoded as JSON.
//
//	res.JSON(http.StatusOK, map[string]any{"message": "ok"})
func (res *Response) JSON(status int, data any) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	_ = json.NewEncoder(res).Encode(data)
}

// Created sends 201 with data as the body.
func (res *Response) Created(data any) {
	res.JSON(http.StatusCreated, data)
}

// NoContent sends 204 with no body.
func (res *Response) NoContent() {
	res.WriteHeader(http.StatusNoContent)
}

// Error sends {"message": message} with status.
//
//	res.Error(http.StatusNotFound, "todo not found")
func (res *Response) Error(status int, message string) {
	res.JSON(status, envelope{"message": message})
}

// ValidationError sends 400 with the error bag.
func (res *Response) ValidationError(errors *validation.Errors) {
	res.JSON(http.StatusBadRequest, errors)
}

type envelope map[string]any
