package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

const maxBody = 1 << 20 // 1 MB

// Request wraps *http.Request with body binding and route helpers.
type Request struct {
	raw  *http.Request
	body []byte
	read bool
}

// NewRequest wraps a standard *http.Request.
func NewRequest(r *http.Request) *Request {
	return &Request{raw: r}
}

// Raw returns the underlying *http.Request.
func (req *Request) Raw() *http.Request { return req.raw }

// Context returns the request context.
func (req *Request) Context() context.Context { return req.raw.Context() }

// ── Binding ──────────────────────────────────────────────────────────────────

// Bind decodes the JSON body into v. The body is read once and kept, so Bind
// and Fields may both be used on one request. Decoding failures wrap
// ErrBadRequest.
func (req *Request) Bind(v any) error {
	body, err := req.Body()
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return BadRequest("empty request body")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", ErrBadRequest, err)
	}
	return nil
}

// Fields decodes the JSON body into a generic map, the input format the
// validation package works on.
func (req *Request) Fields() (map[string]any, error) {
	var m map[string]any
	if err := req.Bind(&m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, BadRequest("request body must be a JSON object")
	}
	return m, nil
}

// Body returns the raw request body, reading at most 1 MB.
func (req *Request) Body() ([]byte, error) {
	if req.read {
		return req.body, nil
	}
	req.read = true
	if req.raw.Body == nil {
		return nil, nil
	}
	defer req.raw.Body.Close()

	body, err := io.ReadAll(io.LimitReader(req.raw.Body, maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBody {
		return nil, BadRequest("request body too large")
	}
	req.body = body
	return body, nil
}

// ── Input helpers ────────────────────────────────────────────────────────────

// RouteParam returns a URL route parameter.
func (req *Request) RouteParam(key string) string {
	return chi.URLParam(req.raw, key)
}

// Query returns a query-string value.
func (req *Request) Query(key string, fallback ...string) string {
	v := req.raw.URL.Query().Get(key)
	if v == "" && len(fallback) > 0 {
		return fallback[0]
	}
	return v
}

// Header returns a request header value.
func (req *Request) Header(key string) string {
	return req.raw.Header.Get(key)
}

// Method returns the HTTP method.
func (req *Request) Method() string { return req.raw.Method }

// Path returns the URL path.
func (req *Request) Path() string { return req.raw.URL.Path }

// IsJSON reports whether the body is declared as JSON.
func (req *Request) IsJSON() bool {
	return strings.Contains(req.raw.Header.Get("Content-Type"), "application/json")
}
