// Package transport defines the abstract HTTP collaborator used to reach the
// authentication backend. The core performs no connection pooling, retries
// or TLS configuration itself; that is the transport's responsibility.
package transport

import (
	"context"
	"errors"
	"time"
)

// Transport-level failure kinds. Implementations must wrap their failures so
// that errors.Is matches one of these; anything else is treated as unknown by
// the error-mapping layer.
var (
	ErrNoConnectivity = errors.New("no connectivity")
	ErrTimeout        = errors.New("request timed out")
	ErrCancelled      = errors.New("request cancelled")
)

// Request describes a single call to the backend. Path is relative to the
// transport's base URL. A zero Timeout means the transport default applies.
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
	Body    []byte
	Timeout time.Duration
}

// Response is the backend's answer to a Request.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// Success reports whether the status code is in the 2xx range.
func (r *Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

// Transport sends a request and returns a response or a transport-level
// failure. Cancelling ctx must abort an outstanding request.
type Transport interface {
	Send(ctx context.Context, req Request) (*Response, error)
}
