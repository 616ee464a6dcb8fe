// Package transportfake provides a scripted transport.Transport for tests.
package transportfake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-client/transport"
)

// Step is one scripted exchange: the fake returns Response or Err for the
// next matching request.
type Step struct {
	Response *transport.Response
	Err      error
}

// FakeTransport replays a script of steps in order and records every request
// it receives. A request arriving after the script is exhausted repeats the
// last step.
type FakeTransport struct {
	mu       sync.Mutex
	script   []Step
	cursor   int
	requests []transport.Request
}

var _ transport.Transport = (*FakeTransport)(nil)

// NewFakeTransport creates a fake that replays the given steps.
func NewFakeTransport(steps ...Step) *FakeTransport {
	return &FakeTransport{script: steps}
}

// RespondWith is a convenience for a single-status, fixed-body script step.
func RespondWith(statusCode int, body string) Step {
	return Step{Response: &transport.Response{StatusCode: statusCode, Body: []byte(body)}}
}

// FailWith is a convenience for a transport-failure script step.
func FailWith(err error) Step {
	return Step{Err: err}
}

// Send implements transport.Transport.
func (f *FakeTransport) Send(ctx context.Context, req transport.Request) (*transport.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, transport.ErrCancelled
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)

	if len(f.script) == 0 {
		return &transport.Response{StatusCode: 200, Body: []byte("{}")}, nil
	}
	step := f.script[f.cursor]
	if f.cursor < len(f.script)-1 {
		f.cursor++
	}
	if step.Err != nil {
		return nil, step.Err
	}
	return step.Response, nil
}

// Append adds steps to the end of the script.
func (f *FakeTransport) Append(steps ...Step) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script = append(f.script, steps...)
}

// Requests returns a copy of every request received so far.
func (f *FakeTransport) Requests() []transport.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]transport.Request, len(f.requests))
	copy(out, f.requests)
	return out
}

// CallCount reports how many requests have been received.
func (f *FakeTransport) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// CallsTo reports how many requests have been received for the given path.
func (f *FakeTransport) CallsTo(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r.Path == path {
			n++
		}
	}
	return n
}
