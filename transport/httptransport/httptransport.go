// Package httptransport implements transport.Transport on net/http.
package httptransport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/transport"
)

const defaultTimeout = 30 * time.Second

// Client is a transport.Transport that talks to a single backend base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

var _ transport.Transport = (*Client)(nil)

// Option modifies a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying *http.Client (primarily for tests
// against httptest servers).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a Client for the given base URL.
func New(baseURL string, options ...Option) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, errors.Wrap(auth.ErrConfigurationFailure, "[httptransport.New] invalid base URL")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  "go-auth-client/1.0",
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Send implements transport.Transport. Each request carries a fresh
// X-Request-ID so backend logs can be correlated with client-side ones.
func (c *Client) Send(ctx context.Context, req transport.Request) (*transport.Response, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+"/"+strings.TrimLeft(req.Path, "/"), body)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Send] http.NewRequestWithContext")
	}

	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-ID", uuid.New().String())
	if len(req.Body) > 0 {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifySendError(ctx, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(transport.ErrNoConnectivity, err.Error())
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	return &transport.Response{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       respBody,
	}, nil
}

func classifySendError(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return errors.Wrap(transport.ErrTimeout, err.Error())
	case errors.Is(ctx.Err(), context.Canceled):
		return errors.Wrap(transport.ErrCancelled, err.Error())
	case os.IsTimeout(err):
		return errors.Wrap(transport.ErrTimeout, err.Error())
	default:
		return errors.Wrap(transport.ErrNoConnectivity, err.Error())
	}
}
