// Package transport is the HTTP collaborator behind the request builder. It owns
// serialization, network I/O, authentication and the mapping of failures to typed errors.
package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Transport issues a single HTTP call described by req
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Func adapts an ordinary function to the Transport interface
type Func func(ctx context.Context, req *Request) (*Response, error)

// Do calls f(ctx, req)
func (f Func) Do(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Request is the plain, fully assembled form of a request handed to a Transport.
// Params are serialized by the transport as the URL query; multi-valued keys are repeated.
type Request struct {
	URL     string
	Method  string
	Headers map[string]string
	Params  url.Values
	Data    any
}

// FullURL returns URL with Params merged into its query string
func (r *Request) FullURL() (string, error) {
	if len(r.Params) == 0 {
		return r.URL, nil
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return "", fmt.Errorf("invalid request url %q: %w", r.URL, err)
	}
	q := u.Query()
	for key, values := range r.Params {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Header returns the request header value for name, matching case-insensitively
func (r *Request) Header(name string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Response represents an HTTP response with its body fully read
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
	Elapsed    time.Duration
}

// ContentType returns the response Content-Type header
func (r *Response) ContentType() string {
	if r == nil || r.Headers == nil {
		return ""
	}
	return r.Headers.Get("Content-Type")
}

// AuthType represents the type of authentication to use
type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypeBasic  AuthType = "basic"
	AuthTypeBearer AuthType = "bearer"
	AuthTypeAPIKey AuthType = "api_key"
	AuthTypeOAuth2 AuthType = "oauth2"
)

const (
	// DefaultTimeout bounds a single call when no timeout is configured
	DefaultTimeout = 30 * time.Second
	// DefaultRequestIDHeader carries the generated request ID
	DefaultRequestIDHeader = "X-Request-ID"
)

// Config holds the HTTP transport configuration
type Config struct {
	BaseURL         string            `json:"base_url" mapstructure:"base_url"`
	Timeout         time.Duration     `json:"timeout" mapstructure:"timeout"`
	AuthType        AuthType          `json:"auth_type" mapstructure:"auth_type"`
	AuthConfig      map[string]string `json:"auth_config" mapstructure:"auth_config"`
	Headers         map[string]string `json:"headers" mapstructure:"headers"`
	RequestIDHeader string            `json:"request_id_header" mapstructure:"request_id_header"`
	// DisableRequestID turns off request ID generation
	DisableRequestID bool `json:"disable_request_id" mapstructure:"disable_request_id"`
}
