package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/brizzai/auto-request/internal/logger"
	"github.com/brizzai/auto-request/metrics"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// HTTPTransport executes requests with a net/http client
type HTTPTransport struct {
	client  *http.Client
	cfg     *Config
	authMgr AuthManager
	metrics *metrics.Collector
}

type HTTPTransportParams struct {
	fx.In

	Config      *Config
	AuthManager AuthManager        `optional:"true"`
	Metrics     *metrics.Collector `optional:"true"`
	Client      *http.Client       `optional:"true"`
}

// NewHTTPTransport creates a new HTTPTransport
func NewHTTPTransport(params HTTPTransportParams) *HTTPTransport {
	cfg := params.Config
	if cfg == nil {
		cfg = &Config{}
	}
	// An injected client is copied so its owner's settings stay untouched; it
	// keeps its own timeout unless one is configured.
	var client *http.Client
	if params.Client != nil {
		c := *params.Client
		client = &c
		if cfg.Timeout > 0 {
			client.Timeout = cfg.Timeout
		}
	} else {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	authMgr := params.AuthManager
	if authMgr == nil {
		authMgr = NewHTTPAuthManager(cfg)
	}

	return &HTTPTransport{
		client:  client,
		cfg:     cfg,
		authMgr: authMgr,
		metrics: params.Metrics,
	}
}

// SetTimeout sets the timeout for the HTTP client
func (t *HTTPTransport) SetTimeout(timeout time.Duration) {
	t.client.Timeout = timeout
}

// Do builds the HTTP request, sends it and reads the whole response.
// Non-2xx responses are returned as an HTTP error.
func (t *HTTPTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := t.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	logger.Debug("sending request",
		zap.String("method", httpReq.Method),
		zap.String("url", httpReq.URL.String()),
	)

	start := time.Now()
	resp, err := t.client.Do(httpReq)
	if err != nil {
		t.metrics.ObserveRequest(httpReq.Method, 0, time.Since(start))
		return nil, t.classify(ctx, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Warn("failed to close response body", zap.Error(closeErr))
		}
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	t.metrics.ObserveRequest(httpReq.Method, resp.StatusCode, elapsed)
	if err != nil {
		return nil, t.classify(ctx, fmt.Errorf("failed to read response body: %w", err))
	}

	logger.Debug("received response",
		zap.String("method", httpReq.Method),
		zap.String("url", httpReq.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed),
	)

	if !IsSuccessStatus(resp.StatusCode) {
		return nil, NewHTTPError(
			fmt.Sprintf("%s %s returned %s", httpReq.Method, httpReq.URL.Redacted(), http.StatusText(resp.StatusCode)),
			resp.StatusCode,
			bodyBytes,
		)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       bodyBytes,
		Headers:    resp.Header,
		Elapsed:    elapsed,
	}, nil
}

func (t *HTTPTransport) buildRequest(ctx context.Context, req *Request) (*http.Request, error) {
	fullURL, err := req.FullURL()
	if err != nil {
		return nil, NewEncodingError("failed to assemble url", err)
	}
	if t.cfg.BaseURL != "" && !strings.Contains(fullURL, "://") {
		fullURL = strings.TrimRight(t.cfg.BaseURL, "/") + "/" + strings.TrimLeft(fullURL, "/")
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	body, contentType, err := encodeBody(req.Data, req.Header("Content-Type"))
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, NewEncodingError("failed to create HTTP request", err)
	}

	// Request headers override configured defaults
	for key, value := range t.cfg.Headers {
		httpReq.Header.Set(key, value)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	if !t.cfg.DisableRequestID {
		header := t.cfg.RequestIDHeader
		if header == "" {
			header = DefaultRequestIDHeader
		}
		if httpReq.Header.Get(header) == "" {
			httpReq.Header.Set(header, uuid.NewString())
		}
	}

	if err := t.authMgr.ApplyAuth(ctx, httpReq); err != nil {
		return nil, fmt.Errorf("failed to apply authentication: %w", err)
	}

	return httpReq, nil
}

// classify maps a client failure onto the transport error family
func (t *HTTPTransport) classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return NewCanceledError("request canceled", context.Cause(ctx))
	case errors.Is(err, context.DeadlineExceeded) || isTimeout(err):
		return NewTimeoutError("request timed out", t.client.Timeout, err)
	default:
		return NewNetworkError("request failed", err)
	}
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
