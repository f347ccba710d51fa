package request

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/brizzai/auto-request/internal/logger"
	"github.com/brizzai/auto-request/metrics"
	"github.com/brizzai/auto-request/transport"
	"go.uber.org/zap"
)

// ErrNoTransport is returned by Build when the builder has no transport
var ErrNoTransport = errors.New("no transport configured")

// Executable is a built request. Execute may be called repeatedly; every call
// dispatches at most two transport calls. The abort signal is shared by all
// calls, so once aborted an Executable stays aborted.
type Executable[T any] struct {
	transport transport.Transport
	metrics   *metrics.Collector

	desc         *Descriptor
	successHooks []SuccessHook
	errorHooks   []ErrorHook

	aborted context.Context
	abort   context.CancelFunc

	bodyOnce sync.Once
	body     func() any
	bodyErr  error
}

// Build snapshots b into an executable whose successful result is decoded as T.
// T may be string, []byte, *transport.Response or any JSON/YAML target.
func Build[T any](b *Builder) (*Executable[T], error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.transport == nil {
		return nil, ErrNoTransport
	}

	aborted, abort := context.WithCancel(context.Background())
	return &Executable[T]{
		transport:    b.transport,
		metrics:      b.metrics,
		desc:         b.desc.clone(),
		successHooks: slices.Clone(b.successHooks),
		errorHooks:   slices.Clone(b.errorHooks),
		aborted:      aborted,
		abort:        abort,
	}, nil
}

// Descriptor returns the request snapshot the executable dispatches
func (e *Executable[T]) Descriptor() *Descriptor {
	return e.desc
}

// Abort cancels in-flight and future transport calls. It is idempotent and may
// be called before Execute.
func (e *Executable[T]) Abort() {
	e.abort()
}

// Aborted reports whether Abort has been called
func (e *Executable[T]) Aborted() bool {
	return e.aborted.Err() != nil
}

// Execute dispatches the request, runs the hooks and performs at most one
// retry when a hook votes for it. Transport failures that are not retried are
// returned unchanged; a failing hook ends the execution with a *HookError.
func (e *Executable[T]) Execute(ctx context.Context) (T, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	if e.Aborted() {
		cancel(ErrAborted)
	}
	stop := context.AfterFunc(e.aborted, func() { cancel(ErrAborted) })
	defer stop()

	method := e.desc.method.String()

	body, err := e.requestBody()
	if err != nil {
		return e.fail(method, err)
	}

	resp, err := e.dispatch(ctx, 1, body)
	var retry bool
	if err == nil {
		var hookErr error
		if retry, hookErr = runSuccessHooks(ctx, e.successHooks, resp, e.desc); hookErr != nil {
			return e.hookFailed(method, hookErr)
		}
		if !retry {
			return e.finish(method, resp)
		}
		e.metrics.RecordRetry(method, PhaseSuccess)
	} else {
		var hookErr error
		if retry, hookErr = runErrorHooks(ctx, e.errorHooks, err, e.desc, true); hookErr != nil {
			return e.hookFailed(method, hookErr)
		}
		if !retry {
			return e.fail(method, err)
		}
		e.metrics.RecordRetry(method, PhaseError)
	}

	logger.Info("retrying request",
		zap.String("method", method),
		zap.String("url", e.desc.URL()),
		zap.Bool("after_error", err != nil),
	)

	resp, err = e.dispatch(ctx, 2, body)
	if err != nil {
		if _, hookErr := runErrorHooks(ctx, e.errorHooks, err, e.desc, false); hookErr != nil {
			return e.hookFailed(method, hookErr)
		}
		return e.fail(method, err)
	}
	if _, hookErr := runSuccessHooks(ctx, e.successHooks, resp, e.desc); hookErr != nil {
		return e.hookFailed(method, hookErr)
	}
	return e.finish(method, resp)
}

// requestBody buffers the snapshot body on first use so that every attempt of
// every Execute sends the same bytes
func (e *Executable[T]) requestBody() (func() any, error) {
	e.bodyOnce.Do(func() {
		e.body, e.bodyErr = replayable(e.desc.body)
	})
	return e.body, e.bodyErr
}

func (e *Executable[T]) dispatch(ctx context.Context, attempt int, body func() any) (*transport.Response, error) {
	req := &transport.Request{
		URL:     e.desc.URL(),
		Method:  e.desc.method.String(),
		Headers: e.desc.Headers(),
		Params:  e.desc.Query(),
		Data:    body(),
	}
	e.metrics.RecordAttempt(req.Method, attempt)
	logger.Debug("dispatching request",
		zap.String("method", req.Method),
		zap.String("url", req.URL),
		zap.Int("attempt", attempt),
	)

	resp, err := e.transport.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		resp = &transport.Response{}
	}
	return resp, nil
}

func (e *Executable[T]) finish(method string, resp *transport.Response) (T, error) {
	out, err := decode[T](resp)
	if err != nil {
		e.metrics.RecordExecution(method, metrics.OutcomeError)
		return out, fmt.Errorf("failed to decode response: %w", err)
	}
	e.metrics.RecordExecution(method, metrics.OutcomeSuccess)
	return out, nil
}

func (e *Executable[T]) fail(method string, err error) (T, error) {
	var zero T
	e.metrics.RecordExecution(method, metrics.OutcomeError)
	logger.Debug("request failed",
		zap.String("method", method),
		zap.String("url", e.desc.URL()),
		zap.Error(err),
	)
	return zero, err
}

func (e *Executable[T]) hookFailed(method string, err error) (T, error) {
	var zero T
	var hookErr *HookError
	if errors.As(err, &hookErr) {
		e.metrics.RecordHookFailure(hookErr.Phase)
	}
	e.metrics.RecordExecution(method, metrics.OutcomeHookFailure)
	logger.Warn("request hook failed",
		zap.String("method", method),
		zap.String("url", e.desc.URL()),
		zap.Error(err),
	)
	return zero, err
}
