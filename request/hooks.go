package request

import (
	"context"
	"fmt"
	"slices"

	"github.com/brizzai/auto-request/transport"
	"golang.org/x/sync/errgroup"
)

// HookResult is a hook's vote. A nil result counts as no retry.
type HookResult struct {
	Retry bool
}

// SuccessHook observes a successful transport response
type SuccessHook func(ctx context.Context, resp *transport.Response, d *Descriptor) (*HookResult, error)

// ErrorHook observes a failed transport call. retryEligible is false on the
// second round, where votes are ignored.
type ErrorHook func(ctx context.Context, err error, d *Descriptor, retryEligible bool) (*HookResult, error)

// runPhase starts every hook concurrently in registration order and waits for
// all of them. The phase votes for a retry when any hook does. The first hook
// that fails or panics cancels ctx for the others and is returned as a *HookError.
func runPhase[H any](ctx context.Context, phase string, hooks []H, call func(context.Context, H) (*HookResult, error)) (bool, error) {
	if len(hooks) == 0 {
		return false, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	votes := make([]bool, len(hooks))
	for i, hook := range hooks {
		i, hook := i, hook
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &HookError{Phase: phase, Index: i, Err: fmt.Errorf("panic: %v", r)}
				}
			}()

			result, hookErr := call(gctx, hook)
			if hookErr != nil {
				return &HookError{Phase: phase, Index: i, Err: hookErr}
			}
			votes[i] = result != nil && result.Retry
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return false, err
	}
	return slices.Contains(votes, true), nil
}

func runSuccessHooks(ctx context.Context, hooks []SuccessHook, resp *transport.Response, d *Descriptor) (bool, error) {
	return runPhase(ctx, PhaseSuccess, hooks, func(ctx context.Context, h SuccessHook) (*HookResult, error) {
		return h(ctx, resp, d)
	})
}

func runErrorHooks(ctx context.Context, hooks []ErrorHook, cause error, d *Descriptor, retryEligible bool) (bool, error) {
	return runPhase(ctx, PhaseError, hooks, func(ctx context.Context, h ErrorHook) (*HookResult, error) {
		return h(ctx, cause, d, retryEligible)
	})
}

// RetryOnStatus votes for a retry when the call failed with one of the given HTTP status codes
func RetryOnStatus(codes ...int) ErrorHook {
	return func(_ context.Context, err error, _ *Descriptor, retryEligible bool) (*HookResult, error) {
		if !retryEligible {
			return nil, nil
		}
		status, ok := transport.StatusCode(err)
		if !ok {
			return nil, nil
		}
		return &HookResult{Retry: slices.Contains(codes, status)}, nil
	}
}

// RetryOnNetworkError votes for a retry after connection failures and timeouts
func RetryOnNetworkError() ErrorHook {
	return func(_ context.Context, err error, _ *Descriptor, retryEligible bool) (*HookResult, error) {
		if !retryEligible {
			return nil, nil
		}
		retry := transport.IsErrorType(err, transport.NetworkError) || transport.IsErrorType(err, transport.TimeoutError)
		return &HookResult{Retry: retry}, nil
	}
}
