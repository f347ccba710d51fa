package request

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brizzai/auto-request/metrics"
	"github.com/brizzai/auto-request/transport"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	resp *transport.Response
	err  error
}

// fakeTransport replays scripted results and records every request it receives.
// The last result repeats once the script is exhausted.
type fakeTransport struct {
	mu       sync.Mutex
	results  []result
	requests []*transport.Request
}

func (f *fakeTransport) Do(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	r := f.results[min(len(f.requests), len(f.results))-1]
	f.mu.Unlock()

	if ctx.Err() != nil {
		return nil, transport.NewCanceledError("request canceled", context.Cause(ctx))
	}
	return r.resp, r.err
}

func (f *fakeTransport) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func ok(body string) result {
	return result{resp: &transport.Response{
		StatusCode: http.StatusOK,
		Body:       []byte(body),
		Headers:    http.Header{"Content-Type": {"application/json"}},
	}}
}

func failure(status int) result {
	return result{err: transport.NewHTTPError("request failed", status, nil)}
}

func TestExecute_DispatchesTheDescribedRequest(t *testing.T) {
	ft := &fakeTransport{results: []result{ok("mock response")}}

	exe, err := Build[string](New("https://api.example.com", ft).
		SetEndpoint("/users").
		AddQueryParam("page", 1))
	require.NoError(t, err)

	got, err := exe.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "mock response", got)

	require.Equal(t, 1, ft.calls())
	req := ft.requests[0]
	assert.Equal(t, "GET", req.Method)
	fullURL, err := req.FullURL()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/users?page=1", fullURL)
}

func TestExecute_PostBody(t *testing.T) {
	ft := &fakeTransport{results: []result{ok(`{"id":1,"name":"John"}`)}}
	body := map[string]any{"name": "John", "roles": []string{"admin"}}

	type user struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	exe, err := Build[user](New("https://api.example.com/users", ft).
		SetMethod(MethodPost).
		SetContentType("application/json").
		AddHeader("Authorization", "Bearer t").
		SetBody(body))
	require.NoError(t, err)

	got, err := exe.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, user{ID: 1, Name: "John"}, got)

	req := ft.requests[0]
	assert.Equal(t, "POST", req.Method)
	if diff := cmp.Diff(body, req.Data); diff != "" {
		t.Errorf("request body mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{
		"content-type":  "application/json",
		"authorization": "Bearer t",
	}, req.Headers); diff != "" {
		t.Errorf("request headers mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_RetryScenarios(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name         string
		results      []result
		successHooks []SuccessHook
		errorHooks   []ErrorHook
		wantCalls    int
		wantBody     string
		wantErr      func(t *testing.T, err error)
	}{
		{
			name:      "no hooks, failure returned unchanged",
			results:   []result{failure(http.StatusServiceUnavailable)},
			wantCalls: 1,
			wantErr: func(t *testing.T, err error) {
				assert.True(t, transport.IsHTTPStatusError(err, http.StatusServiceUnavailable))
			},
		},
		{
			name:       "error hook votes retry, second attempt succeeds",
			results:    []result{failure(http.StatusServiceUnavailable), ok("success")},
			errorHooks: []ErrorHook{RetryOnStatus(http.StatusServiceUnavailable)},
			wantCalls:  2,
			wantBody:   "success",
		},
		{
			name:       "error hook always votes retry, one retry only",
			results:    []result{failure(http.StatusBadGateway)},
			errorHooks: []ErrorHook{alwaysRetryOnError},
			wantCalls:  2,
			wantErr: func(t *testing.T, err error) {
				assert.True(t, transport.IsHTTPStatusError(err, http.StatusBadGateway))
			},
		},
		{
			name:       "error hook declines",
			results:    []result{failure(http.StatusNotFound)},
			errorHooks: []ErrorHook{RetryOnStatus(http.StatusServiceUnavailable)},
			wantCalls:  1,
			wantErr: func(t *testing.T, err error) {
				assert.True(t, transport.IsHTTPStatusError(err, http.StatusNotFound))
			},
		},
		{
			name:    "votes are ORed",
			results: []result{failure(http.StatusServiceUnavailable), ok("second")},
			errorHooks: []ErrorHook{
				RetryOnStatus(http.StatusTooManyRequests),
				RetryOnStatus(http.StatusServiceUnavailable),
			},
			wantCalls: 2,
			wantBody:  "second",
		},
		{
			name:    "success hook votes retry",
			results: []result{ok("first"), ok("second")},
			successHooks: []SuccessHook{
				func(_ context.Context, resp *transport.Response, _ *Descriptor) (*HookResult, error) {
					return &HookResult{Retry: string(resp.Body) == "first"}, nil
				},
			},
			wantCalls: 2,
			wantBody:  "second",
		},
		{
			name:    "success hook votes are ignored on the retry",
			results: []result{ok("first"), ok("second")},
			successHooks: []SuccessHook{
				func(context.Context, *transport.Response, *Descriptor) (*HookResult, error) {
					return &HookResult{Retry: true}, nil
				},
			},
			wantCalls: 2,
			wantBody:  "second",
		},
		{
			name:    "nil hook result means no retry",
			results: []result{ok("only")},
			successHooks: []SuccessHook{
				func(context.Context, *transport.Response, *Descriptor) (*HookResult, error) {
					return nil, nil
				},
			},
			wantCalls: 1,
			wantBody:  "only",
		},
		{
			name:    "success hook failure",
			results: []result{ok("first")},
			successHooks: []SuccessHook{
				func(context.Context, *transport.Response, *Descriptor) (*HookResult, error) {
					return nil, errBoom
				},
			},
			wantCalls: 1,
			wantErr: func(t *testing.T, err error) {
				var hookErr *HookError
				require.ErrorAs(t, err, &hookErr)
				assert.Equal(t, PhaseSuccess, hookErr.Phase)
				assert.Equal(t, 0, hookErr.Index)
				assert.ErrorIs(t, err, errBoom)
			},
		},
		{
			name:    "error hook failure wins over retry votes",
			results: []result{failure(http.StatusServiceUnavailable)},
			errorHooks: []ErrorHook{
				alwaysRetryOnError,
				func(context.Context, error, *Descriptor, bool) (*HookResult, error) {
					return nil, errBoom
				},
			},
			wantCalls: 1,
			wantErr: func(t *testing.T, err error) {
				var hookErr *HookError
				require.ErrorAs(t, err, &hookErr)
				assert.Equal(t, PhaseError, hookErr.Phase)
				assert.Equal(t, 1, hookErr.Index)
				assert.ErrorIs(t, err, errBoom)
			},
		},
		{
			name:    "panicking hook",
			results: []result{ok("first")},
			successHooks: []SuccessHook{
				func(context.Context, *transport.Response, *Descriptor) (*HookResult, error) {
					panic("hook exploded")
				},
			},
			wantCalls: 1,
			wantErr: func(t *testing.T, err error) {
				var hookErr *HookError
				require.ErrorAs(t, err, &hookErr)
				assert.Contains(t, hookErr.Error(), "hook exploded")
			},
		},
		{
			name:    "error hook failure on the retry round",
			results: []result{failure(http.StatusServiceUnavailable)},
			errorHooks: []ErrorHook{
				func(_ context.Context, _ error, _ *Descriptor, retryEligible bool) (*HookResult, error) {
					if !retryEligible {
						return nil, errBoom
					}
					return &HookResult{Retry: true}, nil
				},
			},
			wantCalls: 2,
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, errBoom)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fakeTransport{results: tt.results}
			b := New("https://api.example.com", ft)
			for _, h := range tt.successHooks {
				b.AddOnSuccessHook(h)
			}
			for _, h := range tt.errorHooks {
				b.AddOnErrorHook(h)
			}

			exe, err := Build[string](b)
			require.NoError(t, err)

			got, err := exe.Execute(context.Background())
			assert.Equal(t, tt.wantCalls, ft.calls())
			if tt.wantErr != nil {
				require.Error(t, err)
				tt.wantErr(t, err)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBody, got)
		})
	}
}

func alwaysRetryOnError(context.Context, error, *Descriptor, bool) (*HookResult, error) {
	return &HookResult{Retry: true}, nil
}

func TestExecute_RetryEligibility(t *testing.T) {
	ft := &fakeTransport{results: []result{failure(http.StatusInternalServerError)}}

	var mu sync.Mutex
	var seen []bool
	exe, err := New("https://h", ft).
		AddOnErrorHook(func(_ context.Context, _ error, _ *Descriptor, retryEligible bool) (*HookResult, error) {
			mu.Lock()
			seen = append(seen, retryEligible)
			mu.Unlock()
			return &HookResult{Retry: true}, nil
		}).
		Build()
	require.NoError(t, err)

	_, err = exe.Execute(context.Background())
	require.Error(t, err)
	assert.Equal(t, []bool{true, false}, seen)
}

func TestExecute_HooksSeeTheDescriptor(t *testing.T) {
	ft := &fakeTransport{results: []result{ok("{}")}}

	var gotURL string
	exe, err := New("https://h", ft).
		SetEndpoint("/users/:id").
		AddParam("id", 5).
		AddOnSuccessHook(func(_ context.Context, _ *transport.Response, d *Descriptor) (*HookResult, error) {
			gotURL = d.URL()
			return nil, nil
		}).
		Build()
	require.NoError(t, err)

	_, err = exe.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://h/users/5", gotURL)
}

func TestExecute_AbortBeforeExecute(t *testing.T) {
	ft := &fakeTransport{results: []result{ok("never")}}

	var hookCalls atomic.Int32
	exe, err := New("https://h", ft).
		AddOnErrorHook(func(_ context.Context, err error, _ *Descriptor, _ bool) (*HookResult, error) {
			hookCalls.Add(1)
			return nil, nil
		}).
		Build()
	require.NoError(t, err)

	exe.Abort()
	exe.Abort()
	assert.True(t, exe.Aborted())

	_, err = exe.Execute(context.Background())
	require.Error(t, err)
	assert.True(t, transport.IsErrorType(err, transport.CanceledError))
	assert.ErrorIs(t, err, ErrAborted)
	assert.Equal(t, 1, ft.calls())
	assert.Equal(t, int32(1), hookCalls.Load())

	// the abort signal is shared by later executions
	_, err = exe.Execute(context.Background())
	assert.ErrorIs(t, err, ErrAborted)
}

func TestExecute_AbortInFlight(t *testing.T) {
	started := make(chan struct{})
	var calls atomic.Int32
	tr := transport.Func(func(ctx context.Context, _ *transport.Request) (*transport.Response, error) {
		calls.Add(1)
		close(started)
		<-ctx.Done()
		return nil, transport.NewCanceledError("request canceled", context.Cause(ctx))
	})

	exe, err := New("https://h", tr).Build()
	require.NoError(t, err)

	go func() {
		<-started
		exe.Abort()
	}()

	done := make(chan error, 1)
	go func() {
		_, err := exe.Execute(context.Background())
		done <- err
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAborted)
	case <-time.After(5 * time.Second):
		t.Fatal("execute did not return after abort")
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestExecute_CallerCancellationIsNotAnAbort(t *testing.T) {
	ft := &fakeTransport{results: []result{ok("x")}}
	exe, err := New("https://h", ft).Build()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = exe.Execute(ctx)
	require.Error(t, err)
	assert.True(t, transport.IsErrorType(err, transport.CanceledError))
	assert.NotErrorIs(t, err, ErrAborted)
	assert.False(t, exe.Aborted())
}

func TestExecute_Decoding(t *testing.T) {
	yamlResp := result{resp: &transport.Response{
		StatusCode: http.StatusOK,
		Body:       []byte("name: John\nage: 30\n"),
		Headers:    http.Header{"Content-Type": {"application/yaml"}},
	}}

	t.Run("raw response", func(t *testing.T) {
		exe, err := New("https://h", &fakeTransport{results: []result{ok("{}")}}).Build()
		require.NoError(t, err)
		resp, err := exe.Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("bytes", func(t *testing.T) {
		exe, err := Build[[]byte](New("https://h", &fakeTransport{results: []result{ok("abc")}}))
		require.NoError(t, err)
		got, err := exe.Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), got)
	})

	t.Run("yaml", func(t *testing.T) {
		exe, err := Build[map[string]any](New("https://h", &fakeTransport{results: []result{yamlResp}}))
		require.NoError(t, err)
		got, err := exe.Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "John", "age": 30}, got)
	})

	t.Run("empty body gives the zero value", func(t *testing.T) {
		exe, err := Build[map[string]any](New("https://h", &fakeTransport{results: []result{ok("")}}))
		require.NoError(t, err)
		got, err := exe.Execute(context.Background())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("invalid json", func(t *testing.T) {
		exe, err := Build[map[string]any](New("https://h", &fakeTransport{results: []result{ok("{")}}))
		require.NoError(t, err)
		_, err = exe.Execute(context.Background())
		assert.ErrorContains(t, err, "failed to decode response")
	})
}

func TestExecute_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg, "test")
	ft := &fakeTransport{results: []result{failure(http.StatusServiceUnavailable), ok("x")}}

	exe, err := Build[string](New("https://h", ft, WithMetrics(collector)).
		AddOnErrorHook(RetryOnStatus(http.StatusServiceUnavailable)))
	require.NoError(t, err)

	_, err = exe.Execute(context.Background())
	require.NoError(t, err)

	for name, want := range map[string]int{
		"test_attempts_total":   2,
		"test_retries_total":    1,
		"test_executions_total": 1,
	} {
		count, err := testutil.GatherAndCount(reg, name)
		require.NoError(t, err)
		assert.Equal(t, want, count, name)
	}
}

func TestRetryOnNetworkError(t *testing.T) {
	hook := RetryOnNetworkError()
	tests := []struct {
		name     string
		err      error
		eligible bool
		want     bool
	}{
		{name: "network", err: transport.NewNetworkError("dial", errors.New("refused")), eligible: true, want: true},
		{name: "timeout", err: transport.NewTimeoutError("slow", time.Second, nil), eligible: true, want: true},
		{name: "http", err: transport.NewHTTPError("bad", 500, nil), eligible: true, want: false},
		{name: "not eligible", err: transport.NewNetworkError("dial", nil), eligible: false, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := hook(context.Background(), tt.err, nil, tt.eligible)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res != nil && res.Retry)
		})
	}
}

func TestExecute_HooksInAPhaseRunConcurrently(t *testing.T) {
	ft := &fakeTransport{results: []result{ok("ok")}}
	first, second := make(chan struct{}), make(chan struct{})

	// Each hook signals its own start and waits for the other one, which only
	// finishes when both are running at the same time.
	rendezvous := func(mine, other chan struct{}) SuccessHook {
		return func(context.Context, *transport.Response, *Descriptor) (*HookResult, error) {
			close(mine)
			select {
			case <-other:
				return nil, nil
			case <-time.After(2 * time.Second):
				return nil, errors.New("hooks did not overlap")
			}
		}
	}

	exe, err := Build[string](New("https://h", ft).
		AddOnSuccessHook(rendezvous(first, second)).
		AddOnSuccessHook(rendezvous(second, first)))
	require.NoError(t, err)

	got, err := exe.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}
