package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

type statusErr int

func (s statusErr) Error() string   { return fmt.Sprintf("status %d", int(s)) }
func (s statusErr) HTTPStatus() int { return int(s) }

func fastRetryClient() *nethttp.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = time.Millisecond
	rc.RetryWaitMax = 2 * time.Millisecond
	rc.CheckRetry = IdempotentRetryPolicy
	rc.Backoff = JitterBackoff
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = nil
	return rc.StandardClient()
}

// TestIdempotentRetryPolicy_RetriesGet verifies a GET is retried after a 5xx.
func TestIdempotentRetryPolicy_RetriesGet(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(nethttp.StatusBadGateway)
			return
		}
		w.WriteHeader(nethttp.StatusOK)
	}))
	defer srv.Close()

	resp, err := fastRetryClient().Get(srv.URL + "/api/edit/files")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		t.Errorf("expected 200 after retry, got %d", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("expected 2 calls, got %d", got)
	}
}

// TestIdempotentRetryPolicy_NeverRetriesMutations verifies PUT/POST/DELETE go out once.
func TestIdempotentRetryPolicy_NeverRetriesMutations(t *testing.T) {
	for _, method := range []string{nethttp.MethodPost, nethttp.MethodPut, nethttp.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(nethttp.StatusInternalServerError)
			}))
			defer srv.Close()

			req, _ := nethttp.NewRequest(method, srv.URL+"/api/edit/files/1", strings.NewReader(`{}`))
			resp, err := fastRetryClient().Do(req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			if resp.StatusCode != nethttp.StatusInternalServerError {
				t.Errorf("expected the 500 to pass through, got %d", resp.StatusCode)
			}
			if got := atomic.LoadInt32(&calls); got != 1 {
				t.Errorf("expected exactly 1 call for %s, got %d", method, got)
			}
		})
	}
}

// TestIdempotentRetryPolicy_ClientErrorNotRetried verifies 4xx responses return immediately.
func TestIdempotentRetryPolicy_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(nethttp.StatusNotFound)
	}))
	defer srv.Close()

	resp, err := fastRetryClient().Get(srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected 1 call, got %d", got)
	}
}

// TestNewRetryClient_HonoursRetryAfter verifies the production client retries a 503 with Retry-After.
func TestNewRetryClient_HonoursRetryAfter(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(nethttp.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(nethttp.StatusOK)
	}))
	defer srv.Close()

	client := NewRetryClient(&nethttp.Client{}, nil)
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestIdempotentRetryPolicy_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	retry, err := IdempotentRetryPolicy(ctx, nil, errors.New("connection reset"))
	if retry {
		t.Error("expected no retry after cancellation")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeSuccess},
		{"unauthorized status", statusErr(401), ErrorTypeAuth},
		{"forbidden status", fmt.Errorf("wrapped: %w", statusErr(403)), ErrorTypeAuth},
		{"throttled", statusErr(429), ErrorTypeServer},
		{"server error", statusErr(502), ErrorTypeServer},
		{"bad request", statusErr(400), ErrorTypeClient},
		{"url error", &url.Error{Op: "Get", URL: "http://x", Err: errors.New("dial failed")}, ErrorTypeNetwork},
		{"op error", &net.OpError{Op: "dial", Err: errors.New("refused")}, ErrorTypeNetwork},
		{"reset text", errors.New("read: connection reset by peer"), ErrorTypeNetwork},
		{"other", errors.New("folder name is required"), ErrorTypeClient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError() = %s, want %s", ErrorTypeName(got), ErrorTypeName(tt.want))
			}
		})
	}
}

func TestHint(t *testing.T) {
	if Hint(ErrorTypeAuth) == "" || Hint(ErrorTypeNetwork) == "" {
		t.Error("auth and network errors should carry a hint")
	}
	if Hint(ErrorTypeClient) != "" {
		t.Error("client errors should not carry a hint")
	}
}

func TestCalculateBackoff(t *testing.T) {
	if d := CalculateBackoff(0, time.Second, time.Minute); d != 0 {
		t.Errorf("attempt 0 should not wait, got %v", d)
	}

	for attempt := 1; attempt < 40; attempt++ {
		d := CalculateBackoff(attempt, 100*time.Millisecond, 2*time.Second)
		if d < 0 || d >= 2*time.Second {
			t.Fatalf("attempt %d: backoff %v out of range", attempt, d)
		}
	}
}
