package http

import (
	"context"
	"errors"
	"math/rand"
	"net"
	nethttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/filedeck/filedeck/internal/constants"
)

// ErrorType represents a coarse class of request failure, used for user-facing hints.
type ErrorType int

const (
	// ErrorTypeSuccess indicates operation succeeded
	ErrorTypeSuccess ErrorType = iota
	// ErrorTypeNetwork indicates the request never got a response (DNS, refused, reset, timeout)
	ErrorTypeNetwork
	// ErrorTypeServer indicates a 5xx or 429 response
	ErrorTypeServer
	// ErrorTypeClient indicates a 4xx response other than auth failures
	ErrorTypeClient
	// ErrorTypeAuth indicates 401/403 or a missing session
	ErrorTypeAuth
)

// StatusCoder is implemented by errors that carry an HTTP status.
type StatusCoder interface {
	HTTPStatus() int
}

// ClassifyError determines the error class.
// Errors carrying a status are classified by status; otherwise transport errors
// are network and anything else is a client error.
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypeSuccess
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		return classifyStatus(sc.HTTPStatus())
	}

	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) {
		return ErrorTypeNetwork
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "eof") ||
		strings.Contains(errStr, "timeout") {
		return ErrorTypeNetwork
	}
	if strings.Contains(errStr, "unauthorized") || strings.Contains(errStr, "not signed in") {
		return ErrorTypeAuth
	}

	return ErrorTypeClient
}

func classifyStatus(status int) ErrorType {
	switch {
	case status == nethttp.StatusUnauthorized || status == nethttp.StatusForbidden:
		return ErrorTypeAuth
	case status == nethttp.StatusTooManyRequests || status >= 500:
		return ErrorTypeServer
	case status >= 400:
		return ErrorTypeClient
	default:
		return ErrorTypeSuccess
	}
}

// ErrorTypeName returns a human-readable name for an ErrorType
func ErrorTypeName(errType ErrorType) string {
	switch errType {
	case ErrorTypeSuccess:
		return "success"
	case ErrorTypeNetwork:
		return "network"
	case ErrorTypeServer:
		return "server"
	case ErrorTypeClient:
		return "client"
	case ErrorTypeAuth:
		return "auth"
	default:
		return "unknown"
	}
}

// Hint returns a one-line suggestion for the user, or "" when there is none.
func Hint(errType ErrorType) string {
	switch errType {
	case ErrorTypeNetwork:
		return "check that the backend is reachable (backend.url, proxy settings)"
	case ErrorTypeServer:
		return "the backend reported an internal error; try again later"
	case ErrorTypeAuth:
		return "run 'filedeck login' to sign in again"
	default:
		return ""
	}
}

// CalculateBackoff returns exponential backoff duration with full jitter.
//
// Formula: random(0, min(maxDelay, initialDelay * 2^attempt))
func CalculateBackoff(attempt int, initialDelay, maxDelay time.Duration) time.Duration {
	if attempt <= 0 || initialDelay <= 0 {
		return 0
	}

	base := maxDelay
	if attempt < 31 {
		if d := time.Duration(1<<uint(attempt)) * initialDelay; d > 0 && d < maxDelay {
			base = d
		}
	}
	if base <= 0 {
		return 0
	}

	return time.Duration(rand.Int63n(int64(base)))
}

// JitterBackoff is a retryablehttp.Backoff using CalculateBackoff.
// A Retry-After header on 429/503 responses takes precedence.
func JitterBackoff(min, max time.Duration, attemptNum int, resp *nethttp.Response) time.Duration {
	if resp != nil && (resp.StatusCode == nethttp.StatusTooManyRequests || resp.StatusCode == nethttp.StatusServiceUnavailable) {
		return retryablehttp.DefaultBackoff(min, max, attemptNum, resp)
	}
	return CalculateBackoff(attemptNum+1, min, max)
}

// IdempotentRetryPolicy retries GET and HEAD requests on connection errors, 429 and 5xx.
// Mutations are never retried so a rename or share is not applied twice.
func IdempotentRetryPolicy(ctx context.Context, resp *nethttp.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	var req *nethttp.Request
	if resp != nil {
		req = resp.Request
	} else {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			// Method is not on url.Error; Op holds it ("Get", "Post", ...)
			if !isIdempotent(strings.ToUpper(urlErr.Op)) {
				return false, nil
			}
		}
	}
	if req != nil && !isIdempotent(req.Method) {
		return false, nil
	}

	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	if resp.StatusCode == nethttp.StatusTooManyRequests || resp.StatusCode >= 500 {
		return resp.StatusCode != nethttp.StatusNotImplemented, nil
	}
	return false, nil
}

func isIdempotent(method string) bool {
	return method == nethttp.MethodGet || method == nethttp.MethodHead
}

// NewRetryClient wraps the proxy-aware base client with GET retries and returns a
// plain *http.Client. The retry layer never turns responses into errors; callers
// inspect status codes themselves.
func NewRetryClient(base *nethttp.Client, logger retryablehttp.LeveledLogger) *nethttp.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = base
	retryClient.RetryMax = constants.RetryMax
	retryClient.RetryWaitMin = constants.RetryWaitMin
	retryClient.RetryWaitMax = constants.RetryWaitMax
	retryClient.CheckRetry = IdempotentRetryPolicy
	retryClient.Backoff = JitterBackoff
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil
	if logger != nil {
		retryClient.Logger = logger
	}
	return retryClient.StandardClient()
}
