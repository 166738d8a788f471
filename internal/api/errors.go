// Package api provides the filedeck backend REST client and its error taxonomy.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"strings"
)

// ErrAuthRequired indicates there is no signed-in session or the operation lacks a token.
var ErrAuthRequired = errors.New("not signed in")

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ErrPartialFailure indicates an operation that completed only in part.
// Registry refreshes and two-step shares wrap it.
var ErrPartialFailure = errors.New("partial failure")

// ValidationError is returned before any request is made when input is unusable.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) true for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Validation sentinels. Compare with errors.Is.
var (
	ErrNoFileSelected = &ValidationError{Field: "file", Reason: "no file selected"}
	ErrEmptyName      = &ValidationError{Field: "name", Reason: "name must not be blank"}
	ErrInvalidRole    = &ValidationError{Field: "role", Reason: "role must be one of viewer, editor, owner"}
)

// NetworkError is a transport failure: the request produced no response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError is a response with a status the operation does not accept.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

// HTTPStatus exposes the status to error classification in the http package.
func (e *ServerError) HTTPStatus() int {
	return e.Status
}

// NewServerError builds a ServerError from a response, preferring the body's
// error_description, error, message or msg field over the status text.
func NewServerError(resp *nethttp.Response) *ServerError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return &ServerError{Status: resp.StatusCode, Message: messageFromBody(resp.StatusCode, body)}
}

func messageFromBody(status int, body []byte) string {
	var payload struct {
		Description string `json:"error_description"`
		Error       string `json:"error"`
		Message     string `json:"message"`
		Msg         string `json:"msg"`
	}
	if json.Unmarshal(body, &payload) == nil {
		for _, m := range []string{payload.Description, payload.Error, payload.Message, payload.Msg} {
			if m != "" {
				return m
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "<") {
		return text
	}
	if text := nethttp.StatusText(status); text != "" {
		return text
	}
	return "unexpected response"
}

// IsAuthRequired reports whether err means the user has to sign in (again).
func IsAuthRequired(err error) bool {
	if errors.Is(err, ErrAuthRequired) {
		return true
	}
	return StatusCode(err) == nethttp.StatusUnauthorized
}

// IsNetworkError reports whether err is a transport failure.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsValidation reports whether err was raised before any request.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *ServerError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}
