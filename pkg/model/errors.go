package model

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a provider failure. The kind decides whether the retry
// wrapper may re-attempt the call.
type ErrorKind string

const (
	// ErrorKindAuth covers invalid or missing credentials.
	ErrorKindAuth ErrorKind = "auth"
	// ErrorKindInvalidRequest covers malformed requests the provider rejected.
	ErrorKindInvalidRequest ErrorKind = "invalid_request"
	// ErrorKindRateLimited covers provider throttling.
	ErrorKindRateLimited ErrorKind = "rate_limited"
	// ErrorKindUnavailable covers transient provider or network failures.
	ErrorKindUnavailable ErrorKind = "unavailable"
	// ErrorKindCancelled covers context cancellation and deadline expiry.
	ErrorKindCancelled ErrorKind = "cancelled"
	// ErrorKindUnknown covers everything else. Treated as permanent.
	ErrorKindUnknown ErrorKind = "unknown"
)

// ProviderError is the normalized failure returned by every adapter. Provider
// SDK errors are mapped onto a small kind set so the orchestration core never
// inspects provider-specific types.
type ProviderError struct {
	// Provider names the adapter, e.g. "openai" or "aws_bedrock".
	Provider string

	// Kind classifies the failure.
	Kind ErrorKind

	// Message is a short human-readable description.
	Message string

	// HTTPStatus is the upstream status code when one was received, 0 otherwise.
	HTTPStatus int

	// Err is the underlying SDK error.
	Err error
}

func (e *ProviderError) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("%s: %s (%s, status %d)", e.Provider, e.Message, e.Kind, e.HTTPStatus)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Provider, e.Message, e.Kind)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Transient reports whether the failure is worth retrying.
func (e *ProviderError) Transient() bool {
	switch e.Kind {
	case ErrorKindRateLimited, ErrorKindUnavailable:
		return true
	default:
		return false
	}
}

// NewProviderError builds a ProviderError wrapping err.
func NewProviderError(provider string, kind ErrorKind, message string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Message: message, Err: err}
}

// IsTransient reports whether err is a retryable provider failure. Context
// cancellation is never transient.
func IsTransient(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Transient()
	}
	return false
}

// KindFromHTTPStatus maps an upstream HTTP status onto an error kind.
// 429 and all 5xx are transient, 401/403 are auth failures, remaining 4xx are
// permanent request errors.
func KindFromHTTPStatus(status int) ErrorKind {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorKindRateLimited
	case status >= 500:
		return ErrorKindUnavailable
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrorKindAuth
	case status >= 400:
		return ErrorKindInvalidRequest
	default:
		return ErrorKindUnknown
	}
}

// WrapContextError converts a context error into a ProviderError so callers
// see one error shape. Returns err unchanged when it is not a context error.
func WrapContextError(provider string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NewProviderError(provider, ErrorKindCancelled, err.Error(), err)
	}
	return err
}
