package providers

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a provider failure for the orchestrator's retry policy.
type ErrorKind int

const (
	// KindAuth is an authentication failure. Fatal, never retried.
	KindAuth ErrorKind = iota
	// KindRateLimit is a 429. Retryable with backoff.
	KindRateLimit
	// KindNetwork is a transport failure or 5xx. Retryable.
	KindNetwork
	// KindBadResponse is a malformed body on a successful HTTP status.
	// Fatal: treated as a provider bug and surfaced verbatim.
	KindBadResponse
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindRateLimit:
		return "rate-limit"
	case KindNetwork:
		return "network"
	case KindBadResponse:
		return "bad-response"
	default:
		return "unknown"
	}
}

// Error is a provider invocation failure.
type Error struct {
	Provider string
	Kind     ErrorKind
	Status   int
	Message  string
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s error (status %d): %s", e.Provider, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s error: %s", e.Provider, e.Kind, e.Message)
}

// Retryable reports whether the orchestrator may retry this failure.
func (e *Error) Retryable() bool {
	return e.Kind == KindRateLimit || e.Kind == KindNetwork
}

// IsRetryable reports whether err is a retryable provider error.
func IsRetryable(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Retryable()
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == KindAuth
}

// classifyStatus maps a non-200 HTTP status to a provider error.
func classifyStatus(provider string, status int, body string) *Error {
	switch {
	case status == 429:
		return &Error{Provider: provider, Kind: KindRateLimit, Status: status, Message: "rate limited"}
	case status == 401 || status == 403:
		return &Error{Provider: provider, Kind: KindAuth, Status: status, Message: body}
	case status >= 500:
		return &Error{Provider: provider, Kind: KindNetwork, Status: status, Message: body}
	default:
		return &Error{Provider: provider, Kind: KindBadResponse, Status: status, Message: body}
	}
}

// netError wraps a transport failure as retryable.
func netError(provider string, err error) *Error {
	return &Error{Provider: provider, Kind: KindNetwork, Message: err.Error()}
}

// badResponse marks a 200 response whose body could not be decoded.
func badResponse(provider, msg string) *Error {
	return &Error{Provider: provider, Kind: KindBadResponse, Message: msg}
}
