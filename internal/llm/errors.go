package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a provider failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindAuth
	KindRateLimit
	KindBilling
	KindWarmup
	KindModelUnsupported
	KindConfig
)

// Error is the error type returned by provider adapters.
type Error struct {
	Kind     Kind
	Provider string
	Message  string
	Details  string
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s: %s", e.Provider, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// KindOf extracts the failure kind from any error. Errors that did not
// originate in a provider adapter report KindUnknown.
func KindOf(err error) Kind {
	var provErr *Error
	if errors.As(err, &provErr) {
		return provErr.Kind
	}
	return KindUnknown
}

// ErrorDetails returns the provider payload attached to the error, if any.
func ErrorDetails(err error) string {
	var provErr *Error
	if errors.As(err, &provErr) && provErr.Details != "" {
		return provErr.Details
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// Status maps any error to the HTTP status the chat endpoint reports.
func Status(err error) int {
	switch KindOf(err) {
	case KindAuth:
		return http.StatusUnauthorized
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindBilling:
		return http.StatusPaymentRequired
	case KindWarmup:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
