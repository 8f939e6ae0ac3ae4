package partnersync

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigurationNotFound indicates no active proxy configuration
	// references the partner customer endpoint
	ErrConfigurationNotFound = errors.New("partnersync: customer proxy configuration not found")

	// ErrTokenAcquisition indicates the identity provider did not return a
	// usable access token
	ErrTokenAcquisition = errors.New("partnersync: token acquisition failed")

	// ErrPartnerUnavailable indicates the partner system could not be reached
	ErrPartnerUnavailable = errors.New("partnersync: partner system unavailable")

	// ErrConnectionTimeout indicates the outbound call exceeded its deadline
	ErrConnectionTimeout = errors.New("partnersync: connection timeout")

	// ErrConnectionRefused indicates the partner endpoint refused the connection
	ErrConnectionRefused = errors.New("partnersync: connection refused")

	// ErrInvalidEnvelope indicates the partner response could not be decoded
	// into any known envelope shape
	ErrInvalidEnvelope = errors.New("partnersync: invalid partner response envelope")
)

// TransformationError reports a failure while mapping an account aggregate
// into a customer command. The partially built payload is attached so callers
// can inspect how far the mapping got.
type TransformationError struct {
	Reason  string
	Cause   error
	Partial *CustomerCommand
}

// Error implements the error interface
func (e *TransformationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("partnersync: transformation failed: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("partnersync: transformation failed: %s", e.Reason)
}

// Unwrap returns the underlying cause
func (e *TransformationError) Unwrap() error {
	return e.Cause
}

// ProxyError reports an HTTP-level failure from the backend proxy
type ProxyError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface
func (e *ProxyError) Error() string {
	return fmt.Sprintf("partnersync: proxy request failed with status %d: %s", e.StatusCode, e.Message)
}
