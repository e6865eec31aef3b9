package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and backend errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrNoActiveDevice     = fmt.Errorf("no active playback device")

	// Dispatch errors. These never cross the transport as faults; the
	// dispatcher folds them into textual tool results.
	ErrMissingArgument   = fmt.Errorf("missing required argument")
	ErrMalformedArgument = fmt.Errorf("malformed argument")
	ErrUnknownOperation  = fmt.Errorf("unknown operation")

	// Transport errors
	ErrTransport     = fmt.Errorf("transport failure")
	ErrSessionClosed = fmt.Errorf("session closed")
	ErrCallFailed    = fmt.Errorf("tool call failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
