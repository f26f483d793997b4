package polymarket

// errors.go — error classification for the venue client.
//
// The engine's reaction depends on the class, not the message:
//   NetworkError — transient transport failure or timeout. Retryable by
//                  the caller on the next cycle; the client never
//                  retries these itself.
//   AuthError    — signature/credential problem. Potentially systemic,
//                  surfaced at error level, backed off until next cycle.
//   VenueError   — the venue answered but refused or misbehaved.

import (
	"errors"
	"fmt"
)

// NetworkError wraps a transport-level failure (DNS, connect, timeout).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("network error: %v", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// AuthError is an authentication or signing failure (401/403, bad
// credentials, clock skew beyond the venue's tolerance).
type AuthError struct {
	Status int
	Msg    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (status %d): %s", e.Status, e.Msg)
}

// AuthFailure marks the error as an authentication problem without the
// caller needing to import this package's concrete type.
func (e *AuthError) AuthFailure() {}

// VenueError is any other venue-side failure (4xx, persistent 5xx).
type VenueError struct {
	Status int
	Msg    string
}

func (e *VenueError) Error() string {
	return fmt.Sprintf("venue error (status %d): %s", e.Status, e.Msg)
}

// IsNetworkErr reports whether err is (or wraps) a NetworkError.
func IsNetworkErr(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsAuthErr reports whether err is (or wraps) an AuthError.
func IsAuthErr(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsVenueErr reports whether err is (or wraps) a VenueError.
func IsVenueErr(err error) bool {
	var ve *VenueError
	return errors.As(err, &ve)
}

// classifyStatus maps an HTTP status to a typed error.
func classifyStatus(status int, body []byte) error {
	switch {
	case status == 401 || status == 403:
		return &AuthError{Status: status, Msg: string(body)}
	default:
		return &VenueError{Status: status, Msg: string(body)}
	}
}
