package api

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse marks a body that was not the JSON the contract
// promises. It always travels inside a TransportError.
var ErrMalformedResponse = errors.New("malformed response")

// StatusError means the service was reachable and answered with a non-2xx
// status.
type StatusError struct {
	Op         string
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: server returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: server returned status %d: %s", e.Op, e.StatusCode, e.Detail)
}

// TransportError means no usable response came back: the service was
// unreachable, the request was cancelled, or the body was malformed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsStatus reports whether err carries a StatusError and returns it.
func IsStatus(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsTransport reports whether err is, or wraps, a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func malformed(op, format string, args ...interface{}) error {
	return &TransportError{Op: op, Err: fmt.Errorf("%w: "+format, append([]interface{}{ErrMalformedResponse}, args...)...)}
}
