package apperr

import (
	"errors"
	"fmt"
)

// ErrNotFound signals that an operation referenced a record that is not in the
// store. Read paths treat it as a benign outcome rather than a failure.
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed caller input. It is never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// NewValidation builds a ValidationError with a formatted message.
func NewValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// TransportFailure wraps a network or remote-store error. The affected
// optimistic update must be rolled back before this is returned.
type TransportFailure struct {
	Err error
}

func (e *TransportFailure) Error() string {
	return fmt.Sprintf("transport failure: %v", e.Err)
}

func (e *TransportFailure) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is a TransportFailure.
func IsTransport(err error) bool {
	var te *TransportFailure
	return errors.As(err, &te)
}

// GenerationFailure means the generative service responded, but the response
// did not conform to the expected plan schema or the service declined the
// request. Distinct from TransportFailure so callers can suggest a different
// prompt instead of a connectivity check.
type GenerationFailure struct {
	Err error
}

func (e *GenerationFailure) Error() string {
	return fmt.Sprintf("generation failure: %v", e.Err)
}

func (e *GenerationFailure) Unwrap() error {
	return e.Err
}

// IsGeneration reports whether err is a GenerationFailure.
func IsGeneration(err error) bool {
	var ge *GenerationFailure
	return errors.As(err, &ge)
}

// StoreWriteFailure wraps a failed persistence write from a plan store or the
// favorites ledger. By the time it is returned the local state has already
// been restored to what it was before the call.
type StoreWriteFailure struct {
	Op  string
	Err error
}

func (e *StoreWriteFailure) Error() string {
	return fmt.Sprintf("store write failed (%s): %v", e.Op, e.Err)
}

func (e *StoreWriteFailure) Unwrap() error {
	return e.Err
}

// IsStoreWrite reports whether err is a StoreWriteFailure.
func IsStoreWrite(err error) bool {
	var se *StoreWriteFailure
	return errors.As(err, &se)
}
