package contract

import (
	"errors"
	"fmt"

	"contractloader/internal/ledger"
)

// Reason tags why a contract could not be loaded
type Reason string

const (
	ReasonInvalidReference    Reason = "invalid-reference"
	ReasonInstanceNotFound    Reason = "not-found-instance"
	ReasonMalformedExecutable Reason = "malformed-executable"
	ReasonCodeNotFound        Reason = "not-found-code"
)

// ErrInvalidReference is returned when the contract reference cannot be parsed
var ErrInvalidReference = errors.New("invalid contract reference")

// AbsenceError reports an expected absence: the contract id is bad, or the ledger has no
// usable entry for it. Transport and decoding failures are never AbsenceErrors.
type AbsenceError struct {
	Reason    Reason
	Reference string
	Err       error
}

func (e *AbsenceError) Error() string {
	return fmt.Sprintf("contract %s: %s: %v", e.Reference, e.Reason, e.Err)
}

func (e *AbsenceError) Unwrap() error {
	return e.Err
}

// IsAbsence reports whether err is an AbsenceError and returns it
func IsAbsence(err error) (*AbsenceError, bool) {
	var absence *AbsenceError
	if errors.As(err, &absence) {
		return absence, true
	}
	return nil, false
}

// absenceFor maps fetcher sentinels to their reason, ok is false for anything else
func absenceFor(reference string, err error) (*AbsenceError, bool) {
	var reason Reason
	switch {
	case errors.Is(err, ErrInvalidReference):
		reason = ReasonInvalidReference
	case errors.Is(err, ledger.ErrInstanceNotFound):
		reason = ReasonInstanceNotFound
	case errors.Is(err, ledger.ErrMalformedExecutable):
		reason = ReasonMalformedExecutable
	case errors.Is(err, ledger.ErrCodeNotFound):
		reason = ReasonCodeNotFound
	default:
		return nil, false
	}
	return &AbsenceError{Reason: reason, Reference: reference, Err: err}, true
}
