// Package repository defines the collection-level operations of the lead
// desk and the error kinds shared by them.  Handlers map the kinds to
// HTTP statuses with errors.Is:
//
//	ErrValidation -> 400
//	ErrConflict   -> 400
//	ErrNotFound   -> 404
package repository

import (
	"errors"

	"github.com/iliyamo/insurance-lead-desk/internal/database"
)

var (
	// ErrValidation is returned when required input is missing or malformed.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when the operation clashes with stored state,
	// such as claiming a policy that is already linked.
	ErrConflict = errors.New("conflict")
)

// Error carries a client-facing message together with its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// Validation returns an ErrValidation with msg as its client message.
func Validation(msg string) error { return &Error{Kind: ErrValidation, Message: msg} }

// NotFound returns an ErrNotFound with msg as its client message.
func NotFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

// Conflict returns an ErrConflict with msg as its client message.
func Conflict(msg string) error { return &Error{Kind: ErrConflict, Message: msg} }

// notFound translates the store's miss into a repository NotFound.
func notFound(err error, msg string) error {
	if errors.Is(err, database.ErrNotFound) {
		return NotFound(msg)
	}
	return err
}

func isNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
