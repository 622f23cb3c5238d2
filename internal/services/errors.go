package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Kind classifies a service failure so the HTTP layer can pick a status code
// without inspecting driver errors.
type Kind int

const (
	KindValidation Kind = iota + 1 // missing/invalid required fields
	KindConflict                   // duplicate unique key (ISBN, email)
	KindBusinessRule               // no available copies, loan not outstanding
	KindNotFound                   // unknown id
	KindInfrastructure             // storage failure, unexpected error
)

// Error is the typed error returned by every service operation. Message is
// safe to show to the caller; Err carries the underlying cause for the log.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the Kind of err, defaulting to KindInfrastructure.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInfrastructure
}

// Message returns the caller-safe message for err; infrastructure failures get
// a generic message so driver text never reaches the client.
func Message(err error) string {
	var svcErr *Error
	if errors.As(err, &svcErr) && svcErr.Kind != KindInfrastructure {
		return svcErr.Message
	}
	return "internal server error"
}

func validationErr(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func conflictErr(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

func businessErr(msg string) error {
	return &Error{Kind: KindBusinessRule, Message: msg}
}

func notFoundErr(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func infraErr(msg string, err error) error {
	return &Error{Kind: KindInfrastructure, Message: msg, Err: err}
}

// isUniqueViolation matches the duplicate-key failures of both backends:
// postgres reports SQLSTATE 23505, sqlite a UNIQUE constraint message.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "23505") || strings.Contains(s, "UNIQUE constraint failed")
}
