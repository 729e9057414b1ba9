// Package dberr maps raw driver errors onto a portable set of error kinds.
//
// Callers test for a kind with errors.Is:
//
//	if errors.Is(err, dberr.ErrUniqueViolation) {
//		// duplicate key
//	}
package dberr

import (
	"errors"
	"fmt"
)

// Kind is the portable classification of a database error.
type Kind int

const (
	Generic Kind = iota
	NotNullViolation
	UniqueViolation
	ForeignKeyViolation
	CheckViolation
	Disconnect
)

var kindNames = [...]string{
	Generic:             "database error",
	NotNullViolation:    "not null constraint violation",
	UniqueViolation:     "unique constraint violation",
	ForeignKeyViolation: "foreign key constraint violation",
	CheckViolation:      "check constraint violation",
	Disconnect:          "disconnected",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Sentinels for errors.Is. Each matches an *Error of the same kind;
// ErrDisconnect matches any *Error whose connection was lost.
var (
	ErrNotNullViolation    = errors.New(NotNullViolation.String())
	ErrUniqueViolation     = errors.New(UniqueViolation.String())
	ErrForeignKeyViolation = errors.New(ForeignKeyViolation.String())
	ErrCheckViolation      = errors.New(CheckViolation.String())
	ErrDisconnect          = errors.New(Disconnect.String())
)

var sentinels = map[Kind]error{
	NotNullViolation:    ErrNotNullViolation,
	UniqueViolation:     ErrUniqueViolation,
	ForeignKeyViolation: ErrForeignKeyViolation,
	CheckViolation:      ErrCheckViolation,
	Disconnect:          ErrDisconnect,
}

// Error is a classified database error.
type Error struct {
	Kind Kind

	// Number is the server error number, or 0 when the driver did not supply one.
	Number int32

	// Message is the original error message.
	Message string

	// Disconnect is set when the connection can no longer be used.
	Disconnect bool

	Err error
}

func (e *Error) Error() string {
	if e.Number != 0 {
		return fmt.Sprintf("%s (error %d): %s", e.Kind, e.Number, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	if target == ErrDisconnect {
		return e.Disconnect
	}
	s, ok := sentinels[e.Kind]
	return ok && s == target
}
