package dberr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Is(t *testing.T) {
	tests := []struct {
		name  string
		err   *Error
		is    []error
		isNot []error
	}{
		{
			name:  "unique",
			err:   &Error{Kind: UniqueViolation},
			is:    []error{ErrUniqueViolation},
			isNot: []error{ErrNotNullViolation, ErrDisconnect},
		},
		{
			name:  "not null on lost connection",
			err:   &Error{Kind: NotNullViolation, Disconnect: true},
			is:    []error{ErrNotNullViolation, ErrDisconnect},
			isNot: []error{ErrUniqueViolation},
		},
		{
			name: "disconnect kind",
			err:  &Error{Kind: Disconnect, Disconnect: true},
			is:   []error{ErrDisconnect},
		},
		{
			name:  "generic",
			err:   &Error{Kind: Generic},
			isNot: []error{ErrUniqueViolation, ErrNotNullViolation, ErrForeignKeyViolation, ErrCheckViolation, ErrDisconnect},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("context: %w", tt.err)
			for _, target := range tt.is {
				assert.ErrorIs(t, wrapped, target)
			}
			for _, target := range tt.isNot {
				assert.NotErrorIs(t, wrapped, target)
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	e := &Error{Kind: UniqueViolation, Number: 2627, Message: "Cannot insert duplicate key"}
	assert.Equal(t, "unique constraint violation (error 2627): Cannot insert duplicate key", e.Error())

	e = &Error{Kind: Disconnect, Message: "EOF"}
	assert.Equal(t, "disconnected: EOF", e.Error())
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	e := &Error{Kind: Generic, Err: cause}
	assert.ErrorIs(t, e, cause)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "check constraint violation", CheckViolation.String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
}
