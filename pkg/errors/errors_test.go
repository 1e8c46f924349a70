package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := Fetch("download failed", errors.New("connection reset"))
	assert.Equal(t, "fetch error: download failed: connection reset", err.Error())

	bare := Archive("no space", nil)
	assert.Equal(t, "archive error: no space", bare.Error())
}

func TestTypeOfWrapped(t *testing.T) {
	inner := Ledger("save", errors.New("disk full"))
	wrapped := fmt.Errorf("finalize: %w", inner)

	assert.Equal(t, ErrorTypeLedger, TypeOf(wrapped))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(errors.New("plain")))
	assert.True(t, errors.Is(wrapped, inner.Err))
}

func TestIsTypeNested(t *testing.T) {
	err := Listing("page", Auth("session expired", nil))

	assert.True(t, IsType(err, ErrorTypeListing))
	assert.True(t, IsType(err, ErrorTypeAuth))
	assert.False(t, IsType(err, ErrorTypeArchive))
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		err   error
		fatal bool
	}{
		{Auth("invalid session", nil), true},
		{Config("bad value", nil), true},
		{Listing("empty", nil), false},
		{Fetch("timeout", nil), false},
		{errors.New("plain"), false},
	}

	for _, tt := range tests {
		if got := IsFatal(tt.err); got != tt.fatal {
			t.Errorf("IsFatal(%v) = %v, expected %v", tt.err, got, tt.fatal)
		}
	}
}
