package cmis

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		kind     Kind
	}{
		{"not found", NotFound("object %s", "x"), ErrNotFound, KindNotFound},
		{"unauthorized", Unauthorized("no read"), ErrUnauthorized, KindUnauthorized},
		{"invalid argument", InvalidArgument("depth must not be 0"), ErrInvalidArgument, KindInvalidArgument},
		{"not supported", NotSupported("createFolder"), ErrNotSupported, KindNotSupported},
		{"runtime", Runtime(errors.New("disk"), "read failed"), ErrRuntime, KindRuntime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("call: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.Equal(t, tt.kind, KindOf(wrapped))
		})
	}
}

func TestErrorIsDoesNotCrossKinds(t *testing.T) {
	err := NotFound("missing")
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.NotErrorIs(t, err, ErrRuntime)
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, KindRuntime, KindOf(errors.New("boom")))
}

func TestRuntimeUnwrapsCause(t *testing.T) {
	cause := errors.New("badger closed")
	err := Runtime(cause, "read entity")
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "badger closed")
}
