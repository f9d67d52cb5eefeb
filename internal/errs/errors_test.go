package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "without cause",
			err:  New(ErrKindNotFound, "connection not registered"),
			want: "[not_found] connection not registered",
		},
		{
			name: "with cause",
			err:  Wrap(ErrKindQueryFailed, "query failed", errors.New("syntax error")),
			want: "[query_failed] query failed: syntax error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		pred func(error) bool
		want bool
	}{
		{"not found matches", New(ErrKindNotFound, "x"), IsNotFound, true},
		{"not found rejects other kind", New(ErrKindTimeout, "x"), IsNotFound, false},
		{"timeout matches", New(ErrKindTimeout, "x"), IsTimeout, true},
		{"connection failed matches", New(ErrKindConnectionFailed, "x"), IsConnectionFailed, true},
		{"query failed matches", New(ErrKindQueryFailed, "x"), IsQueryFailed, true},
		{"invalid input matches", New(ErrKindInvalidInput, "x"), IsInvalidInput, true},
		{"permission denied matches", New(ErrKindPermissionDenied, "x"), IsPermissionDenied, true},
		{"plain error matches nothing", errors.New("plain"), IsNotFound, false},
		{"nil matches nothing", nil, IsNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pred(tt.err))
		})
	}
}

func TestKindOf_WrappedChain(t *testing.T) {
	inner := New(ErrKindPermissionDenied, "access denied")
	outer := fmt.Errorf("listing columns: %w", inner)

	assert.Equal(t, ErrKindPermissionDenied, KindOf(outer))
	assert.True(t, IsPermissionDenied(outer))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(ErrKindConnectionFailed, "ping failed", cause)

	assert.True(t, errors.Is(err, cause))
}
