package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/pgscope/pgscope/internal/database"
	"github.com/pgscope/pgscope/internal/errs"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.ErrKind
	}{
		{
			name: "deadline exceeded",
			err:  context.DeadlineExceeded,
			want: errs.ErrKindTimeout,
		},
		{
			name: "context canceled",
			err:  context.Canceled,
			want: errs.ErrKindTimeout,
		},
		{
			name: "no rows",
			err:  pgx.ErrNoRows,
			want: errs.ErrKindNotFound,
		},
		{
			name: "undefined table",
			err:  &pgconn.PgError{Code: "42P01", Message: `relation "nope" does not exist`},
			want: errs.ErrKindQueryFailed,
		},
		{
			name: "permission denied",
			err:  &pgconn.PgError{Code: "42501", Message: "permission denied for table users"},
			want: errs.ErrKindPermissionDenied,
		},
		{
			name: "connection exception class 08",
			err:  &pgconn.PgError{Code: "08006", Message: "connection failure"},
			want: errs.ErrKindConnectionFailed,
		},
		{
			name: "network error fallthrough",
			err:  errors.New("dial tcp: connection refused"),
			want: errs.ErrKindConnectionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := mapError(tt.err, "op failed")
			assert.Equal(t, tt.want, mapped.Kind)
			assert.True(t, errors.Is(mapped, tt.err), "cause must be preserved")
		})
	}
}

func TestNew_InvalidDSN(t *testing.T) {
	_, err := New(context.Background(), &database.Config{DSN: "://not-a-dsn"})
	assert.Error(t, err)
	assert.True(t, errs.IsConnectionFailed(err))
}
