package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"pokereview/pkg/platform/sentinel"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, sentinel.ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: uniqueViolation}, sentinel.ErrAlreadyUsed},
		{"foreign key violation", &pgconn.PgError{Code: foreignKeyViolation}, sentinel.ErrConflict},
		{"deadline", context.DeadlineExceeded, sentinel.ErrUnavailable},
		{"bad conn", sql.ErrConnDone, sentinel.ErrUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, classify("op", tc.err), tc.want)
		})
	}

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, classify("op", nil))
	})

	t.Run("unknown errors carry no sentinel", func(t *testing.T) {
		err := classify("op", errors.New("syntax"))
		for _, s := range []error{sentinel.ErrNotFound, sentinel.ErrAlreadyUsed, sentinel.ErrConflict, sentinel.ErrUnavailable} {
			assert.NotErrorIs(t, err, s)
		}
		assert.Contains(t, err.Error(), "op: syntax")
	})
}
