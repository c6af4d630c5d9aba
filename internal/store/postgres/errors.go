package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"

	"pokereview/pkg/platform/sentinel"
)

// Postgres SQLSTATE codes mapped to sentinels.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// classify wraps err with op and, where the failure kind is known, the
// matching sentinel.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%s: %w: %w", op, sentinel.ErrAlreadyUsed, err)
		case foreignKeyViolation:
			return fmt.Errorf("%s: %w: %w", op, sentinel.ErrConflict, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if isUnavailable(err) {
		return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUnavailable(err error) bool {
	var connErr *pgconn.ConnectError
	var netErr net.Error
	return errors.As(err, &connErr) ||
		errors.As(err, &netErr) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded)
}
