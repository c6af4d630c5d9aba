// Package postgres is the PostgreSQL store. Repositories run against the
// transaction carried in the context when there is one, so a handler can
// group several calls with RunInTx.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pokereview/pkg/platform/sentinel"
	"pokereview/pkg/platform/tx"
)

const defaultTxTimeout = 5 * time.Second

// Store owns the connection pool and hands out per-entity repositories.
type Store struct {
	db        *sql.DB
	txTimeout time.Duration
}

// New constructs a PostgreSQL-backed store.
func New(db *sql.DB) *Store {
	return &Store{db: db, txTimeout: defaultTxTimeout}
}

func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{s: s} }
func (s *Store) Countries() *CountryRepo   { return &CountryRepo{s: s} }
func (s *Store) Owners() *OwnerRepo        { return &OwnerRepo{s: s} }
func (s *Store) Pokemon() *PokemonRepo     { return &PokemonRepo{s: s} }
func (s *Store) Reviews() *ReviewRepo      { return &ReviewRepo{s: s} }
func (s *Store) Reviewers() *ReviewerRepo  { return &ReviewerRepo{s: s} }

func (s *Store) Ping(ctx context.Context) error {
	return classify("ping", s.db.PingContext(ctx))
}

func (s *Store) exec(ctx context.Context) tx.Querier {
	return tx.Executor(ctx, s.db)
}

// RunInTx runs fn inside a transaction carried by the context. A call made
// while a transaction is already open joins it.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := tx.From(ctx); ok {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return classify("begin transaction", err)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("begin transaction", err)
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(tx.WithTx(ctx, sqlTx)); err != nil {
		return err
	}
	return classify("commit transaction", sqlTx.Commit())
}

// foldedMatch compares column, stripped of surrounding whitespace of any kind
// and upper-cased, against an already trimmed parameter.
func foldedMatch(column, param string) string {
	return `upper(regexp_replace(` + column + `, '^\s+|\s+$', '', 'g')) = upper(` + param + `)`
}

// createIfAvailable serializes creates on table with a transaction-scoped
// advisory lock, then runs the probe and, if nothing matched, insert.
func (s *Store) createIfAvailable(ctx context.Context, table, probe string, probeArgs []any, insert func(ctx context.Context) error) error {
	return s.RunInTx(ctx, func(ctx context.Context) error {
		q := s.exec(ctx)
		if _, err := q.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, table); err != nil {
			return classify("lock "+table, err)
		}
		var taken bool
		if err := q.QueryRowContext(ctx, probe, probeArgs...).Scan(&taken); err != nil {
			return classify("check "+table+" name", err)
		}
		if taken {
			return fmt.Errorf("create %s: %w", table, sentinel.ErrAlreadyUsed)
		}
		return insert(ctx)
	})
}

func (s *Store) exists(ctx context.Context, table string, id int) (bool, error) {
	var ok bool
	err := s.exec(ctx).QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&ok)
	if err != nil {
		return false, classify("check "+table+" exists", err)
	}
	return ok, nil
}

// deleteByID deletes one row and reports ErrNotFound when nothing matched.
func (s *Store) deleteByID(ctx context.Context, table string, id int) error {
	res, err := s.exec(ctx).ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return classify("delete from "+table, err)
	}
	return requireRow(res, "delete from "+table)
}

func requireRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return classify(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
	}
	return nil
}

// collect drains rows through scan.
func collect[T any](rows *sql.Rows, op string, scan func(*sql.Rows) (T, error)) ([]T, error) {
	defer rows.Close()
	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, classify(op, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return out, nil
}
