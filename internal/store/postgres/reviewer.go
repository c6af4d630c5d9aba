package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pokereview/internal/models"
)

type ReviewerRepo struct {
	s *Store
}

func scanReviewer(row interface{ Scan(...any) error }) (models.Reviewer, error) {
	var rv models.Reviewer
	err := row.Scan(&rv.ID, &rv.FirstName, &rv.LastName)
	return rv, err
}

func (r *ReviewerRepo) Exists(ctx context.Context, id int) (bool, error) {
	return r.s.exists(ctx, "reviewers", id)
}

func (r *ReviewerRepo) GetAll(ctx context.Context) ([]models.Reviewer, error) {
	rows, err := r.s.exec(ctx).QueryContext(ctx, `SELECT id, first_name, last_name FROM reviewers ORDER BY id`)
	if err != nil {
		return nil, classify("list reviewers", err)
	}
	return collect(rows, "list reviewers", func(rows *sql.Rows) (models.Reviewer, error) { return scanReviewer(rows) })
}

func (r *ReviewerRepo) GetByID(ctx context.Context, id int) (*models.Reviewer, error) {
	rv, err := scanReviewer(r.s.exec(ctx).QueryRowContext(ctx,
		`SELECT id, first_name, last_name FROM reviewers WHERE id = $1`, id))
	if err != nil {
		return nil, classify("get reviewer", err)
	}
	return &rv, nil
}

func (r *ReviewerRepo) GetReviewsByReviewer(ctx context.Context, reviewerID int) ([]models.Review, error) {
	return r.s.Reviews().GetReviewsByReviewer(ctx, reviewerID)
}

// Create inserts rv unless a reviewer with the same first and last name
// exists.
func (r *ReviewerRepo) Create(ctx context.Context, rv *models.Reviewer) error {
	return r.s.createIfAvailable(ctx, "reviewers", `
		SELECT EXISTS (
			SELECT 1 FROM reviewers
			WHERE `+foldedMatch("first_name", "$1")+`
			AND `+foldedMatch("last_name", "$2")+`
		)`, []any{strings.TrimSpace(rv.FirstName), strings.TrimSpace(rv.LastName)},
		func(ctx context.Context) error {
			err := r.s.exec(ctx).QueryRowContext(ctx,
				`INSERT INTO reviewers (first_name, last_name) VALUES ($1, $2) RETURNING id`,
				rv.FirstName, rv.LastName).Scan(&rv.ID)
			return classify("insert reviewer", err)
		})
}

func (r *ReviewerRepo) Update(ctx context.Context, rv *models.Reviewer) error {
	res, err := r.s.exec(ctx).ExecContext(ctx,
		`UPDATE reviewers SET first_name = $2, last_name = $3 WHERE id = $1`, rv.ID, rv.FirstName, rv.LastName)
	if err != nil {
		return classify("update reviewer", err)
	}
	return requireRow(res, "update reviewer")
}

// Delete removes the reviewer; their reviews cascade.
func (r *ReviewerRepo) Delete(ctx context.Context, id int) error {
	return r.s.deleteByID(ctx, "reviewers", id)
}
