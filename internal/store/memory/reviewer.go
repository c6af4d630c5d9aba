package memory

import (
	"context"
	"fmt"

	"pokereview/internal/models"
	"pokereview/pkg/platform/sentinel"
)

type ReviewerRepo struct {
	s *Store
}

func (r *ReviewerRepo) Exists(_ context.Context, id int) (bool, error) {
	defer r.s.read()()
	_, ok := r.s.t.reviewers[id]
	return ok, nil
}

func (r *ReviewerRepo) GetAll(_ context.Context) ([]models.Reviewer, error) {
	defer r.s.read()()
	return sortedValues(r.s.t.reviewers), nil
}

func (r *ReviewerRepo) GetByID(_ context.Context, id int) (*models.Reviewer, error) {
	defer r.s.read()()
	rv, ok := r.s.t.reviewers[id]
	if !ok {
		return nil, fmt.Errorf("reviewer %d: %w", id, sentinel.ErrNotFound)
	}
	return &rv, nil
}

func (r *ReviewerRepo) GetReviewsByReviewer(ctx context.Context, reviewerID int) ([]models.Review, error) {
	return r.s.Reviews().GetReviewsByReviewer(ctx, reviewerID)
}

// Create inserts rv unless a reviewer with the same first and last name
// exists.
func (r *ReviewerRepo) Create(ctx context.Context, rv *models.Reviewer) error {
	defer r.s.write(ctx)()
	first, last := models.NormalizeName(rv.FirstName), models.NormalizeName(rv.LastName)
	for _, row := range r.s.t.reviewers {
		if models.NormalizeName(row.FirstName) == first && models.NormalizeName(row.LastName) == last {
			return fmt.Errorf("reviewer %q: %w", rv.FullName(), sentinel.ErrAlreadyUsed)
		}
	}
	rv.ID = r.s.t.nextID("reviewers")
	r.s.t.reviewers[rv.ID] = *rv
	return nil
}

func (r *ReviewerRepo) Update(ctx context.Context, rv *models.Reviewer) error {
	defer r.s.write(ctx)()
	if _, ok := r.s.t.reviewers[rv.ID]; !ok {
		return fmt.Errorf("reviewer %d: %w", rv.ID, sentinel.ErrNotFound)
	}
	r.s.t.reviewers[rv.ID] = *rv
	return nil
}

// Delete removes the reviewer and every review they wrote.
func (r *ReviewerRepo) Delete(ctx context.Context, id int) error {
	defer r.s.write(ctx)()
	if _, ok := r.s.t.reviewers[id]; !ok {
		return fmt.Errorf("reviewer %d: %w", id, sentinel.ErrNotFound)
	}
	delete(r.s.t.reviewers, id)
	for rid, rv := range r.s.t.reviews {
		if rv.ReviewerID == id {
			delete(r.s.t.reviews, rid)
		}
	}
	return nil
}
