package memory

import (
	"context"
	"fmt"

	"pokereview/internal/models"
	"pokereview/pkg/platform/sentinel"
)

type ReviewRepo struct {
	s *Store
}

func (r *ReviewRepo) Exists(_ context.Context, id int) (bool, error) {
	defer r.s.read()()
	_, ok := r.s.t.reviews[id]
	return ok, nil
}

func (r *ReviewRepo) GetAll(_ context.Context) ([]models.Review, error) {
	defer r.s.read()()
	return sortedValues(r.s.t.reviews), nil
}

func (r *ReviewRepo) GetByID(_ context.Context, id int) (*models.Review, error) {
	defer r.s.read()()
	rv, ok := r.s.t.reviews[id]
	if !ok {
		return nil, fmt.Errorf("review %d: %w", id, sentinel.ErrNotFound)
	}
	return &rv, nil
}

func (r *ReviewRepo) GetReviewsOfPokemon(_ context.Context, pokemonID int) ([]models.Review, error) {
	defer r.s.read()()
	return r.filter(func(rv models.Review) bool { return rv.PokemonID == pokemonID }), nil
}

func (r *ReviewRepo) GetReviewsByReviewer(_ context.Context, reviewerID int) ([]models.Review, error) {
	defer r.s.read()()
	return r.filter(func(rv models.Review) bool { return rv.ReviewerID == reviewerID }), nil
}

func (r *ReviewRepo) filter(keep func(models.Review) bool) []models.Review {
	out := make(map[int]models.Review)
	for id, rv := range r.s.t.reviews {
		if keep(rv) {
			out[id] = rv
		}
	}
	return sortedValues(out)
}

func (r *ReviewRepo) Create(ctx context.Context, rv *models.Review) error {
	defer r.s.write(ctx)()
	if err := r.checkRefs(rv); err != nil {
		return err
	}
	if nameTaken(r.s.t.reviews, rv.Title, func(row models.Review) string { return row.Title }) {
		return fmt.Errorf("review %q: %w", rv.Title, sentinel.ErrAlreadyUsed)
	}
	rv.ID = r.s.t.nextID("reviews")
	r.s.t.reviews[rv.ID] = *rv
	return nil
}

// Update replaces title, text and rating. Zero foreign keys keep the
// current references.
func (r *ReviewRepo) Update(ctx context.Context, rv *models.Review) error {
	defer r.s.write(ctx)()
	cur, ok := r.s.t.reviews[rv.ID]
	if !ok {
		return fmt.Errorf("review %d: %w", rv.ID, sentinel.ErrNotFound)
	}
	if rv.PokemonID == 0 {
		rv.PokemonID = cur.PokemonID
	}
	if rv.ReviewerID == 0 {
		rv.ReviewerID = cur.ReviewerID
	}
	if err := r.checkRefs(rv); err != nil {
		return err
	}
	r.s.t.reviews[rv.ID] = *rv
	return nil
}

func (r *ReviewRepo) Delete(ctx context.Context, id int) error {
	defer r.s.write(ctx)()
	if _, ok := r.s.t.reviews[id]; !ok {
		return fmt.Errorf("review %d: %w", id, sentinel.ErrNotFound)
	}
	delete(r.s.t.reviews, id)
	return nil
}

// DeleteMany removes every listed review. Reviews already gone are skipped.
func (r *ReviewRepo) DeleteMany(ctx context.Context, reviews []models.Review) error {
	defer r.s.write(ctx)()
	for _, rv := range reviews {
		delete(r.s.t.reviews, rv.ID)
	}
	return nil
}

func (r *ReviewRepo) checkRefs(rv *models.Review) error {
	if _, ok := r.s.t.pokemon[rv.PokemonID]; !ok {
		return fmt.Errorf("review pokemon %d: %w", rv.PokemonID, sentinel.ErrConflict)
	}
	if _, ok := r.s.t.reviewers[rv.ReviewerID]; !ok {
		return fmt.Errorf("review reviewer %d: %w", rv.ReviewerID, sentinel.ErrConflict)
	}
	return nil
}
