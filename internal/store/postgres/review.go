package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"

	"pokereview/internal/models"
)

type ReviewRepo struct {
	s *Store
}

const reviewColumns = `id, title, text, rating, pokemon_id, reviewer_id`

func scanReview(row interface{ Scan(...any) error }) (models.Review, error) {
	var rv models.Review
	err := row.Scan(&rv.ID, &rv.Title, &rv.Text, &rv.Rating, &rv.PokemonID, &rv.ReviewerID)
	return rv, err
}

func (r *ReviewRepo) Exists(ctx context.Context, id int) (bool, error) {
	return r.s.exists(ctx, "reviews", id)
}

func (r *ReviewRepo) list(ctx context.Context, op, where string, args ...any) ([]models.Review, error) {
	rows, err := r.s.exec(ctx).QueryContext(ctx, `SELECT `+reviewColumns+` FROM reviews `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	return collect(rows, op, func(rows *sql.Rows) (models.Review, error) { return scanReview(rows) })
}

func (r *ReviewRepo) GetAll(ctx context.Context) ([]models.Review, error) {
	return r.list(ctx, "list reviews", "")
}

func (r *ReviewRepo) GetByID(ctx context.Context, id int) (*models.Review, error) {
	rv, err := scanReview(r.s.exec(ctx).QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id))
	if err != nil {
		return nil, classify("get review", err)
	}
	return &rv, nil
}

func (r *ReviewRepo) GetReviewsOfPokemon(ctx context.Context, pokemonID int) ([]models.Review, error) {
	return r.list(ctx, "list reviews of pokemon", "WHERE pokemon_id = $1", pokemonID)
}

func (r *ReviewRepo) GetReviewsByReviewer(ctx context.Context, reviewerID int) ([]models.Review, error) {
	return r.list(ctx, "list reviews by reviewer", "WHERE reviewer_id = $1", reviewerID)
}

func (r *ReviewRepo) Create(ctx context.Context, rv *models.Review) error {
	return r.s.createIfAvailable(ctx, "reviews",
		`SELECT EXISTS (SELECT 1 FROM reviews WHERE `+foldedMatch("title", "$1")+`)`, []any{strings.TrimSpace(rv.Title)},
		func(ctx context.Context) error {
			err := r.s.exec(ctx).QueryRowContext(ctx, `
				INSERT INTO reviews (title, text, rating, pokemon_id, reviewer_id)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id`, rv.Title, rv.Text, rv.Rating, rv.PokemonID, rv.ReviewerID).Scan(&rv.ID)
			return classify("insert review", err)
		})
}

// Update replaces title, text and rating. Zero foreign keys keep the
// current references.
func (r *ReviewRepo) Update(ctx context.Context, rv *models.Review) error {
	err := r.s.exec(ctx).QueryRowContext(ctx, `
		UPDATE reviews
		SET title = $2, text = $3, rating = $4,
			pokemon_id = COALESCE(NULLIF($5, 0), pokemon_id),
			reviewer_id = COALESCE(NULLIF($6, 0), reviewer_id)
		WHERE id = $1
		RETURNING pokemon_id, reviewer_id`,
		rv.ID, rv.Title, rv.Text, rv.Rating, rv.PokemonID, rv.ReviewerID).Scan(&rv.PokemonID, &rv.ReviewerID)
	return classify("update review", err)
}

func (r *ReviewRepo) Delete(ctx context.Context, id int) error {
	return r.s.deleteByID(ctx, "reviews", id)
}

// DeleteMany removes every listed review in one statement.
func (r *ReviewRepo) DeleteMany(ctx context.Context, reviews []models.Review) error {
	if len(reviews) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(reviews))
	for _, rv := range reviews {
		ids = append(ids, int64(rv.ID))
	}
	_, err := r.s.exec(ctx).ExecContext(ctx, `DELETE FROM reviews WHERE id = ANY($1::int[])`, pq.Array(ids))
	return classify("delete reviews", err)
}
