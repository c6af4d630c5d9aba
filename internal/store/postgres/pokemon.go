package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pokereview/internal/models"
)

type PokemonRepo struct {
	s *Store
}

func scanPokemon(row interface{ Scan(...any) error }) (models.Pokemon, error) {
	var p models.Pokemon
	err := row.Scan(&p.ID, &p.Name, &p.BirthDate)
	return p, err
}

func (r *PokemonRepo) Exists(ctx context.Context, id int) (bool, error) {
	return r.s.exists(ctx, "pokemon", id)
}

func (r *PokemonRepo) GetAll(ctx context.Context) ([]models.Pokemon, error) {
	rows, err := r.s.exec(ctx).QueryContext(ctx, `SELECT id, name, birth_date FROM pokemon ORDER BY id`)
	if err != nil {
		return nil, classify("list pokemon", err)
	}
	return collect(rows, "list pokemon", func(rows *sql.Rows) (models.Pokemon, error) { return scanPokemon(rows) })
}

func (r *PokemonRepo) GetByID(ctx context.Context, id int) (*models.Pokemon, error) {
	p, err := scanPokemon(r.s.exec(ctx).QueryRowContext(ctx,
		`SELECT id, name, birth_date FROM pokemon WHERE id = $1`, id))
	if err != nil {
		return nil, classify("get pokemon", err)
	}
	return &p, nil
}

// GetRating returns the mean review rating, or 0 when there are no reviews.
func (r *PokemonRepo) GetRating(ctx context.Context, pokemonID int) (float64, error) {
	var rating float64
	err := r.s.exec(ctx).QueryRowContext(ctx,
		`SELECT COALESCE(AVG(rating), 0)::float8 FROM reviews WHERE pokemon_id = $1`, pokemonID).Scan(&rating)
	if err != nil {
		return 0, classify("get pokemon rating", err)
	}
	return rating, nil
}

// Create inserts p and its owner and category associations in one
// transaction.
func (r *PokemonRepo) Create(ctx context.Context, ownerID, categoryID int, p *models.Pokemon) error {
	return r.s.createIfAvailable(ctx, "pokemon",
		`SELECT EXISTS (SELECT 1 FROM pokemon WHERE `+foldedMatch("name", "$1")+`)`, []any{strings.TrimSpace(p.Name)},
		func(ctx context.Context) error {
			err := r.s.exec(ctx).QueryRowContext(ctx,
				`INSERT INTO pokemon (name, birth_date) VALUES ($1, $2) RETURNING id`,
				p.Name, p.BirthDate).Scan(&p.ID)
			if err != nil {
				return classify("insert pokemon", err)
			}
			return r.link(ctx, p.ID, ownerID, categoryID)
		})
}

// Update replaces name and birth date. Non-zero ownerID or categoryID add an
// association; existing ones are kept.
func (r *PokemonRepo) Update(ctx context.Context, ownerID, categoryID int, p *models.Pokemon) error {
	return r.s.RunInTx(ctx, func(ctx context.Context) error {
		res, err := r.s.exec(ctx).ExecContext(ctx,
			`UPDATE pokemon SET name = $2, birth_date = $3 WHERE id = $1`, p.ID, p.Name, p.BirthDate)
		if err != nil {
			return classify("update pokemon", err)
		}
		if err := requireRow(res, "update pokemon"); err != nil {
			return err
		}
		return r.link(ctx, p.ID, ownerID, categoryID)
	})
}

// Delete removes the pokemon; join rows cascade. Reviews must be removed
// first or the delete fails with ErrConflict.
func (r *PokemonRepo) Delete(ctx context.Context, id int) error {
	return r.s.deleteByID(ctx, "pokemon", id)
}

func (r *PokemonRepo) link(ctx context.Context, pokemonID, ownerID, categoryID int) error {
	q := r.s.exec(ctx)
	if ownerID != 0 {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO pokemon_owners (pokemon_id, owner_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			pokemonID, ownerID); err != nil {
			return classify("link pokemon owner", err)
		}
	}
	if categoryID != 0 {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO pokemon_categories (pokemon_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			pokemonID, categoryID); err != nil {
			return classify("link pokemon category", err)
		}
	}
	return nil
}
