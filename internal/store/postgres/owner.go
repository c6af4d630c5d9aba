package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pokereview/internal/models"
)

type OwnerRepo struct {
	s *Store
}

func scanOwner(row interface{ Scan(...any) error }) (models.Owner, error) {
	var o models.Owner
	err := row.Scan(&o.ID, &o.Name, &o.Gasoline, &o.CountryID)
	return o, err
}

func (r *OwnerRepo) Exists(ctx context.Context, id int) (bool, error) {
	return r.s.exists(ctx, "owners", id)
}

func (r *OwnerRepo) GetAll(ctx context.Context) ([]models.Owner, error) {
	rows, err := r.s.exec(ctx).QueryContext(ctx, `SELECT id, name, gasoline, country_id FROM owners ORDER BY id`)
	if err != nil {
		return nil, classify("list owners", err)
	}
	return collect(rows, "list owners", func(rows *sql.Rows) (models.Owner, error) { return scanOwner(rows) })
}

func (r *OwnerRepo) GetByID(ctx context.Context, id int) (*models.Owner, error) {
	o, err := scanOwner(r.s.exec(ctx).QueryRowContext(ctx,
		`SELECT id, name, gasoline, country_id FROM owners WHERE id = $1`, id))
	if err != nil {
		return nil, classify("get owner", err)
	}
	return &o, nil
}

func (r *OwnerRepo) GetPokemonByOwner(ctx context.Context, ownerID int) ([]models.Pokemon, error) {
	rows, err := r.s.exec(ctx).QueryContext(ctx, `
		SELECT p.id, p.name, p.birth_date
		FROM pokemon p
		JOIN pokemon_owners po ON po.pokemon_id = p.id
		WHERE po.owner_id = $1
		ORDER BY p.id`, ownerID)
	if err != nil {
		return nil, classify("list pokemon by owner", err)
	}
	return collect(rows, "list pokemon by owner", func(rows *sql.Rows) (models.Pokemon, error) { return scanPokemon(rows) })
}

func (r *OwnerRepo) GetOwnersOfPokemon(ctx context.Context, pokemonID int) ([]models.Owner, error) {
	rows, err := r.s.exec(ctx).QueryContext(ctx, `
		SELECT o.id, o.name, o.gasoline, o.country_id
		FROM owners o
		JOIN pokemon_owners po ON po.owner_id = o.id
		WHERE po.pokemon_id = $1
		ORDER BY o.id`, pokemonID)
	if err != nil {
		return nil, classify("list owners of pokemon", err)
	}
	return collect(rows, "list owners of pokemon", func(rows *sql.Rows) (models.Owner, error) { return scanOwner(rows) })
}

func (r *OwnerRepo) Create(ctx context.Context, o *models.Owner) error {
	return r.s.createIfAvailable(ctx, "owners",
		`SELECT EXISTS (SELECT 1 FROM owners WHERE `+foldedMatch("name", "$1")+`)`, []any{strings.TrimSpace(o.Name)},
		func(ctx context.Context) error {
			err := r.s.exec(ctx).QueryRowContext(ctx,
				`INSERT INTO owners (name, gasoline, country_id) VALUES ($1, $2, $3) RETURNING id`,
				o.Name, o.Gasoline, o.CountryID).Scan(&o.ID)
			return classify("insert owner", err)
		})
}

// Update replaces name and gasoline. A zero CountryID keeps the current
// country.
func (r *OwnerRepo) Update(ctx context.Context, o *models.Owner) error {
	err := r.s.exec(ctx).QueryRowContext(ctx, `
		UPDATE owners
		SET name = $2, gasoline = $3, country_id = COALESCE(NULLIF($4, 0), country_id)
		WHERE id = $1
		RETURNING country_id`, o.ID, o.Name, o.Gasoline, o.CountryID).Scan(&o.CountryID)
	return classify("update owner", err)
}

func (r *OwnerRepo) Delete(ctx context.Context, id int) error {
	return r.s.deleteByID(ctx, "owners", id)
}
