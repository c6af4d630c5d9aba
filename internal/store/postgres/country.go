package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pokereview/internal/models"
)

type CountryRepo struct {
	s *Store
}

func scanCountry(row interface{ Scan(...any) error }) (models.Country, error) {
	var c models.Country
	err := row.Scan(&c.ID, &c.Name)
	return c, err
}

func (r *CountryRepo) Exists(ctx context.Context, id int) (bool, error) {
	return r.s.exists(ctx, "countries", id)
}

func (r *CountryRepo) GetAll(ctx context.Context) ([]models.Country, error) {
	rows, err := r.s.exec(ctx).QueryContext(ctx, `SELECT id, name FROM countries ORDER BY id`)
	if err != nil {
		return nil, classify("list countries", err)
	}
	return collect(rows, "list countries", func(rows *sql.Rows) (models.Country, error) { return scanCountry(rows) })
}

func (r *CountryRepo) GetByID(ctx context.Context, id int) (*models.Country, error) {
	c, err := scanCountry(r.s.exec(ctx).QueryRowContext(ctx, `SELECT id, name FROM countries WHERE id = $1`, id))
	if err != nil {
		return nil, classify("get country", err)
	}
	return &c, nil
}

func (r *CountryRepo) GetOwnersByCountry(ctx context.Context, countryID int) ([]models.Owner, error) {
	rows, err := r.s.exec(ctx).QueryContext(ctx,
		`SELECT id, name, gasoline, country_id FROM owners WHERE country_id = $1 ORDER BY id`, countryID)
	if err != nil {
		return nil, classify("list owners by country", err)
	}
	return collect(rows, "list owners by country", func(rows *sql.Rows) (models.Owner, error) { return scanOwner(rows) })
}

func (r *CountryRepo) GetCountryByOwner(ctx context.Context, ownerID int) (*models.Country, error) {
	c, err := scanCountry(r.s.exec(ctx).QueryRowContext(ctx, `
		SELECT c.id, c.name
		FROM countries c
		JOIN owners o ON o.country_id = c.id
		WHERE o.id = $1`, ownerID))
	if err != nil {
		return nil, classify("get country by owner", err)
	}
	return &c, nil
}

func (r *CountryRepo) Create(ctx context.Context, c *models.Country) error {
	return r.s.createIfAvailable(ctx, "countries",
		`SELECT EXISTS (SELECT 1 FROM countries WHERE `+foldedMatch("name", "$1")+`)`, []any{strings.TrimSpace(c.Name)},
		func(ctx context.Context) error {
			err := r.s.exec(ctx).QueryRowContext(ctx,
				`INSERT INTO countries (name) VALUES ($1) RETURNING id`, c.Name).Scan(&c.ID)
			return classify("insert country", err)
		})
}

func (r *CountryRepo) Update(ctx context.Context, c *models.Country) error {
	res, err := r.s.exec(ctx).ExecContext(ctx, `UPDATE countries SET name = $2 WHERE id = $1`, c.ID, c.Name)
	if err != nil {
		return classify("update country", err)
	}
	return requireRow(res, "update country")
}

// Delete fails with ErrConflict while owners reference the country.
func (r *CountryRepo) Delete(ctx context.Context, id int) error {
	return r.s.deleteByID(ctx, "countries", id)
}
