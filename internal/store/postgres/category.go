package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pokereview/internal/models"
)

type CategoryRepo struct {
	s *Store
}

func scanCategory(row interface{ Scan(...any) error }) (models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.Name)
	return c, err
}

func (r *CategoryRepo) Exists(ctx context.Context, id int) (bool, error) {
	return r.s.exists(ctx, "categories", id)
}

func (r *CategoryRepo) GetAll(ctx context.Context) ([]models.Category, error) {
	rows, err := r.s.exec(ctx).QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, classify("list categories", err)
	}
	return collect(rows, "list categories", func(rows *sql.Rows) (models.Category, error) { return scanCategory(rows) })
}

func (r *CategoryRepo) GetByID(ctx context.Context, id int) (*models.Category, error) {
	c, err := scanCategory(r.s.exec(ctx).QueryRowContext(ctx, `SELECT id, name FROM categories WHERE id = $1`, id))
	if err != nil {
		return nil, classify("get category", err)
	}
	return &c, nil
}

func (r *CategoryRepo) GetPokemonByCategory(ctx context.Context, categoryID int) ([]models.Pokemon, error) {
	rows, err := r.s.exec(ctx).QueryContext(ctx, `
		SELECT p.id, p.name, p.birth_date
		FROM pokemon p
		JOIN pokemon_categories pc ON pc.pokemon_id = p.id
		WHERE pc.category_id = $1
		ORDER BY p.id`, categoryID)
	if err != nil {
		return nil, classify("list pokemon by category", err)
	}
	return collect(rows, "list pokemon by category", func(rows *sql.Rows) (models.Pokemon, error) { return scanPokemon(rows) })
}

// Create inserts c unless another category already uses its name.
func (r *CategoryRepo) Create(ctx context.Context, c *models.Category) error {
	return r.s.createIfAvailable(ctx, "categories",
		`SELECT EXISTS (SELECT 1 FROM categories WHERE `+foldedMatch("name", "$1")+`)`, []any{strings.TrimSpace(c.Name)},
		func(ctx context.Context) error {
			err := r.s.exec(ctx).QueryRowContext(ctx,
				`INSERT INTO categories (name) VALUES ($1) RETURNING id`, c.Name).Scan(&c.ID)
			return classify("insert category", err)
		})
}

func (r *CategoryRepo) Update(ctx context.Context, c *models.Category) error {
	res, err := r.s.exec(ctx).ExecContext(ctx, `UPDATE categories SET name = $2 WHERE id = $1`, c.ID, c.Name)
	if err != nil {
		return classify("update category", err)
	}
	return requireRow(res, "update category")
}

func (r *CategoryRepo) Delete(ctx context.Context, id int) error {
	return r.s.deleteByID(ctx, "categories", id)
}
