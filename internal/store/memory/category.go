package memory

import (
	"context"
	"fmt"

	"pokereview/internal/models"
	"pokereview/pkg/platform/sentinel"
)

type CategoryRepo struct {
	s *Store
}

func (r *CategoryRepo) Exists(_ context.Context, id int) (bool, error) {
	defer r.s.read()()
	_, ok := r.s.t.categories[id]
	return ok, nil
}

func (r *CategoryRepo) GetAll(_ context.Context) ([]models.Category, error) {
	defer r.s.read()()
	return sortedValues(r.s.t.categories), nil
}

func (r *CategoryRepo) GetByID(_ context.Context, id int) (*models.Category, error) {
	defer r.s.read()()
	c, ok := r.s.t.categories[id]
	if !ok {
		return nil, fmt.Errorf("category %d: %w", id, sentinel.ErrNotFound)
	}
	return &c, nil
}

func (r *CategoryRepo) GetPokemonByCategory(_ context.Context, categoryID int) ([]models.Pokemon, error) {
	defer r.s.read()()
	out := make(map[int]models.Pokemon)
	for pc := range r.s.t.pokemonCategories {
		if pc.CategoryID != categoryID {
			continue
		}
		if p, ok := r.s.t.pokemon[pc.PokemonID]; ok {
			out[p.ID] = p
		}
	}
	return sortedValues(out), nil
}

// Create inserts c unless another category already uses its name.
func (r *CategoryRepo) Create(ctx context.Context, c *models.Category) error {
	defer r.s.write(ctx)()
	if nameTaken(r.s.t.categories, c.Name, func(row models.Category) string { return row.Name }) {
		return fmt.Errorf("category %q: %w", c.Name, sentinel.ErrAlreadyUsed)
	}
	c.ID = r.s.t.nextID("categories")
	r.s.t.categories[c.ID] = *c
	return nil
}

func (r *CategoryRepo) Update(ctx context.Context, c *models.Category) error {
	defer r.s.write(ctx)()
	if _, ok := r.s.t.categories[c.ID]; !ok {
		return fmt.Errorf("category %d: %w", c.ID, sentinel.ErrNotFound)
	}
	r.s.t.categories[c.ID] = *c
	return nil
}

func (r *CategoryRepo) Delete(ctx context.Context, id int) error {
	defer r.s.write(ctx)()
	if _, ok := r.s.t.categories[id]; !ok {
		return fmt.Errorf("category %d: %w", id, sentinel.ErrNotFound)
	}
	delete(r.s.t.categories, id)
	for pc := range r.s.t.pokemonCategories {
		if pc.CategoryID == id {
			delete(r.s.t.pokemonCategories, pc)
		}
	}
	return nil
}
