package memory

import (
	"context"
	"fmt"

	"pokereview/internal/models"
	"pokereview/pkg/platform/sentinel"
)

type PokemonRepo struct {
	s *Store
}

func (r *PokemonRepo) Exists(_ context.Context, id int) (bool, error) {
	defer r.s.read()()
	_, ok := r.s.t.pokemon[id]
	return ok, nil
}

func (r *PokemonRepo) GetAll(_ context.Context) ([]models.Pokemon, error) {
	defer r.s.read()()
	return sortedValues(r.s.t.pokemon), nil
}

func (r *PokemonRepo) GetByID(_ context.Context, id int) (*models.Pokemon, error) {
	defer r.s.read()()
	p, ok := r.s.t.pokemon[id]
	if !ok {
		return nil, fmt.Errorf("pokemon %d: %w", id, sentinel.ErrNotFound)
	}
	return &p, nil
}

// GetRating returns the mean review rating, or 0 when there are no reviews.
func (r *PokemonRepo) GetRating(_ context.Context, pokemonID int) (float64, error) {
	defer r.s.read()()
	var sum, n int
	for _, rv := range r.s.t.reviews {
		if rv.PokemonID == pokemonID {
			sum += rv.Rating
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}

// Create inserts p together with its owner and category associations.
func (r *PokemonRepo) Create(ctx context.Context, ownerID, categoryID int, p *models.Pokemon) error {
	defer r.s.write(ctx)()
	if err := r.checkRefs(ownerID, categoryID); err != nil {
		return err
	}
	if nameTaken(r.s.t.pokemon, p.Name, func(row models.Pokemon) string { return row.Name }) {
		return fmt.Errorf("pokemon %q: %w", p.Name, sentinel.ErrAlreadyUsed)
	}
	p.ID = r.s.t.nextID("pokemon")
	r.s.t.pokemon[p.ID] = *p
	r.link(p.ID, ownerID, categoryID)
	return nil
}

// Update replaces name and birth date. Non-zero ownerID or categoryID add an
// association; existing ones are kept.
func (r *PokemonRepo) Update(ctx context.Context, ownerID, categoryID int, p *models.Pokemon) error {
	defer r.s.write(ctx)()
	if _, ok := r.s.t.pokemon[p.ID]; !ok {
		return fmt.Errorf("pokemon %d: %w", p.ID, sentinel.ErrNotFound)
	}
	if err := r.checkRefs(ownerID, categoryID); err != nil {
		return err
	}
	r.s.t.pokemon[p.ID] = *p
	r.link(p.ID, ownerID, categoryID)
	return nil
}

// Delete removes the pokemon and its join rows. Reviews must be removed
// first.
func (r *PokemonRepo) Delete(ctx context.Context, id int) error {
	defer r.s.write(ctx)()
	if _, ok := r.s.t.pokemon[id]; !ok {
		return fmt.Errorf("pokemon %d: %w", id, sentinel.ErrNotFound)
	}
	for _, rv := range r.s.t.reviews {
		if rv.PokemonID == id {
			return fmt.Errorf("pokemon %d has reviews: %w", id, sentinel.ErrConflict)
		}
	}
	delete(r.s.t.pokemon, id)
	for po := range r.s.t.pokemonOwners {
		if po.PokemonID == id {
			delete(r.s.t.pokemonOwners, po)
		}
	}
	for pc := range r.s.t.pokemonCategories {
		if pc.PokemonID == id {
			delete(r.s.t.pokemonCategories, pc)
		}
	}
	return nil
}

func (r *PokemonRepo) checkRefs(ownerID, categoryID int) error {
	if ownerID != 0 {
		if _, ok := r.s.t.owners[ownerID]; !ok {
			return fmt.Errorf("pokemon owner %d: %w", ownerID, sentinel.ErrConflict)
		}
	}
	if categoryID != 0 {
		if _, ok := r.s.t.categories[categoryID]; !ok {
			return fmt.Errorf("pokemon category %d: %w", categoryID, sentinel.ErrConflict)
		}
	}
	return nil
}

func (r *PokemonRepo) link(pokemonID, ownerID, categoryID int) {
	if ownerID != 0 {
		r.s.t.pokemonOwners[models.PokemonOwner{PokemonID: pokemonID, OwnerID: ownerID}] = struct{}{}
	}
	if categoryID != 0 {
		r.s.t.pokemonCategories[models.PokemonCategory{PokemonID: pokemonID, CategoryID: categoryID}] = struct{}{}
	}
}
