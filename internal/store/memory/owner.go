package memory

import (
	"context"
	"fmt"

	"pokereview/internal/models"
	"pokereview/pkg/platform/sentinel"
)

type OwnerRepo struct {
	s *Store
}

func (r *OwnerRepo) Exists(_ context.Context, id int) (bool, error) {
	defer r.s.read()()
	_, ok := r.s.t.owners[id]
	return ok, nil
}

func (r *OwnerRepo) GetAll(_ context.Context) ([]models.Owner, error) {
	defer r.s.read()()
	return sortedValues(r.s.t.owners), nil
}

func (r *OwnerRepo) GetByID(_ context.Context, id int) (*models.Owner, error) {
	defer r.s.read()()
	o, ok := r.s.t.owners[id]
	if !ok {
		return nil, fmt.Errorf("owner %d: %w", id, sentinel.ErrNotFound)
	}
	return &o, nil
}

func (r *OwnerRepo) GetPokemonByOwner(_ context.Context, ownerID int) ([]models.Pokemon, error) {
	defer r.s.read()()
	out := make(map[int]models.Pokemon)
	for po := range r.s.t.pokemonOwners {
		if po.OwnerID != ownerID {
			continue
		}
		if p, ok := r.s.t.pokemon[po.PokemonID]; ok {
			out[p.ID] = p
		}
	}
	return sortedValues(out), nil
}

func (r *OwnerRepo) GetOwnersOfPokemon(_ context.Context, pokemonID int) ([]models.Owner, error) {
	defer r.s.read()()
	out := make(map[int]models.Owner)
	for po := range r.s.t.pokemonOwners {
		if po.PokemonID != pokemonID {
			continue
		}
		if o, ok := r.s.t.owners[po.OwnerID]; ok {
			out[o.ID] = o
		}
	}
	return sortedValues(out), nil
}

func (r *OwnerRepo) Create(ctx context.Context, o *models.Owner) error {
	defer r.s.write(ctx)()
	if _, ok := r.s.t.countries[o.CountryID]; !ok {
		return fmt.Errorf("owner country %d: %w", o.CountryID, sentinel.ErrConflict)
	}
	if nameTaken(r.s.t.owners, o.Name, func(row models.Owner) string { return row.Name }) {
		return fmt.Errorf("owner %q: %w", o.Name, sentinel.ErrAlreadyUsed)
	}
	o.ID = r.s.t.nextID("owners")
	r.s.t.owners[o.ID] = *o
	return nil
}

// Update replaces name and gasoline. A zero CountryID keeps the current
// country.
func (r *OwnerRepo) Update(ctx context.Context, o *models.Owner) error {
	defer r.s.write(ctx)()
	cur, ok := r.s.t.owners[o.ID]
	if !ok {
		return fmt.Errorf("owner %d: %w", o.ID, sentinel.ErrNotFound)
	}
	if o.CountryID == 0 {
		o.CountryID = cur.CountryID
	}
	if _, ok := r.s.t.countries[o.CountryID]; !ok {
		return fmt.Errorf("owner country %d: %w", o.CountryID, sentinel.ErrConflict)
	}
	r.s.t.owners[o.ID] = *o
	return nil
}

func (r *OwnerRepo) Delete(ctx context.Context, id int) error {
	defer r.s.write(ctx)()
	if _, ok := r.s.t.owners[id]; !ok {
		return fmt.Errorf("owner %d: %w", id, sentinel.ErrNotFound)
	}
	delete(r.s.t.owners, id)
	for po := range r.s.t.pokemonOwners {
		if po.OwnerID == id {
			delete(r.s.t.pokemonOwners, po)
		}
	}
	return nil
}
