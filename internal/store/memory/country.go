package memory

import (
	"context"
	"fmt"

	"pokereview/internal/models"
	"pokereview/pkg/platform/sentinel"
)

type CountryRepo struct {
	s *Store
}

func (r *CountryRepo) Exists(_ context.Context, id int) (bool, error) {
	defer r.s.read()()
	_, ok := r.s.t.countries[id]
	return ok, nil
}

func (r *CountryRepo) GetAll(_ context.Context) ([]models.Country, error) {
	defer r.s.read()()
	return sortedValues(r.s.t.countries), nil
}

func (r *CountryRepo) GetByID(_ context.Context, id int) (*models.Country, error) {
	defer r.s.read()()
	c, ok := r.s.t.countries[id]
	if !ok {
		return nil, fmt.Errorf("country %d: %w", id, sentinel.ErrNotFound)
	}
	return &c, nil
}

func (r *CountryRepo) GetOwnersByCountry(_ context.Context, countryID int) ([]models.Owner, error) {
	defer r.s.read()()
	out := make(map[int]models.Owner)
	for id, o := range r.s.t.owners {
		if o.CountryID == countryID {
			out[id] = o
		}
	}
	return sortedValues(out), nil
}

func (r *CountryRepo) GetCountryByOwner(_ context.Context, ownerID int) (*models.Country, error) {
	defer r.s.read()()
	o, ok := r.s.t.owners[ownerID]
	if !ok {
		return nil, fmt.Errorf("owner %d: %w", ownerID, sentinel.ErrNotFound)
	}
	c, ok := r.s.t.countries[o.CountryID]
	if !ok {
		return nil, fmt.Errorf("country %d: %w", o.CountryID, sentinel.ErrNotFound)
	}
	return &c, nil
}

func (r *CountryRepo) Create(ctx context.Context, c *models.Country) error {
	defer r.s.write(ctx)()
	if nameTaken(r.s.t.countries, c.Name, func(row models.Country) string { return row.Name }) {
		return fmt.Errorf("country %q: %w", c.Name, sentinel.ErrAlreadyUsed)
	}
	c.ID = r.s.t.nextID("countries")
	r.s.t.countries[c.ID] = *c
	return nil
}

func (r *CountryRepo) Update(ctx context.Context, c *models.Country) error {
	defer r.s.write(ctx)()
	if _, ok := r.s.t.countries[c.ID]; !ok {
		return fmt.Errorf("country %d: %w", c.ID, sentinel.ErrNotFound)
	}
	r.s.t.countries[c.ID] = *c
	return nil
}

// Delete refuses to remove a country that owners still reference.
func (r *CountryRepo) Delete(ctx context.Context, id int) error {
	defer r.s.write(ctx)()
	if _, ok := r.s.t.countries[id]; !ok {
		return fmt.Errorf("country %d: %w", id, sentinel.ErrNotFound)
	}
	for _, o := range r.s.t.owners {
		if o.CountryID == id {
			return fmt.Errorf("country %d has owners: %w", id, sentinel.ErrConflict)
		}
	}
	delete(r.s.t.countries, id)
	return nil
}
