package dto

import "pokereview/internal/models"

// MapSlice applies fn to every element of in. A nil input yields an empty,
// non-nil slice so list endpoints always encode as [].
func MapSlice[T, U any](in []T, fn func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}

func FromCategory(c models.Category) CategoryDto {
	return CategoryDto{ID: c.ID, Name: c.Name}
}

func (d CategoryDto) ToModel() models.Category {
	return models.Category{ID: d.ID, Name: d.Name}
}

func FromCountry(c models.Country) CountryDto {
	return CountryDto{ID: c.ID, Name: c.Name}
}

func (d CountryDto) ToModel() models.Country {
	return models.Country{ID: d.ID, Name: d.Name}
}

func FromOwner(o models.Owner) OwnerDto {
	return OwnerDto{ID: o.ID, Name: o.Name, Gasoline: o.Gasoline}
}

// ToModel leaves CountryID unset; the handler resolves it from the query.
func (d OwnerDto) ToModel() models.Owner {
	return models.Owner{ID: d.ID, Name: d.Name, Gasoline: d.Gasoline}
}

func FromPokemon(p models.Pokemon) PokemonDto {
	return PokemonDto{ID: p.ID, Name: p.Name, BirthDate: NewDate(p.BirthDate)}
}

func (d PokemonDto) ToModel() models.Pokemon {
	return models.Pokemon{ID: d.ID, Name: d.Name, BirthDate: d.BirthDate.Time}
}

func FromReview(r models.Review) ReviewDto {
	return ReviewDto{ID: r.ID, Title: r.Title, Text: r.Text, Rating: r.Rating}
}

// ToModel leaves PokemonID and ReviewerID unset; the handler resolves them.
func (d ReviewDto) ToModel() models.Review {
	return models.Review{ID: d.ID, Title: d.Title, Text: d.Text, Rating: d.Rating}
}

func FromReviewer(r models.Reviewer) ReviewerDto {
	return ReviewerDto{ID: r.ID, FirstName: r.FirstName, LastName: r.LastName}
}

func (d ReviewerDto) ToModel() models.Reviewer {
	return models.Reviewer{ID: d.ID, FirstName: d.FirstName, LastName: d.LastName}
}
