// Package dto defines the wire shapes of every entity and the field mapping
// between those shapes and internal/models. Handlers never encode models
// directly.
package dto

type CategoryDto struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type CountryDto struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type OwnerDto struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Gasoline string `json:"gasoline"`
}

type PokemonDto struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	BirthDate Date   `json:"birthDate"`
}

type ReviewDto struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}

type ReviewerDto struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}
