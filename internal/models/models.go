// Package models holds the persisted entity shapes. Identities are assigned by
// the store on create; foreign keys are plain integer columns set by handlers
// before save.
package models

import (
	"strings"
	"time"
)

type Category struct {
	ID   int
	Name string
}

type Country struct {
	ID   int
	Name string
}

// Owner belongs to exactly one Country.
type Owner struct {
	ID        int
	Name      string
	Gasoline  string
	CountryID int
}

type Pokemon struct {
	ID        int
	Name      string
	BirthDate time.Time
}

// Review belongs to exactly one Pokemon and one Reviewer.
type Review struct {
	ID         int
	Title      string
	Text       string
	Rating     int
	PokemonID  int
	ReviewerID int
}

type Reviewer struct {
	ID        int
	FirstName string
	LastName  string
}

// PokemonOwner is the join row between Pokemon and Owner.
type PokemonOwner struct {
	PokemonID int
	OwnerID   int
}

// PokemonCategory is the join row between Pokemon and Category.
type PokemonCategory struct {
	PokemonID  int
	CategoryID int
}

// FullName is used in diagnostics and in the reviewer uniqueness rule.
func (r Reviewer) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
}

// NormalizeName folds a name or title for uniqueness comparison: surrounding
// whitespace is ignored and case is folded.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
