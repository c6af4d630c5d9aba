package handler

//go:generate mockgen -source=ports.go -destination=mocks/handler-mocks.go -package=mocks

import (
	"context"

	"pokereview/internal/audit"
	"pokereview/internal/models"
)

// CategoryRepository stores categories and reads their pokemon.
type CategoryRepository interface {
	Exists(ctx context.Context, id int) (bool, error)
	GetAll(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id int) (*models.Category, error)
	GetPokemonByCategory(ctx context.Context, categoryID int) ([]models.Pokemon, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id int) error
}

type CountryRepository interface {
	Exists(ctx context.Context, id int) (bool, error)
	GetAll(ctx context.Context) ([]models.Country, error)
	GetByID(ctx context.Context, id int) (*models.Country, error)
	GetOwnersByCountry(ctx context.Context, countryID int) ([]models.Owner, error)
	GetCountryByOwner(ctx context.Context, ownerID int) (*models.Country, error)
	Create(ctx context.Context, c *models.Country) error
	Update(ctx context.Context, c *models.Country) error
	Delete(ctx context.Context, id int) error
}

type OwnerRepository interface {
	Exists(ctx context.Context, id int) (bool, error)
	GetAll(ctx context.Context) ([]models.Owner, error)
	GetByID(ctx context.Context, id int) (*models.Owner, error)
	GetPokemonByOwner(ctx context.Context, ownerID int) ([]models.Pokemon, error)
	GetOwnersOfPokemon(ctx context.Context, pokemonID int) ([]models.Owner, error)
	Create(ctx context.Context, o *models.Owner) error
	Update(ctx context.Context, o *models.Owner) error
	Delete(ctx context.Context, id int) error
}

// PokemonRepository writes a pokemon together with its owner and category
// associations. A zero ownerID or categoryID on Update adds nothing.
type PokemonRepository interface {
	Exists(ctx context.Context, id int) (bool, error)
	GetAll(ctx context.Context) ([]models.Pokemon, error)
	GetByID(ctx context.Context, id int) (*models.Pokemon, error)
	GetRating(ctx context.Context, pokemonID int) (float64, error)
	Create(ctx context.Context, ownerID, categoryID int, p *models.Pokemon) error
	Update(ctx context.Context, ownerID, categoryID int, p *models.Pokemon) error
	Delete(ctx context.Context, id int) error
}

type ReviewRepository interface {
	Exists(ctx context.Context, id int) (bool, error)
	GetAll(ctx context.Context) ([]models.Review, error)
	GetByID(ctx context.Context, id int) (*models.Review, error)
	GetReviewsOfPokemon(ctx context.Context, pokemonID int) ([]models.Review, error)
	Create(ctx context.Context, r *models.Review) error
	Update(ctx context.Context, r *models.Review) error
	Delete(ctx context.Context, id int) error
	DeleteMany(ctx context.Context, reviews []models.Review) error
}

type ReviewerRepository interface {
	Exists(ctx context.Context, id int) (bool, error)
	GetAll(ctx context.Context) ([]models.Reviewer, error)
	GetByID(ctx context.Context, id int) (*models.Reviewer, error)
	GetReviewsByReviewer(ctx context.Context, reviewerID int) ([]models.Review, error)
	Create(ctx context.Context, r *models.Reviewer) error
	Update(ctx context.Context, r *models.Reviewer) error
	Delete(ctx context.Context, id int) error
}

// TxRunner groups repository calls into one unit of work. Repositories called
// with the ctx passed to fn join it.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AuditEmitter queues an audit event for a successful write.
type AuditEmitter interface {
	Emit(ctx context.Context, entity string, entityID int, action audit.Action)
}

// MutationCounter counts successful writes.
type MutationCounter interface {
	IncrementMutation(entity, operation string)
}
