//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"pokereview/internal/models"
	"pokereview/internal/store/postgres"
	"pokereview/pkg/platform/sentinel"
	"pokereview/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.Require().NoError(postgres.Migrate(context.Background(), s.postgres.DB))
	s.store = postgres.New(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(),
		"pokemon_categories", "pokemon_owners", "reviews", "reviewers", "pokemon", "owners", "countries", "categories")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) seed(ctx context.Context) (models.Owner, models.Category, models.Pokemon, models.Reviewer) {
	country := models.Country{Name: "Kanto"}
	s.Require().NoError(s.store.Countries().Create(ctx, &country))
	owner := models.Owner{Name: "Ash", Gasoline: "Pallet", CountryID: country.ID}
	s.Require().NoError(s.store.Owners().Create(ctx, &owner))
	category := models.Category{Name: "Electric"}
	s.Require().NoError(s.store.Categories().Create(ctx, &category))
	pokemon := models.Pokemon{Name: "Pikachu", BirthDate: time.Date(1996, 1, 1, 0, 0, 0, 0, time.UTC)}
	s.Require().NoError(s.store.Pokemon().Create(ctx, owner.ID, category.ID, &pokemon))
	reviewer := models.Reviewer{FirstName: "Gary", LastName: "Oak"}
	s.Require().NoError(s.store.Reviewers().Create(ctx, &reviewer))
	return owner, category, pokemon, reviewer
}

func (s *PostgresStoreSuite) TestCreateAndRead() {
	ctx := context.Background()
	owner, category, pokemon, _ := s.seed(ctx)

	got, err := s.store.Pokemon().GetByID(ctx, pokemon.ID)
	s.Require().NoError(err)
	s.Equal("Pikachu", got.Name)
	s.True(pokemon.BirthDate.Equal(got.BirthDate.UTC()))

	byCat, err := s.store.Categories().GetPokemonByCategory(ctx, category.ID)
	s.Require().NoError(err)
	s.Len(byCat, 1)

	country, err := s.store.Countries().GetCountryByOwner(ctx, owner.ID)
	s.Require().NoError(err)
	s.Equal("Kanto", country.Name)

	_, err = s.store.Owners().GetByID(ctx, 9999)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestNameUniqueness() {
	ctx := context.Background()
	s.Require().NoError(s.store.Categories().Create(ctx, &models.Category{Name: "Fire"}))

	for _, name := range []string{" fire ", "fire\t", "\nFIRE\r\n"} {
		err := s.store.Categories().Create(ctx, &models.Category{Name: name})
		s.ErrorIs(err, sentinel.ErrAlreadyUsed, "name %q", name)
	}

	s.Require().NoError(s.store.Reviewers().Create(ctx, &models.Reviewer{FirstName: "Gary", LastName: "Oak"}))
	err := s.store.Reviewers().Create(ctx, &models.Reviewer{FirstName: "\tgary", LastName: "OAK\n"})
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	other := models.Category{Name: "Water"}
	s.Require().NoError(s.store.Categories().Create(ctx, &other))
	other.Name = "FIRE"
	s.Require().NoError(s.store.Categories().Update(ctx, &other), "update must not check names")
}

// TestConcurrentCreate verifies that concurrent creates of one name result in
// exactly one success.
func (s *PostgresStoreSuite) TestConcurrentCreate() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var successCount, takenCount atomic.Int32
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Countries().Create(ctx, &models.Country{Name: "Hoenn"})
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, sentinel.ErrAlreadyUsed):
				takenCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load())
	s.Equal(int32(goroutines-1), takenCount.Load())
}

func (s *PostgresStoreSuite) TestDeleteRules() {
	ctx := context.Background()
	owner, _, pokemon, reviewer := s.seed(ctx)
	review := models.Review{Title: "Great", Text: "t", Rating: 5, PokemonID: pokemon.ID, ReviewerID: reviewer.ID}
	s.Require().NoError(s.store.Reviews().Create(ctx, &review))

	s.ErrorIs(s.store.Pokemon().Delete(ctx, pokemon.ID), sentinel.ErrConflict)
	s.ErrorIs(s.store.Countries().Delete(ctx, owner.CountryID), sentinel.ErrConflict)
	s.ErrorIs(s.store.Reviewers().Delete(ctx, 9999), sentinel.ErrNotFound)

	s.Require().NoError(s.store.Reviewers().Delete(ctx, reviewer.ID))
	exists, err := s.store.Reviews().Exists(ctx, review.ID)
	s.Require().NoError(err)
	s.False(exists)
}

func (s *PostgresStoreSuite) TestCascadeInTx() {
	ctx := context.Background()
	_, _, pokemon, reviewer := s.seed(ctx)
	for i, title := range []string{"One", "Two", "Three"} {
		rv := models.Review{Title: title, Text: "t", Rating: i + 1, PokemonID: pokemon.ID, ReviewerID: reviewer.ID}
		s.Require().NoError(s.store.Reviews().Create(ctx, &rv))
	}

	rating, err := s.store.Pokemon().GetRating(ctx, pokemon.ID)
	s.Require().NoError(err)
	s.InDelta(2.0, rating, 0.0001)

	boom := errors.New("boom")
	err = s.store.RunInTx(ctx, func(ctx context.Context) error {
		reviews, err := s.store.Reviews().GetReviewsOfPokemon(ctx, pokemon.ID)
		if err != nil {
			return err
		}
		if err := s.store.Reviews().DeleteMany(ctx, reviews); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)
	reviews, err := s.store.Reviews().GetReviewsOfPokemon(ctx, pokemon.ID)
	s.Require().NoError(err)
	s.Len(reviews, 3, "failed transaction must roll back")

	err = s.store.RunInTx(ctx, func(ctx context.Context) error {
		reviews, err := s.store.Reviews().GetReviewsOfPokemon(ctx, pokemon.ID)
		if err != nil {
			return err
		}
		if err := s.store.Reviews().DeleteMany(ctx, reviews); err != nil {
			return err
		}
		return s.store.Pokemon().Delete(ctx, pokemon.ID)
	})
	s.Require().NoError(err)
	exists, err := s.store.Pokemon().Exists(ctx, pokemon.ID)
	s.Require().NoError(err)
	s.False(exists)
}
