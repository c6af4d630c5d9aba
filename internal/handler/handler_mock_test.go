package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"pokereview/internal/audit"
	"pokereview/internal/dto"
	"pokereview/internal/handler/mocks"
	"pokereview/internal/models"
	"pokereview/pkg/platform/sentinel"
	"pokereview/pkg/testutil"
)

type HandlerMockSuite struct {
	suite.Suite
	categories *mocks.MockCategoryRepository
	countries  *mocks.MockCountryRepository
	owners     *mocks.MockOwnerRepository
	pokemon    *mocks.MockPokemonRepository
	reviews    *mocks.MockReviewRepository
	reviewers  *mocks.MockReviewerRepository
	tx         *mocks.MockTxRunner
	emitter    *mocks.MockAuditEmitter
	counter    *mocks.MockMutationCounter
	router     chi.Router
}

func TestHandlerMockSuite(t *testing.T) {
	suite.Run(t, new(HandlerMockSuite))
}

func (s *HandlerMockSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.categories = mocks.NewMockCategoryRepository(ctrl)
	s.countries = mocks.NewMockCountryRepository(ctrl)
	s.owners = mocks.NewMockOwnerRepository(ctrl)
	s.pokemon = mocks.NewMockPokemonRepository(ctrl)
	s.reviews = mocks.NewMockReviewRepository(ctrl)
	s.reviewers = mocks.NewMockReviewerRepository(ctrl)
	s.tx = mocks.NewMockTxRunner(ctrl)
	s.emitter = mocks.NewMockAuditEmitter(ctrl)
	s.counter = mocks.NewMockMutationCounter(ctrl)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := NewRecorder(s.emitter, s.counter)
	s.router = chi.NewRouter()
	NewCategoryHandler(s.categories, logger, recorder).Register(s.router)
	NewCountryHandler(s.countries, s.owners, logger, recorder).Register(s.router)
	NewPokemonHandler(PokemonDeps{
		Pokemon:    s.pokemon,
		Owners:     s.owners,
		Categories: s.categories,
		Reviews:    s.reviews,
		Tx:         s.tx,
	}, logger, recorder).Register(s.router)
	NewReviewerHandler(s.reviewers, logger, recorder).Register(s.router)
}

// passthroughTx runs fn inline, standing in for a store transaction.
func (s *HandlerMockSuite) passthroughTx() {
	s.tx.EXPECT().RunInTx(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		})
}

func (s *HandlerMockSuite) TestCreateCategory() {
	s.T().Run("assigns identity and records the write", func(t *testing.T) {
		s.categories.EXPECT().Create(gomock.Any(), &models.Category{Name: "Fire"}).DoAndReturn(
			func(_ context.Context, c *models.Category) error {
				c.ID = 4
				return nil
			})
		s.counter.EXPECT().IncrementMutation("category", "created")
		s.emitter.EXPECT().Emit(gomock.Any(), "category", 4, audit.ActionCreated)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(t, http.MethodPost, "/api/category", dto.CategoryDto{Name: "Fire"}))
		testutil.AssertSuccess(t, rr)
	})

	s.T().Run("storage failure names the entity", func(t *testing.T) {
		s.categories.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(t, http.MethodPost, "/api/category", dto.CategoryDto{Name: "Fire"}))
		testutil.AssertStatus(t, rr, http.StatusInternalServerError)
		body := testutil.UnmarshalErrorResponse(t, rr)
		assert.Equal(t, "internal_error", body.Error)
		assert.Equal(t, "Something went wrong saving Fire", body.Description)
	})

	s.T().Run("unreachable store is unavailable", func(t *testing.T) {
		s.categories.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(fmt.Errorf("create category: %w: %w", sentinel.ErrUnavailable, context.DeadlineExceeded))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(t, http.MethodPost, "/api/category", dto.CategoryDto{Name: "Fire"}))
		testutil.AssertStatusAndError(t, rr, http.StatusServiceUnavailable, "service_unavailable")
	})
}

func (s *HandlerMockSuite) TestUpdateMismatchTouchesNoStore() {
	// The strict controller fails the test on any repository call.
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPut, "/api/reviewer/3",
		dto.ReviewerDto{ID: 4, FirstName: "Ash", LastName: "Ketchum"}))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
}

func (s *HandlerMockSuite) TestUpdateRaceReportsNotFound() {
	s.reviewers.EXPECT().Exists(gomock.Any(), 3).Return(true, nil)
	s.reviewers.EXPECT().Update(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("update reviewer 3: %w", sentinel.ErrNotFound))

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPut, "/api/reviewer/3",
		dto.ReviewerDto{ID: 3, FirstName: "Ash", LastName: "Ketchum"}))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}

func (s *HandlerMockSuite) TestUpdateFailureNamesTheEntity() {
	s.reviewers.EXPECT().Exists(gomock.Any(), 3).Return(true, nil)
	s.reviewers.EXPECT().Update(gomock.Any(), &models.Reviewer{ID: 3, FirstName: "Ash", LastName: "Ketchum"}).
		Return(errors.New("connection reset"))

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPut, "/api/reviewer/3",
		dto.ReviewerDto{ID: 3, FirstName: "Ash", LastName: "Ketchum"}))
	testutil.AssertStatus(s.T(), rr, http.StatusInternalServerError)
	assert.Equal(s.T(), "Something went wrong updating Ash Ketchum", testutil.UnmarshalErrorResponse(s.T(), rr).Description)
}

func (s *HandlerMockSuite) TestDeleteCountryConflict() {
	s.countries.EXPECT().GetByID(gomock.Any(), 2).Return(&models.Country{ID: 2, Name: "Kanto"}, nil)
	s.countries.EXPECT().Delete(gomock.Any(), 2).
		Return(fmt.Errorf("delete country 2: %w", sentinel.ErrConflict))

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodDelete, "/api/country/2"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "conflict")
}

func (s *HandlerMockSuite) TestDeletePokemon() {
	pikachu := &models.Pokemon{ID: 1, Name: "Pikachu", BirthDate: time.Date(1996, 1, 1, 0, 0, 0, 0, time.UTC)}
	reviews := []models.Review{{ID: 10, PokemonID: 1}, {ID: 11, PokemonID: 1}}

	testutil.Given(s.T(), "a pokemon with two reviews", func(t *testing.T) {
		testutil.When(t, "every step succeeds", func(t *testing.T) {
			gomock.InOrder(
				s.pokemon.EXPECT().GetByID(gomock.Any(), 1).Return(pikachu, nil),
				s.reviews.EXPECT().GetReviewsOfPokemon(gomock.Any(), 1).Return(reviews, nil),
				s.reviews.EXPECT().DeleteMany(gomock.Any(), reviews).Return(nil),
				s.pokemon.EXPECT().Delete(gomock.Any(), 1).Return(nil),
			)
			s.passthroughTx()
			s.counter.EXPECT().IncrementMutation("pokemon", "deleted")
			s.emitter.EXPECT().Emit(gomock.Any(), "pokemon", 1, audit.ActionDeleted)

			rr := testutil.DoRequest(s.router, testutil.NewRequest(t, http.MethodDelete, "/api/pokemon/1"))
			testutil.Then(t, "the pokemon and its reviews are gone", func(t *testing.T) {
				testutil.AssertNoContent(t, rr)
			})
		})

		testutil.When(t, "deleting the pokemon fails after its reviews were removed", func(t *testing.T) {
			rolledBack := false
			s.pokemon.EXPECT().GetByID(gomock.Any(), 1).Return(pikachu, nil)
			s.reviews.EXPECT().GetReviewsOfPokemon(gomock.Any(), 1).Return(reviews, nil)
			s.reviews.EXPECT().DeleteMany(gomock.Any(), reviews).Return(nil)
			s.pokemon.EXPECT().Delete(gomock.Any(), 1).Return(errors.New("statement timeout"))
			s.tx.EXPECT().RunInTx(gomock.Any(), gomock.Any()).DoAndReturn(
				func(ctx context.Context, fn func(context.Context) error) error {
					err := fn(ctx)
					rolledBack = err != nil
					return err
				})

			rr := testutil.DoRequest(s.router, testutil.NewRequest(t, http.MethodDelete, "/api/pokemon/1"))
			testutil.Then(t, "the transaction is rolled back and nothing is recorded", func(t *testing.T) {
				require.True(t, rolledBack)
				testutil.AssertStatus(t, rr, http.StatusInternalServerError)
				assert.Equal(t, "Something went wrong deleting Pikachu", testutil.UnmarshalErrorResponse(t, rr).Description)
			})
		})

		testutil.When(t, "removing the reviews fails", func(t *testing.T) {
			s.pokemon.EXPECT().GetByID(gomock.Any(), 1).Return(pikachu, nil)
			s.reviews.EXPECT().GetReviewsOfPokemon(gomock.Any(), 1).Return(reviews, nil)
			s.reviews.EXPECT().DeleteMany(gomock.Any(), reviews).Return(errors.New("lock timeout"))
			s.passthroughTx()

			rr := testutil.DoRequest(s.router, testutil.NewRequest(t, http.MethodDelete, "/api/pokemon/1"))
			testutil.Then(t, "the pokemon is never deleted", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusInternalServerError)
				assert.Equal(t, "Something went wrong deleting reviews of Pikachu", testutil.UnmarshalErrorResponse(t, rr).Description)
			})
		})
	})
}

func (s *HandlerMockSuite) TestDeleteMissingPokemon() {
	s.pokemon.EXPECT().GetByID(gomock.Any(), 8).Return(nil, fmt.Errorf("get pokemon 8: %w", sentinel.ErrNotFound))

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodDelete, "/api/pokemon/8"))
	testutil.AssertStatus(s.T(), rr, http.StatusNotFound)
	assert.Equal(s.T(), "pokemon 8 not found", testutil.UnmarshalErrorResponse(s.T(), rr).Description)
}

func (s *HandlerMockSuite) TestCreatePokemonChecksReferencesFirst() {
	s.owners.EXPECT().Exists(gomock.Any(), 1).Return(true, nil)
	s.categories.EXPECT().Exists(gomock.Any(), 2).Return(false, nil)

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost,
		"/api/pokemon?ownerId=1&categoryId=2", dto.PokemonDto{Name: "Pikachu"}))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}

func (s *HandlerMockSuite) TestListFailure() {
	s.categories.EXPECT().GetAll(gomock.Any()).Return(nil, errors.New("boom"))

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/category"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusInternalServerError, "internal_error")
}

func (s *HandlerMockSuite) TestRatingWithoutReviews() {
	s.pokemon.EXPECT().Exists(gomock.Any(), 1).Return(true, nil)
	s.pokemon.EXPECT().GetRating(gomock.Any(), 1).Return(0.0, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/pokemon/1/rating"))
	testutil.AssertStatusOK(s.T(), rr)
	assert.Equal(s.T(), "0\n", rr.Body.String())
}
