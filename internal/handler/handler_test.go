package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"pokereview/internal/audit"
	"pokereview/internal/dto"
	"pokereview/internal/platform/metrics"
	"pokereview/internal/store/memory"
	"pokereview/pkg/testutil"
)

type emitted struct {
	entity string
	id     int
	action audit.Action
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []emitted
}

func (e *recordingEmitter) Emit(_ context.Context, entity string, id int, action audit.Action) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, emitted{entity: entity, id: id, action: action})
}

func (e *recordingEmitter) all() []emitted {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]emitted(nil), e.events...)
}

type RouterSuite struct {
	suite.Suite
	store   *memory.Store
	emitter *recordingEmitter
	router  http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.store = memory.New()
	s.emitter = &recordingEmitter{}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	s.router = NewRouter(RouterConfig{
		Categories: s.store.Categories(),
		Countries:  s.store.Countries(),
		Owners:     s.store.Owners(),
		Pokemon:    s.store.Pokemon(),
		Reviews:    s.store.Reviews(),
		Reviewers:  s.store.Reviewers(),
		Tx:         s.store,
		Pinger:     s.store,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Recorder:   NewRecorder(s.emitter, m),
		Observer:   m,
		Gatherer:   reg,
	})
}

func (s *RouterSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	return testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), method, path, body))
}

func (s *RouterSuite) raw(method, path, body string) *httptest.ResponseRecorder {
	return testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), method, path, body))
}

func (s *RouterSuite) mustCreate(path string, body any) {
	s.T().Helper()
	rr := s.do(http.MethodPost, path, body)
	testutil.AssertSuccess(s.T(), rr)
}

// seedPokemonWorld creates country 1, owner 1, categories 1 and 2, and
// reviewer 1.
func (s *RouterSuite) seedPokemonWorld() {
	s.mustCreate("/api/country", dto.CountryDto{Name: "Kanto"})
	s.mustCreate("/api/owner?countryId=1", dto.OwnerDto{Name: "Ash", Gasoline: "none"})
	s.mustCreate("/api/category", dto.CategoryDto{Name: "Fire"})
	s.mustCreate("/api/category", dto.CategoryDto{Name: "Electric"})
	s.mustCreate("/api/reviewer", dto.ReviewerDto{FirstName: "Gary", LastName: "Oak"})
}

func (s *RouterSuite) TestCreatePokemonLinksOwnerAndCategory() {
	s.seedPokemonWorld()

	rr := s.raw(http.MethodPost, "/api/pokemon?ownerId=1&categoryId=2",
		`{"name":"Pikachu","birthDate":"1996-01-01"}`)
	testutil.AssertSuccess(s.T(), rr)

	rr = s.do(http.MethodGet, "/api/pokemon", nil)
	testutil.AssertStatusOK(s.T(), rr)
	list := *testutil.UnmarshalResponse[[]dto.PokemonDto](s.T(), rr)
	require.Len(s.T(), list, 1)
	assert.Equal(s.T(), "Pikachu", list[0].Name)
	assert.Equal(s.T(), "1996-01-01", list[0].BirthDate.Format("2006-01-02"))

	rr = s.do(http.MethodGet, "/api/category/2/pokemon", nil)
	byCategory := *testutil.UnmarshalResponse[[]dto.PokemonDto](s.T(), rr)
	require.Len(s.T(), byCategory, 1)
	assert.Equal(s.T(), list[0].ID, byCategory[0].ID)

	rr = s.do(http.MethodGet, "/api/category/pokemons/2", nil)
	assert.Len(s.T(), *testutil.UnmarshalResponse[[]dto.PokemonDto](s.T(), rr), 1)

	rr = s.do(http.MethodGet, "/api/owner/1/pokemon", nil)
	assert.Len(s.T(), *testutil.UnmarshalResponse[[]dto.PokemonDto](s.T(), rr), 1)

	rr = s.do(http.MethodGet, "/api/pokemon/1/owners", nil)
	owners := *testutil.UnmarshalResponse[[]dto.OwnerDto](s.T(), rr)
	require.Len(s.T(), owners, 1)
	assert.Equal(s.T(), "Ash", owners[0].Name)
}

func (s *RouterSuite) TestCreateRequiresQueryParameters() {
	s.seedPokemonWorld()

	rr := s.do(http.MethodPost, "/api/pokemon?ownerId=1", dto.PokemonDto{Name: "Pikachu"})
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")

	rr = s.do(http.MethodPost, "/api/pokemon?ownerId=abc&categoryId=1", dto.PokemonDto{Name: "Pikachu"})
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")

	rr = s.do(http.MethodPost, "/api/owner", dto.OwnerDto{Name: "Brock"})
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")

	rr = s.do(http.MethodPost, "/api/review?reviewerId=1", dto.ReviewDto{Title: "Great"})
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
}

func (s *RouterSuite) TestCreateWithUnknownReferenceIsNotFound() {
	s.seedPokemonWorld()

	rr := s.do(http.MethodPost, "/api/pokemon?ownerId=9&categoryId=1", dto.PokemonDto{Name: "Pikachu"})
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")

	rr = s.do(http.MethodPost, "/api/owner?countryId=9", dto.OwnerDto{Name: "Brock"})
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")

	rr = s.do(http.MethodPost, "/api/review?reviewerId=1&pokeId=9", dto.ReviewDto{Title: "Great"})
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")

	rr = s.do(http.MethodGet, "/api/pokemon", nil)
	assert.Empty(s.T(), *testutil.UnmarshalResponse[[]dto.PokemonDto](s.T(), rr))
}

func (s *RouterSuite) TestDuplicateNameIsUnprocessable() {
	s.mustCreate("/api/category", dto.CategoryDto{Name: "Fire"})

	rr := s.do(http.MethodPost, "/api/category", dto.CategoryDto{Name: "  fIRE "})
	testutil.AssertStatus(s.T(), rr, http.StatusUnprocessableEntity)
	body := testutil.UnmarshalErrorResponse(s.T(), rr)
	assert.Equal(s.T(), "conflict", body.Error)
	assert.Equal(s.T(), "Category fIRE already exists", body.Description)

	s.mustCreate("/api/reviewer", dto.ReviewerDto{FirstName: "Ash", LastName: "Ketchum"})
	s.mustCreate("/api/reviewer", dto.ReviewerDto{FirstName: "Delia", LastName: "Ketchum"})
	rr = s.do(http.MethodPost, "/api/reviewer", dto.ReviewerDto{FirstName: "ash", LastName: "KETCHUM"})
	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "conflict")

	rr = s.do(http.MethodPost, "/api/category", dto.CategoryDto{Name: "fire\t"})
	testutil.AssertStatus(s.T(), rr, http.StatusUnprocessableEntity)
	assert.Equal(s.T(), "Category fire already exists", testutil.UnmarshalErrorResponse(s.T(), rr).Description)

	rr = s.do(http.MethodPost, "/api/reviewer", dto.ReviewerDto{FirstName: " ash ", LastName: "KETCHUM"})
	testutil.AssertStatus(s.T(), rr, http.StatusUnprocessableEntity)
	assert.Equal(s.T(), "Reviewer ash KETCHUM already exists", testutil.UnmarshalErrorResponse(s.T(), rr).Description)
}

func (s *RouterSuite) TestUpdateDoesNotCheckNames() {
	s.mustCreate("/api/category", dto.CategoryDto{Name: "Fire"})
	s.mustCreate("/api/category", dto.CategoryDto{Name: "Water"})

	rr := s.do(http.MethodPut, "/api/category/2", dto.CategoryDto{ID: 2, Name: "Fire"})
	testutil.AssertNoContent(s.T(), rr)

	rr = s.do(http.MethodGet, "/api/category/2", nil)
	testutil.AssertJSONContains(s.T(), rr, "name", "Fire")
}

func (s *RouterSuite) TestUpdateRejectsMismatchedID() {
	s.mustCreate("/api/category", dto.CategoryDto{Name: "Fire"})

	rr := s.do(http.MethodPut, "/api/category/1", dto.CategoryDto{ID: 2, Name: "Grass"})
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")

	rr = s.do(http.MethodGet, "/api/category/1", nil)
	testutil.AssertJSONContains(s.T(), rr, "name", "Fire")
}

func (s *RouterSuite) TestUpdateMissingEntityIsNotFound() {
	rr := s.do(http.MethodPut, "/api/country/7", dto.CountryDto{ID: 7, Name: "Johto"})
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}

func (s *RouterSuite) TestMalformedRequests() {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		code   string
	}{
		{"non-integer id", http.MethodGet, "/api/category/abc", "", "bad_request"},
		{"zero id", http.MethodGet, "/api/owner/0", "", "bad_request"},
		{"zero query id", http.MethodPost, "/api/owner?countryId=0", `{"name":"Brock"}`, "bad_request"},
		{"absent body", http.MethodPost, "/api/category", "", "bad_request"},
		{"null body", http.MethodPost, "/api/country", "null", "bad_request"},
		{"malformed body", http.MethodPost, "/api/reviewer", "{", "bad_request"},
		{"trailing values", http.MethodPost, "/api/category", `{"name":"Water"} {"name":"Ice"} garbage`, "bad_request"},
		{"trailing brace", http.MethodPost, "/api/country", `{"name":"Sinnoh"}}`, "bad_request"},
		{"blank name", http.MethodPost, "/api/category", `{"name":"   "}`, "validation_error"},
		{"bad birth date", http.MethodPost, "/api/pokemon?ownerId=1&categoryId=1", `{"name":"Mew","birthDate":"yesterday"}`, "bad_request"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			rr := s.raw(tt.method, tt.path, tt.body)
			testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, tt.code)
		})
	}

	rr := s.do(http.MethodGet, "/api/category", nil)
	testutil.AssertStatusOK(s.T(), rr)
	assert.Empty(s.T(), *testutil.UnmarshalResponse[[]dto.CategoryDto](s.T(), rr), "rejected bodies must not be stored")
}

func (s *RouterSuite) TestValidationReportsFields() {
	rr := s.do(http.MethodPost, "/api/reviewer", dto.ReviewerDto{FirstName: "Gary"})
	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	body := testutil.UnmarshalErrorResponse(s.T(), rr)
	assert.Equal(s.T(), "validation_error", body.Error)
	assert.Contains(s.T(), body.Errors, "lastName")
	assert.NotContains(s.T(), body.Errors, "firstName")
}

func (s *RouterSuite) TestDeletePokemonRemovesItsReviews() {
	s.seedPokemonWorld()
	s.mustCreate("/api/pokemon?ownerId=1&categoryId=2", dto.PokemonDto{Name: "Pikachu"})
	s.mustCreate("/api/review?reviewerId=1&pokeId=1", dto.ReviewDto{Title: "Shocking", Rating: 5})
	s.mustCreate("/api/review?reviewerId=1&pokeId=1", dto.ReviewDto{Title: "Cute", Rating: 2})

	rr := s.do(http.MethodGet, "/api/pokemon/1/rating", nil)
	testutil.AssertStatusOK(s.T(), rr)
	assert.InDelta(s.T(), 3.5, *testutil.UnmarshalResponse[float64](s.T(), rr), 0.0001)

	rr = s.do(http.MethodDelete, "/api/pokemon/1", nil)
	testutil.AssertNoContent(s.T(), rr)

	rr = s.do(http.MethodGet, "/api/pokemon/1", nil)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	rr = s.do(http.MethodGet, "/api/review", nil)
	assert.Empty(s.T(), *testutil.UnmarshalResponse[[]dto.ReviewDto](s.T(), rr))
	rr = s.do(http.MethodGet, "/api/owner/1/pokemon", nil)
	assert.Empty(s.T(), *testutil.UnmarshalResponse[[]dto.PokemonDto](s.T(), rr))
}

func (s *RouterSuite) TestDeleteCountryWithOwnersIsUnprocessable() {
	s.seedPokemonWorld()

	rr := s.do(http.MethodDelete, "/api/country/1", nil)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "conflict")

	rr = s.do(http.MethodDelete, "/api/owner/1", nil)
	testutil.AssertNoContent(s.T(), rr)
	rr = s.do(http.MethodDelete, "/api/country/1", nil)
	testutil.AssertNoContent(s.T(), rr)
}

func (s *RouterSuite) TestDeleteReviewerRemovesTheirReviews() {
	s.seedPokemonWorld()
	s.mustCreate("/api/pokemon?ownerId=1&categoryId=1", dto.PokemonDto{Name: "Charmander"})
	s.mustCreate("/api/review?reviewerId=1&pokeId=1", dto.ReviewDto{Title: "Hot", Rating: 4})

	rr := s.do(http.MethodGet, "/api/reviewer/1/reviews", nil)
	assert.Len(s.T(), *testutil.UnmarshalResponse[[]dto.ReviewDto](s.T(), rr), 1)

	rr = s.do(http.MethodDelete, "/api/reviewer/1", nil)
	testutil.AssertNoContent(s.T(), rr)

	rr = s.do(http.MethodGet, "/api/review/pokemon/1", nil)
	assert.Empty(s.T(), *testutil.UnmarshalResponse[[]dto.ReviewDto](s.T(), rr))
}

func (s *RouterSuite) TestOwnerCountryLookups() {
	s.seedPokemonWorld()

	rr := s.do(http.MethodGet, "/api/owner/1/country", nil)
	testutil.AssertJSONContains(s.T(), rr, "name", "Kanto")

	rr = s.do(http.MethodGet, "/api/country/owner/1", nil)
	testutil.AssertJSONContains(s.T(), rr, "name", "Kanto")

	rr = s.do(http.MethodGet, "/api/country/1/owners", nil)
	owners := *testutil.UnmarshalResponse[[]dto.OwnerDto](s.T(), rr)
	require.Len(s.T(), owners, 1)
	assert.Equal(s.T(), "none", owners[0].Gasoline)

	rr = s.do(http.MethodGet, "/api/owner/5/country", nil)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}

func (s *RouterSuite) TestUpdateKeepsAssociations() {
	s.seedPokemonWorld()
	s.mustCreate("/api/pokemon?ownerId=1&categoryId=1", dto.PokemonDto{Name: "Eevee"})
	s.mustCreate("/api/review?reviewerId=1&pokeId=1", dto.ReviewDto{Title: "Fluffy", Rating: 3})

	rr := s.do(http.MethodPut, "/api/review/1", dto.ReviewDto{ID: 1, Title: "Very fluffy", Rating: 5})
	testutil.AssertNoContent(s.T(), rr)
	rr = s.do(http.MethodGet, "/api/pokemon/1/reviews", nil)
	reviews := *testutil.UnmarshalResponse[[]dto.ReviewDto](s.T(), rr)
	require.Len(s.T(), reviews, 1)
	assert.Equal(s.T(), "Very fluffy", reviews[0].Title)

	rr = s.do(http.MethodPut, "/api/owner/1", dto.OwnerDto{ID: 1, Name: "Ash Ketchum"})
	testutil.AssertNoContent(s.T(), rr)
	rr = s.do(http.MethodGet, "/api/country/1/owners", nil)
	assert.Len(s.T(), *testutil.UnmarshalResponse[[]dto.OwnerDto](s.T(), rr), 1)

	rr = s.do(http.MethodPut, "/api/pokemon/1?categoryId=2", dto.PokemonDto{ID: 1, Name: "Eevee"})
	testutil.AssertNoContent(s.T(), rr)
	rr = s.do(http.MethodGet, "/api/category/2/pokemon", nil)
	assert.Len(s.T(), *testutil.UnmarshalResponse[[]dto.PokemonDto](s.T(), rr), 1)
}

func (s *RouterSuite) TestSuccessfulWritesAreRecorded() {
	s.mustCreate("/api/category", dto.CategoryDto{Name: "Fire"})
	testutil.AssertNoContent(s.T(), s.do(http.MethodPut, "/api/category/1", dto.CategoryDto{ID: 1, Name: "Flame"}))
	testutil.AssertNoContent(s.T(), s.do(http.MethodDelete, "/api/category/1", nil))
	testutil.AssertStatus(s.T(), s.do(http.MethodDelete, "/api/category/1", nil), http.StatusNotFound)

	assert.Equal(s.T(), []emitted{
		{entity: "category", id: 1, action: audit.ActionCreated},
		{entity: "category", id: 1, action: audit.ActionUpdated},
		{entity: "category", id: 1, action: audit.ActionDeleted},
	}, s.emitter.all())
}

func (s *RouterSuite) TestAmbientEndpoints() {
	rr := s.do(http.MethodGet, "/healthz", nil)
	testutil.AssertJSONContains(s.T(), rr, "status", "ok")

	s.mustCreate("/api/country", dto.CountryDto{Name: "Kanto"})
	rr = s.do(http.MethodGet, "/metrics", nil)
	testutil.AssertStatusOK(s.T(), rr)
	assert.Contains(s.T(), rr.Body.String(), `pokereview_entity_mutations_total{entity="country",operation="created"} 1`)
	assert.Contains(s.T(), rr.Body.String(), "http_request_duration_seconds_count")

	rr = s.do(http.MethodGet, "/api/country", nil)
	assert.NotEmpty(s.T(), rr.Header().Get("X-Request-ID"))
}
