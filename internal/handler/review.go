package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pokereview/internal/dto"
	"pokereview/pkg/platform/httputil"
	"pokereview/pkg/platform/validation"
)

// ReviewHandler serves /api/review.
type ReviewHandler struct {
	base
	reviews   ReviewRepository
	pokemon   PokemonRepository
	reviewers ReviewerRepository
}

func NewReviewHandler(reviews ReviewRepository, pokemon PokemonRepository, reviewers ReviewerRepository, logger *slog.Logger, recorder *Recorder) *ReviewHandler {
	return &ReviewHandler{
		base:      base{entity: "review", logger: logger, recorder: recorder},
		reviews:   reviews,
		pokemon:   pokemon,
		reviewers: reviewers,
	}
}

// Register registers the review routes with the chi router.
func (h *ReviewHandler) Register(r chi.Router) {
	r.Route("/api/review", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/pokemon/{pokeId}", h.handleListByPokemon)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *ReviewHandler) handleList(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.GetAll(r.Context())
	if err != nil {
		h.fail(w, r, "failed to list reviews", storeError(err, "Something went wrong loading reviews"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dto.MapSlice(reviews, dto.FromReview))
}

func (h *ReviewHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "invalid review id", err)
		return
	}
	review, err := h.reviews.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, "failed to load review", lookupError(err, h.entity, id))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dto.FromReview(*review))
}

func (h *ReviewHandler) handleListByPokemon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pokemonID, err := pathID(r, "pokeId")
	if err != nil {
		h.fail(w, r, "invalid pokemon id", err)
		return
	}
	if err := requireExists(ctx, h.pokemon.Exists, "pokemon", pokemonID); err != nil {
		h.fail(w, r, "pokemon lookup failed", err)
		return
	}
	reviews, err := h.reviews.GetReviewsOfPokemon(ctx, pokemonID)
	if err != nil {
		h.fail(w, r, "failed to list reviews of pokemon", storeError(err, "Something went wrong loading reviews"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dto.MapSlice(reviews, dto.FromReview))
}

func (h *ReviewHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reviewerID, err := queryID(r, "reviewerId", true)
	if err != nil {
		h.fail(w, r, "invalid create review request", err)
		return
	}
	pokemonID, err := queryID(r, "pokeId", true)
	if err != nil {
		h.fail(w, r, "invalid create review request", err)
		return
	}
	body, err := decodeBody[dto.ReviewDto](r)
	if err != nil {
		h.fail(w, r, "invalid create review request", err)
		return
	}
	var v validation.Result
	v.Required("title", body.Title)
	if err := v.Err(); err != nil {
		h.fail(w, r, "invalid create review request", err)
		return
	}
	if err := requireExists(ctx, h.reviewers.Exists, "reviewer", reviewerID); err != nil {
		h.fail(w, r, "reviewer lookup failed", err)
		return
	}
	if err := requireExists(ctx, h.pokemon.Exists, "pokemon", pokemonID); err != nil {
		h.fail(w, r, "pokemon lookup failed", err)
		return
	}

	review := body.ToModel()
	review.PokemonID = pokemonID
	review.ReviewerID = reviewerID
	if err := h.reviews.Create(ctx, &review); err != nil {
		if dup := duplicateError(err, "Review", review.Title); dup != nil {
			h.fail(w, r, "duplicate review", dup)
			return
		}
		h.fail(w, r, "failed to create review", storeError(err, "Something went wrong saving "+review.Title))
		return
	}
	h.created(w, r, review.ID)
}

// handleUpdate replaces title, text and rating. The pokemon and reviewer of
// a review never change.
func (h *ReviewHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "invalid review id", err)
		return
	}
	body, err := decodeBody[dto.ReviewDto](r)
	if err != nil {
		h.fail(w, r, "invalid update review request", err)
		return
	}
	if err := matchID(id, body.ID); err != nil {
		h.fail(w, r, "invalid update review request", err)
		return
	}
	var v validation.Result
	v.Required("title", body.Title)
	if err := v.Err(); err != nil {
		h.fail(w, r, "invalid update review request", err)
		return
	}
	if err := requireExists(ctx, h.reviews.Exists, h.entity, id); err != nil {
		h.fail(w, r, "review lookup failed", err)
		return
	}

	review := body.ToModel()
	if err := h.reviews.Update(ctx, &review); err != nil {
		h.fail(w, r, "failed to update review", storeError(err, "Something went wrong updating "+review.Title))
		return
	}
	h.updated(w, r, id)
}

func (h *ReviewHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "invalid review id", err)
		return
	}
	review, err := h.reviews.GetByID(ctx, id)
	if err != nil {
		h.fail(w, r, "failed to load review", lookupError(err, h.entity, id))
		return
	}
	if err := h.reviews.Delete(ctx, id); err != nil {
		h.fail(w, r, "failed to delete review", storeError(err, "Something went wrong deleting "+review.Title))
		return
	}
	h.deleted(w, r, id)
}
