package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pokereview/internal/dto"
	dErrors "pokereview/pkg/domain-errors"
	"pokereview/pkg/platform/httputil"
	"pokereview/pkg/platform/validation"
)

// PokemonHandler serves /api/pokemon. Creating a pokemon links it to one
// owner and one category; deleting it removes its reviews in the same
// transaction.
type PokemonHandler struct {
	base
	pokemon    PokemonRepository
	owners     OwnerRepository
	categories CategoryRepository
	reviews    ReviewRepository
	tx         TxRunner
}

// PokemonDeps groups the repositories the pokemon handler reads across.
type PokemonDeps struct {
	Pokemon    PokemonRepository
	Owners     OwnerRepository
	Categories CategoryRepository
	Reviews    ReviewRepository
	Tx         TxRunner
}

func NewPokemonHandler(deps PokemonDeps, logger *slog.Logger, recorder *Recorder) *PokemonHandler {
	return &PokemonHandler{
		base:       base{entity: "pokemon", logger: logger, recorder: recorder},
		pokemon:    deps.Pokemon,
		owners:     deps.Owners,
		categories: deps.Categories,
		reviews:    deps.Reviews,
		tx:         deps.Tx,
	}
}

// Register registers the pokemon routes with the chi router.
func (h *PokemonHandler) Register(r chi.Router) {
	r.Route("/api/pokemon", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Get("/{id}/owners", h.handleListOwners)
		r.Get("/{id}/reviews", h.handleListReviews)
		r.Get("/{id}/rating", h.handleRating)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *PokemonHandler) handleList(w http.ResponseWriter, r *http.Request) {
	pokemon, err := h.pokemon.GetAll(r.Context())
	if err != nil {
		h.fail(w, r, "failed to list pokemon", storeError(err, "Something went wrong loading pokemon"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dto.MapSlice(pokemon, dto.FromPokemon))
}

func (h *PokemonHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "invalid pokemon id", err)
		return
	}
	pokemon, err := h.pokemon.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, "failed to load pokemon", lookupError(err, h.entity, id))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dto.FromPokemon(*pokemon))
}

func (h *PokemonHandler) handleListOwners(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "invalid pokemon id", err)
		return
	}
	if err := requireExists(ctx, h.pokemon.Exists, h.entity, id); err != nil {
		h.fail(w, r, "pokemon lookup failed", err)
		return
	}
	owners, err := h.owners.GetOwnersOfPokemon(ctx, id)
	if err != nil {
		h.fail(w, r, "failed to list owners of pokemon", storeError(err, "Something went wrong loading owners"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dto.MapSlice(owners, dto.FromOwner))
}

func (h *PokemonHandler) handleListReviews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "invalid pokemon id", err)
		return
	}
	if err := requireExists(ctx, h.pokemon.Exists, h.entity, id); err != nil {
		h.fail(w, r, "pokemon lookup failed", err)
		return
	}
	reviews, err := h.reviews.GetReviewsOfPokemon(ctx, id)
	if err != nil {
		h.fail(w, r, "failed to list reviews of pokemon", storeError(err, "Something went wrong loading reviews"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dto.MapSlice(reviews, dto.FromReview))
}

// handleRating writes the mean review rating as a bare JSON number.
func (h *PokemonHandler) handleRating(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "invalid pokemon id", err)
		return
	}
	if err := requireExists(ctx, h.pokemon.Exists, h.entity, id); err != nil {
		h.fail(w, r, "pokemon lookup failed", err)
		return
	}
	rating, err := h.pokemon.GetRating(ctx, id)
	if err != nil {
		h.fail(w, r, "failed to compute rating", storeError(err, "Something went wrong loading the rating"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rating)
}

func (h *PokemonHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID, err := queryID(r, "ownerId", true)
	if err != nil {
		h.fail(w, r, "invalid create pokemon request", err)
		return
	}
	categoryID, err := queryID(r, "categoryId", true)
	if err != nil {
		h.fail(w, r, "invalid create pokemon request", err)
		return
	}
	body, err := decodeBody[dto.PokemonDto](r)
	if err != nil {
		h.fail(w, r, "invalid create pokemon request", err)
		return
	}
	var v validation.Result
	v.Required("name", body.Name)
	if err := v.Err(); err != nil {
		h.fail(w, r, "invalid create pokemon request", err)
		return
	}
	if err := h.requireLinks(ctx, ownerID, categoryID); err != nil {
		h.fail(w, r, "pokemon association lookup failed", err)
		return
	}

	pokemon := body.ToModel()
	if err := h.pokemon.Create(ctx, ownerID, categoryID, &pokemon); err != nil {
		if dup := duplicateError(err, "Pokemon", pokemon.Name); dup != nil {
			h.fail(w, r, "duplicate pokemon", dup)
			return
		}
		h.fail(w, r, "failed to create pokemon", storeError(err, "Something went wrong saving "+pokemon.Name))
		return
	}
	h.created(w, r, pokemon.ID)
}

// handleUpdate replaces name and birth date. ownerId and categoryId are
// optional and add an association when present.
func (h *PokemonHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "invalid pokemon id", err)
		return
	}
	ownerID, err := queryID(r, "ownerId", false)
	if err != nil {
		h.fail(w, r, "invalid update pokemon request", err)
		return
	}
	categoryID, err := queryID(r, "categoryId", false)
	if err != nil {
		h.fail(w, r, "invalid update pokemon request", err)
		return
	}
	body, err := decodeBody[dto.PokemonDto](r)
	if err != nil {
		h.fail(w, r, "invalid update pokemon request", err)
		return
	}
	if err := matchID(id, body.ID); err != nil {
		h.fail(w, r, "invalid update pokemon request", err)
		return
	}
	var v validation.Result
	v.Required("name", body.Name)
	if err := v.Err(); err != nil {
		h.fail(w, r, "invalid update pokemon request", err)
		return
	}
	if err := requireExists(ctx, h.pokemon.Exists, h.entity, id); err != nil {
		h.fail(w, r, "pokemon lookup failed", err)
		return
	}
	if err := h.requireLinks(ctx, ownerID, categoryID); err != nil {
		h.fail(w, r, "pokemon association lookup failed", err)
		return
	}

	pokemon := body.ToModel()
	if err := h.pokemon.Update(ctx, ownerID, categoryID, &pokemon); err != nil {
		h.fail(w, r, "failed to update pokemon", storeError(err, "Something went wrong updating "+pokemon.Name))
		return
	}
	h.updated(w, r, id)
}

// handleDelete removes the pokemon's reviews and then the pokemon in one
// transaction.
func (h *PokemonHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "invalid pokemon id", err)
		return
	}
	pokemon, err := h.pokemon.GetByID(ctx, id)
	if err != nil {
		h.fail(w, r, "failed to load pokemon", lookupError(err, h.entity, id))
		return
	}

	err = h.tx.RunInTx(ctx, func(ctx context.Context) error {
		reviews, err := h.reviews.GetReviewsOfPokemon(ctx, id)
		if err != nil {
			return storeError(err, "Something went wrong loading reviews of "+pokemon.Name)
		}
		if err := h.reviews.DeleteMany(ctx, reviews); err != nil {
			return storeError(err, "Something went wrong deleting reviews of "+pokemon.Name)
		}
		if err := h.pokemon.Delete(ctx, id); err != nil {
			return storeError(err, "Something went wrong deleting "+pokemon.Name)
		}
		return nil
	})
	if err != nil {
		if _, ok := dErrors.As(err); !ok {
			err = storeError(err, "Something went wrong deleting "+pokemon.Name)
		}
		h.fail(w, r, "failed to delete pokemon", err)
		return
	}
	h.deleted(w, r, id)
}

// requireLinks checks the owner and category a pokemon is being linked to.
// Zero identities are skipped.
func (h *PokemonHandler) requireLinks(ctx context.Context, ownerID, categoryID int) error {
	if ownerID > 0 {
		if err := requireExists(ctx, h.owners.Exists, "owner", ownerID); err != nil {
			return err
		}
	}
	if categoryID > 0 {
		if err := requireExists(ctx, h.categories.Exists, "category", categoryID); err != nil {
			return err
		}
	}
	return nil
}
