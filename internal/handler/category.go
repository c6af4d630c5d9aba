package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pokereview/internal/dto"
	"pokereview/pkg/platform/httputil"
	"pokereview/pkg/platform/validation"
)

// CategoryHandler serves /api/category.
type CategoryHandler struct {
	base
	categories CategoryRepository
}

func NewCategoryHandler(categories CategoryRepository, logger *slog.Logger, recorder *Recorder) *CategoryHandler {
	return &CategoryHandler{
		base:       base{entity: "category", logger: logger, recorder: recorder},
		categories: categories,
	}
}

// Register registers the category routes with the chi router.
func (h *CategoryHandler) Register(r chi.Router) {
	r.Route("/api/category", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/pokemons/{id}", h.handleListPokemon)
		r.Get("/{id}", h.handleGet)
		r.Get("/{id}/pokemon", h.handleListPokemon)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *CategoryHandler) handleList(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.GetAll(r.Context())
	if err != nil {
		h.fail(w, r, "failed to list categories", storeError(err, "Something went wrong loading categories"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dto.MapSlice(categories, dto.FromCategory))
}

func (h *CategoryHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "invalid category id", err)
		return
	}
	category, err := h.categories.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, "failed to load category", lookupError(err, h.entity, id))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dto.FromCategory(*category))
}

func (h *CategoryHandler) handleListPokemon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "invalid category id", err)
		return
	}
	if err := requireExists(ctx, h.categories.Exists, h.entity, id); err != nil {
		h.fail(w, r, "category lookup failed", err)
		return
	}
	pokemon, err := h.categories.GetPokemonByCategory(ctx, id)
	if err != nil {
		h.fail(w, r, "failed to list pokemon of category", storeError(err, "Something went wrong loading pokemon"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dto.MapSlice(pokemon, dto.FromPokemon))
}

func (h *CategoryHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := decodeBody[dto.CategoryDto](r)
	if err != nil {
		h.fail(w, r, "invalid create category request", err)
		return
	}
	var v validation.Result
	v.Required("name", body.Name)
	if err := v.Err(); err != nil {
		h.fail(w, r, "invalid create category request", err)
		return
	}

	category := body.ToModel()
	if err := h.categories.Create(ctx, &category); err != nil {
		if dup := duplicateError(err, "Category", category.Name); dup != nil {
			h.fail(w, r, "duplicate category", dup)
			return
		}
		h.fail(w, r, "failed to create category", storeError(err, "Something went wrong saving "+category.Name))
		return
	}
	h.created(w, r, category.ID)
}

func (h *CategoryHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "invalid category id", err)
		return
	}
	body, err := decodeBody[dto.CategoryDto](r)
	if err != nil {
		h.fail(w, r, "invalid update category request", err)
		return
	}
	if err := matchID(id, body.ID); err != nil {
		h.fail(w, r, "invalid update category request", err)
		return
	}
	var v validation.Result
	v.Required("name", body.Name)
	if err := v.Err(); err != nil {
		h.fail(w, r, "invalid update category request", err)
		return
	}
	if err := requireExists(ctx, h.categories.Exists, h.entity, id); err != nil {
		h.fail(w, r, "category lookup failed", err)
		return
	}

	category := body.ToModel()
	if err := h.categories.Update(ctx, &category); err != nil {
		h.fail(w, r, "failed to update category", storeError(err, "Something went wrong updating "+category.Name))
		return
	}
	h.updated(w, r, id)
}

func (h *CategoryHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "invalid category id", err)
		return
	}
	category, err := h.categories.GetByID(ctx, id)
	if err != nil {
		h.fail(w, r, "failed to load category", lookupError(err, h.entity, id))
		return
	}
	if err := h.categories.Delete(ctx, id); err != nil {
		h.fail(w, r, "failed to delete category",
			storeError(err, fmt.Sprintf("Something went wrong deleting %s", category.Name)))
		return
	}
	h.deleted(w, r, id)
}
