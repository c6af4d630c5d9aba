package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pokereview/internal/dto"
	"pokereview/pkg/platform/httputil"
	"pokereview/pkg/platform/validation"
)

// OwnerHandler serves /api/owner. Every owner is created inside an existing
// country named by the countryId query parameter.
type OwnerHandler struct {
	base
	owners    OwnerRepository
	countries CountryRepository
}

func NewOwnerHandler(owners OwnerRepository, countries CountryRepository, logger *slog.Logger, recorder *Recorder) *OwnerHandler {
	return &OwnerHandler{
		base:      base{entity: "owner", logger: logger, recorder: recorder},
		owners:    owners,
		countries: countries,
	}
}

// Register registers the owner routes with the chi router.
func (h *OwnerHandler) Register(r chi.Router) {
	r.Route("/api/owner", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Get("/{id}/pokemon", h.handleListPokemon)
		r.Get("/{id}/country", h.handleGetCountry)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *OwnerHandler) handleList(w http.ResponseWriter, r *http.Request) {
	owners, err := h.owners.GetAll(r.Context())
	if err != nil {
		h.fail(w, r, "failed to list owners", storeError(err, "Something went wrong loading owners"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dto.MapSlice(owners, dto.FromOwner))
}

func (h *OwnerHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "invalid owner id", err)
		return
	}
	owner, err := h.owners.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, "failed to load owner", lookupError(err, h.entity, id))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dto.FromOwner(*owner))
}

func (h *OwnerHandler) handleListPokemon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "invalid owner id", err)
		return
	}
	if err := requireExists(ctx, h.owners.Exists, h.entity, id); err != nil {
		h.fail(w, r, "owner lookup failed", err)
		return
	}
	pokemon, err := h.owners.GetPokemonByOwner(ctx, id)
	if err != nil {
		h.fail(w, r, "failed to list pokemon of owner", storeError(err, "Something went wrong loading pokemon"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dto.MapSlice(pokemon, dto.FromPokemon))
}

func (h *OwnerHandler) handleGetCountry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "invalid owner id", err)
		return
	}
	if err := requireExists(ctx, h.owners.Exists, h.entity, id); err != nil {
		h.fail(w, r, "owner lookup failed", err)
		return
	}
	country, err := h.countries.GetCountryByOwner(ctx, id)
	if err != nil {
		h.fail(w, r, "failed to load country of owner", lookupError(err, "country of owner", id))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dto.FromCountry(*country))
}

func (h *OwnerHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	countryID, err := queryID(r, "countryId", true)
	if err != nil {
		h.fail(w, r, "invalid create owner request", err)
		return
	}
	body, err := decodeBody[dto.OwnerDto](r)
	if err != nil {
		h.fail(w, r, "invalid create owner request", err)
		return
	}
	var v validation.Result
	v.Required("name", body.Name)
	if err := v.Err(); err != nil {
		h.fail(w, r, "invalid create owner request", err)
		return
	}
	if err := requireExists(ctx, h.countries.Exists, "country", countryID); err != nil {
		h.fail(w, r, "country lookup failed", err)
		return
	}

	owner := body.ToModel()
	owner.CountryID = countryID
	if err := h.owners.Create(ctx, &owner); err != nil {
		if dup := duplicateError(err, "Owner", owner.Name); dup != nil {
			h.fail(w, r, "duplicate owner", dup)
			return
		}
		h.fail(w, r, "failed to create owner", storeError(err, "Something went wrong saving "+owner.Name))
		return
	}
	h.created(w, r, owner.ID)
}

// handleUpdate replaces name and gasoline; the owner keeps its country.
func (h *OwnerHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "invalid owner id", err)
		return
	}
	body, err := decodeBody[dto.OwnerDto](r)
	if err != nil {
		h.fail(w, r, "invalid update owner request", err)
		return
	}
	if err := matchID(id, body.ID); err != nil {
		h.fail(w, r, "invalid update owner request", err)
		return
	}
	var v validation.Result
	v.Required("name", body.Name)
	if err := v.Err(); err != nil {
		h.fail(w, r, "invalid update owner request", err)
		return
	}
	if err := requireExists(ctx, h.owners.Exists, h.entity, id); err != nil {
		h.fail(w, r, "owner lookup failed", err)
		return
	}

	owner := body.ToModel()
	if err := h.owners.Update(ctx, &owner); err != nil {
		h.fail(w, r, "failed to update owner", storeError(err, "Something went wrong updating "+owner.Name))
		return
	}
	h.updated(w, r, id)
}

func (h *OwnerHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "invalid owner id", err)
		return
	}
	owner, err := h.owners.GetByID(ctx, id)
	if err != nil {
		h.fail(w, r, "failed to load owner", lookupError(err, h.entity, id))
		return
	}
	if err := h.owners.Delete(ctx, id); err != nil {
		h.fail(w, r, "failed to delete owner", storeError(err, "Something went wrong deleting "+owner.Name))
		return
	}
	h.deleted(w, r, id)
}
