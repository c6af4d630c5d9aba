package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pokereview/internal/dto"
	"pokereview/pkg/platform/httputil"
	"pokereview/pkg/platform/validation"
)

// CountryHandler serves /api/country.
type CountryHandler struct {
	base
	countries CountryRepository
	owners    OwnerRepository
}

func NewCountryHandler(countries CountryRepository, owners OwnerRepository, logger *slog.Logger, recorder *Recorder) *CountryHandler {
	return &CountryHandler{
		base:      base{entity: "country", logger: logger, recorder: recorder},
		countries: countries,
		owners:    owners,
	}
}

// Register registers the country routes with the chi router.
func (h *CountryHandler) Register(r chi.Router) {
	r.Route("/api/country", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/owner/{ownerId}", h.handleGetByOwner)
		r.Get("/{id}", h.handleGet)
		r.Get("/{id}/owners", h.handleListOwners)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *CountryHandler) handleList(w http.ResponseWriter, r *http.Request) {
	countries, err := h.countries.GetAll(r.Context())
	if err != nil {
		h.fail(w, r, "failed to list countries", storeError(err, "Something went wrong loading countries"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dto.MapSlice(countries, dto.FromCountry))
}

func (h *CountryHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "invalid country id", err)
		return
	}
	country, err := h.countries.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, "failed to load country", lookupError(err, h.entity, id))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dto.FromCountry(*country))
}

func (h *CountryHandler) handleListOwners(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "invalid country id", err)
		return
	}
	if err := requireExists(ctx, h.countries.Exists, h.entity, id); err != nil {
		h.fail(w, r, "country lookup failed", err)
		return
	}
	owners, err := h.countries.GetOwnersByCountry(ctx, id)
	if err != nil {
		h.fail(w, r, "failed to list owners of country", storeError(err, "Something went wrong loading owners"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dto.MapSlice(owners, dto.FromOwner))
}

func (h *CountryHandler) handleGetByOwner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID, err := pathID(r, "ownerId")
	if err != nil {
		h.fail(w, r, "invalid owner id", err)
		return
	}
	if err := requireExists(ctx, h.owners.Exists, "owner", ownerID); err != nil {
		h.fail(w, r, "owner lookup failed", err)
		return
	}
	country, err := h.countries.GetCountryByOwner(ctx, ownerID)
	if err != nil {
		h.fail(w, r, "failed to load country of owner", lookupError(err, "country of owner", ownerID))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dto.FromCountry(*country))
}

func (h *CountryHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := decodeBody[dto.CountryDto](r)
	if err != nil {
		h.fail(w, r, "invalid create country request", err)
		return
	}
	var v validation.Result
	v.Required("name", body.Name)
	if err := v.Err(); err != nil {
		h.fail(w, r, "invalid create country request", err)
		return
	}

	country := body.ToModel()
	if err := h.countries.Create(ctx, &country); err != nil {
		if dup := duplicateError(err, "Country", country.Name); dup != nil {
			h.fail(w, r, "duplicate country", dup)
			return
		}
		h.fail(w, r, "failed to create country", storeError(err, "Something went wrong saving "+country.Name))
		return
	}
	h.created(w, r, country.ID)
}

func (h *CountryHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "invalid country id", err)
		return
	}
	body, err := decodeBody[dto.CountryDto](r)
	if err != nil {
		h.fail(w, r, "invalid update country request", err)
		return
	}
	if err := matchID(id, body.ID); err != nil {
		h.fail(w, r, "invalid update country request", err)
		return
	}
	var v validation.Result
	v.Required("name", body.Name)
	if err := v.Err(); err != nil {
		h.fail(w, r, "invalid update country request", err)
		return
	}
	if err := requireExists(ctx, h.countries.Exists, h.entity, id); err != nil {
		h.fail(w, r, "country lookup failed", err)
		return
	}

	country := body.ToModel()
	if err := h.countries.Update(ctx, &country); err != nil {
		h.fail(w, r, "failed to update country", storeError(err, "Something went wrong updating "+country.Name))
		return
	}
	h.updated(w, r, id)
}

// handleDelete refuses with 422 while owners still reference the country.
func (h *CountryHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "invalid country id", err)
		return
	}
	country, err := h.countries.GetByID(ctx, id)
	if err != nil {
		h.fail(w, r, "failed to load country", lookupError(err, h.entity, id))
		return
	}
	if err := h.countries.Delete(ctx, id); err != nil {
		h.fail(w, r, "failed to delete country", storeError(err, "Something went wrong deleting "+country.Name))
		return
	}
	h.deleted(w, r, id)
}
