package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pokereview/internal/dto"
	"pokereview/pkg/platform/httputil"
	"pokereview/pkg/platform/validation"
)

// ReviewerHandler serves /api/reviewer. Deleting a reviewer removes the
// reviews they wrote.
type ReviewerHandler struct {
	base
	reviewers ReviewerRepository
}

func NewReviewerHandler(reviewers ReviewerRepository, logger *slog.Logger, recorder *Recorder) *ReviewerHandler {
	return &ReviewerHandler{
		base:      base{entity: "reviewer", logger: logger, recorder: recorder},
		reviewers: reviewers,
	}
}

// Register registers the reviewer routes with the chi router.
func (h *ReviewerHandler) Register(r chi.Router) {
	r.Route("/api/reviewer", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Get("/{id}/reviews", h.handleListReviews)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *ReviewerHandler) handleList(w http.ResponseWriter, r *http.Request) {
	reviewers, err := h.reviewers.GetAll(r.Context())
	if err != nil {
		h.fail(w, r, "failed to list reviewers", storeError(err, "Something went wrong loading reviewers"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dto.MapSlice(reviewers, dto.FromReviewer))
}

func (h *ReviewerHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "invalid reviewer id", err)
		return
	}
	reviewer, err := h.reviewers.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, "failed to load reviewer", lookupError(err, h.entity, id))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dto.FromReviewer(*reviewer))
}

func (h *ReviewerHandler) handleListReviews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "invalid reviewer id", err)
		return
	}
	if err := requireExists(ctx, h.reviewers.Exists, h.entity, id); err != nil {
		h.fail(w, r, "reviewer lookup failed", err)
		return
	}
	reviews, err := h.reviewers.GetReviewsByReviewer(ctx, id)
	if err != nil {
		h.fail(w, r, "failed to list reviews of reviewer", storeError(err, "Something went wrong loading reviews"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dto.MapSlice(reviews, dto.FromReview))
}

func (h *ReviewerHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := decodeBody[dto.ReviewerDto](r)
	if err != nil {
		h.fail(w, r, "invalid create reviewer request", err)
		return
	}
	var v validation.Result
	v.Required("firstName", body.FirstName)
	v.Required("lastName", body.LastName)
	if err := v.Err(); err != nil {
		h.fail(w, r, "invalid create reviewer request", err)
		return
	}

	reviewer := body.ToModel()
	if err := h.reviewers.Create(ctx, &reviewer); err != nil {
		if dup := duplicateError(err, "Reviewer", reviewer.FullName()); dup != nil {
			h.fail(w, r, "duplicate reviewer", dup)
			return
		}
		h.fail(w, r, "failed to create reviewer", storeError(err, "Something went wrong saving "+reviewer.FullName()))
		return
	}
	h.created(w, r, reviewer.ID)
}

func (h *ReviewerHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "invalid reviewer id", err)
		return
	}
	body, err := decodeBody[dto.ReviewerDto](r)
	if err != nil {
		h.fail(w, r, "invalid update reviewer request", err)
		return
	}
	if err := matchID(id, body.ID); err != nil {
		h.fail(w, r, "invalid update reviewer request", err)
		return
	}
	var v validation.Result
	v.Required("firstName", body.FirstName)
	v.Required("lastName", body.LastName)
	if err := v.Err(); err != nil {
		h.fail(w, r, "invalid update reviewer request", err)
		return
	}
	if err := requireExists(ctx, h.reviewers.Exists, h.entity, id); err != nil {
		h.fail(w, r, "reviewer lookup failed", err)
		return
	}

	reviewer := body.ToModel()
	if err := h.reviewers.Update(ctx, &reviewer); err != nil {
		h.fail(w, r, "failed to update reviewer", storeError(err, "Something went wrong updating "+reviewer.FullName()))
		return
	}
	h.updated(w, r, id)
}

func (h *ReviewerHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "invalid reviewer id", err)
		return
	}
	reviewer, err := h.reviewers.GetByID(ctx, id)
	if err != nil {
		h.fail(w, r, "failed to load reviewer", lookupError(err, h.entity, id))
		return
	}
	if err := h.reviewers.Delete(ctx, id); err != nil {
		h.fail(w, r, "failed to delete reviewer", storeError(err, "Something went wrong deleting "+reviewer.FullName()))
		return
	}
	h.deleted(w, r, id)
}
