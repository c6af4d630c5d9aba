package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"pokereview/internal/audit"
	dErrors "pokereview/pkg/domain-errors"
	"pokereview/pkg/platform/httputil"
	"pokereview/pkg/platform/sentinel"
	"pokereview/pkg/requestcontext"
)

const maxBodyBytes = 1 << 20

// successBody is the literal create response.
const successBody = "Success"

// Recorder reports successful writes to the audit trail and the mutation
// counter. Either may be nil.
type Recorder struct {
	audit   AuditEmitter
	metrics MutationCounter
}

func NewRecorder(emitter AuditEmitter, counter MutationCounter) *Recorder {
	return &Recorder{audit: emitter, metrics: counter}
}

func (r *Recorder) record(ctx context.Context, entity string, id int, action audit.Action) {
	if r == nil {
		return
	}
	if r.metrics != nil {
		r.metrics.IncrementMutation(entity, string(action))
	}
	if r.audit != nil {
		r.audit.Emit(ctx, entity, id, action)
	}
}

// base carries what every entity handler needs to log and report.
type base struct {
	entity   string
	logger   *slog.Logger
	recorder *Recorder
}

// fail logs err at a level matching its status and writes the error
// envelope.
func (b *base) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"entity", b.entity,
		"error", err.Error(),
	}
	if de, ok := dErrors.As(err); ok && dErrors.ToHTTPStatus(de.Code) < http.StatusInternalServerError {
		b.logger.WarnContext(ctx, msg, attrs...)
	} else {
		b.logger.ErrorContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}

func (b *base) created(w http.ResponseWriter, r *http.Request, id int) {
	b.recorder.record(r.Context(), b.entity, id, audit.ActionCreated)
	httputil.WriteJSON(w, http.StatusOK, successBody)
}

func (b *base) updated(w http.ResponseWriter, r *http.Request, id int) {
	b.recorder.record(r.Context(), b.entity, id, audit.ActionUpdated)
	httputil.WriteNoContent(w)
}

func (b *base) deleted(w http.ResponseWriter, r *http.Request, id int) {
	b.recorder.record(r.Context(), b.entity, id, audit.ActionDeleted)
	httputil.WriteNoContent(w)
}

// pathID parses a positive integer path parameter.
func pathID(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("invalid %s %q", name, raw))
	}
	return id, nil
}

// queryID parses a positive integer query parameter. When required is false
// an absent parameter yields 0.
func queryID(r *http.Request, name string, required bool) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		if !required {
			return 0, nil
		}
		return 0, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("query parameter %s is required", name))
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("invalid query parameter %s %q", name, raw))
	}
	return id, nil
}

// decodeBody reads a single JSON value into T. An empty body, a JSON null,
// malformed JSON and trailing data after the value are rejected.
func decodeBody[T any](r *http.Request) (*T, error) {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	var body *T
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, dErrors.New(dErrors.CodeBadRequest, "request body is required")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid JSON request body")
	}
	if body == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid JSON request body")
	}
	return body, nil
}

// matchID rejects an update whose body id differs from the path id.
func matchID(pathID, bodyID int) error {
	if pathID != bodyID {
		return dErrors.New(dErrors.CodeBadRequest,
			fmt.Sprintf("path id %d does not match body id %d", pathID, bodyID))
	}
	return nil
}

// requireExists turns a false existence check into NotFound.
func requireExists(ctx context.Context, exists func(context.Context, int) (bool, error), entity string, id int) error {
	ok, err := exists(ctx, id)
	if err != nil {
		return storeError(err, fmt.Sprintf("Something went wrong loading %s %d", entity, id))
	}
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("%s %d not found", entity, id))
	}
	return nil
}

// storeError translates a repository error into a domain error. failure is
// the message used when the store failed for an unclassified reason.
func storeError(err error, failure string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "resource not found")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.Wrap(err, dErrors.CodeConflict, "resource already exists")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "the change conflicts with related records")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "storage is temporarily unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, failure)
	}
}

// duplicateError is the create-time collision message for label.
func duplicateError(err error, entity, label string) error {
	if errors.Is(err, sentinel.ErrAlreadyUsed) {
		return dErrors.Wrap(err, dErrors.CodeConflict, fmt.Sprintf("%s %s already exists", entity, strings.TrimSpace(label)))
	}
	return nil
}

// lookupError reports a missing entity by identity and otherwise defers to
// storeError.
func lookupError(err error, entity string, id int) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, fmt.Sprintf("%s %d not found", entity, id))
	}
	return storeError(err, fmt.Sprintf("Something went wrong loading %s %d", entity, id))
}
