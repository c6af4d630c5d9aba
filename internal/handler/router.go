package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	dErrors "pokereview/pkg/domain-errors"
	"pokereview/pkg/platform/httputil"
	"pokereview/pkg/platform/middleware/metadata"
	"pokereview/pkg/platform/middleware/observability"
	"pokereview/pkg/platform/middleware/request"
	"pokereview/pkg/platform/middleware/requesttime"
)

const defaultRequestTimeout = 30 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig wires the repositories and platform pieces behind the API.
// Observer, Gatherer and Tracer are optional.
type RouterConfig struct {
	Categories CategoryRepository
	Countries  CountryRepository
	Owners     OwnerRepository
	Pokemon    PokemonRepository
	Reviews    ReviewRepository
	Reviewers  ReviewerRepository
	Tx         TxRunner
	Pinger     Pinger

	Logger         *slog.Logger
	Recorder       *Recorder
	Observer       observability.Observer
	Gatherer       prometheus.Gatherer
	Tracer         trace.Tracer
	RequestTimeout time.Duration
}

// NewRouter builds the chi router serving every entity API plus /healthz and
// /metrics.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("pokereview")
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(request.Recovery(logger))
	r.Use(request.Logger(logger))
	r.Use(observability.Tracing(tracer))
	if cfg.Observer != nil {
		r.Use(observability.Latency(cfg.Observer))
	}

	r.Get("/healthz", healthz(cfg.Pinger, logger))
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	handlers := []interface{ Register(chi.Router) }{
		NewCategoryHandler(cfg.Categories, logger, cfg.Recorder),
		NewCountryHandler(cfg.Countries, cfg.Owners, logger, cfg.Recorder),
		NewOwnerHandler(cfg.Owners, cfg.Countries, logger, cfg.Recorder),
		NewPokemonHandler(PokemonDeps{
			Pokemon:    cfg.Pokemon,
			Owners:     cfg.Owners,
			Categories: cfg.Categories,
			Reviews:    cfg.Reviews,
			Tx:         cfg.Tx,
		}, logger, cfg.Recorder),
		NewReviewHandler(cfg.Reviews, cfg.Pokemon, cfg.Reviewers, logger, cfg.Recorder),
		NewReviewerHandler(cfg.Reviewers, logger, cfg.Recorder),
	}
	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(timeout))
		r.Use(request.ContentTypeJSON)
		for _, h := range handlers {
			h.Register(r)
		}
	})
	return r
}

func healthz(p Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			if err := p.Ping(r.Context()); err != nil {
				logger.ErrorContext(r.Context(), "health check failed", "error", err.Error())
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "store unreachable"))
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
