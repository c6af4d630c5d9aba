package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"pokereview/internal/audit"
	"pokereview/internal/handler"
	"pokereview/internal/platform/config"
	"pokereview/internal/platform/httpserver"
	"pokereview/internal/platform/metrics"
)

const topicTimeout = 10 * time.Second

// serve runs the HTTP server and the audit emitter until SIGINT or SIGTERM,
// then shuts the server down and drains pending audit events.
func (c *cli) serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	routerCfg, db, err := openStore(ctx, c.cfg.Database, c.logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() {
			if err := db.Close(); err != nil {
				c.logger.Error("close database", "error", err)
			}
		}()
	}

	emitter, closeAudit, err := newEmitter(ctx, c.cfg.Audit, db, c.logger, m)
	if err != nil {
		return err
	}
	defer closeAudit()

	routerCfg.Logger = c.logger
	routerCfg.Recorder = handler.NewRecorder(emitter, m)
	routerCfg.Observer = m
	routerCfg.Gatherer = reg
	routerCfg.Tracer = otel.Tracer("pokereview")
	routerCfg.RequestTimeout = c.cfg.Server.RequestTimeout
	srv := httpserver.New(c.cfg.Server.Addr, handler.NewRouter(routerCfg))

	auditCtx, stopAudit := context.WithCancel(context.Background())
	defer stopAudit()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.logger.Info("starting server", "addr", c.cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return emitter.Run(auditCtx)
	})
	g.Go(func() error {
		<-gctx.Done()
		c.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), c.cfg.Server.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		// In-flight requests have finished emitting; let the emitter drain.
		stopAudit()
		if err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// newEmitter picks the audit sink. Kafka wins when brokers are configured,
// then the audit_events table when a database is open, then the log. The log
// is also the fallback while the primary sink is failing.
func newEmitter(ctx context.Context, cfg config.Audit, db *sql.DB, logger *slog.Logger, m *metrics.Metrics) (*audit.Emitter, func(), error) {
	logPublisher := audit.NewLogPublisher(logger)
	if len(cfg.KafkaBrokers) == 0 {
		if db != nil {
			logger.Info("persisting audit events to postgres")
			return audit.NewEmitter(audit.NewPostgresPublisher(db), logger,
				audit.WithFallback(logPublisher),
				audit.WithFailureCounter(m),
			), func() {}, nil
		}
		return audit.NewEmitter(logPublisher, logger, audit.WithFailureCounter(m)), func() {}, nil
	}

	kp, err := audit.NewKafkaPublisher(cfg.KafkaBrokers, cfg.Topic)
	if err != nil {
		return nil, nil, err
	}
	topicCtx, cancel := context.WithTimeout(ctx, topicTimeout)
	defer cancel()
	if err := kp.EnsureTopic(topicCtx); err != nil {
		logger.Warn("audit topic not ensured; publishing will fall back to the log until kafka is reachable",
			"topic", cfg.Topic,
			"error", err,
		)
	}
	logger.Info("publishing audit events to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.Topic)
	emitter := audit.NewEmitter(kp, logger,
		audit.WithFallback(logPublisher),
		audit.WithFailureCounter(m),
	)
	return emitter, kp.Close, nil
}
