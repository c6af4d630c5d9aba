package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pokereview/pkg/platform/circuit"
	"pokereview/pkg/requestcontext"
)

const (
	defaultBuffer         = 256
	defaultPublishTimeout = 5 * time.Second
)

// FailureCounter counts events that reached no sink.
type FailureCounter interface {
	IncrementAuditFailure(entity string)
}

// Emitter queues events and publishes them from Run. When the primary
// publisher keeps failing its circuit opens and events go to the fallback
// until a probe succeeds.
type Emitter struct {
	primary  Publisher
	fallback Publisher
	breaker  *circuit.Breaker
	logger   *slog.Logger
	failures FailureCounter
	inbox    chan Event
}

type EmitterOption func(*Emitter)

// WithFallback sets the publisher used while the primary circuit is open.
func WithFallback(p Publisher) EmitterOption {
	return func(e *Emitter) { e.fallback = p }
}

func WithBuffer(n int) EmitterOption {
	return func(e *Emitter) {
		if n > 0 {
			e.inbox = make(chan Event, n)
		}
	}
}

func WithFailureCounter(c FailureCounter) EmitterOption {
	return func(e *Emitter) { e.failures = c }
}

func WithBreaker(b *circuit.Breaker) EmitterOption {
	return func(e *Emitter) { e.breaker = b }
}

func NewEmitter(primary Publisher, logger *slog.Logger, opts ...EmitterOption) *Emitter {
	e := &Emitter{
		primary: primary,
		logger:  logger,
		breaker: circuit.New("audit", circuit.WithFailureThreshold(3), circuit.WithCooldown(30*time.Second)),
		inbox:   make(chan Event, defaultBuffer),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Emit stamps and queues one event. It never blocks: when the queue is full
// the event is dropped and counted.
func (e *Emitter) Emit(ctx context.Context, entity string, entityID int, action Action) {
	ev := Event{
		ID:        uuid.NewString(),
		Entity:    entity,
		EntityID:  entityID,
		Action:    action,
		RequestID: requestcontext.RequestID(ctx),
		Timestamp: requestcontext.Now(ctx).UTC(),
	}
	select {
	case e.inbox <- ev:
	default:
		e.logger.WarnContext(ctx, "audit queue full, event dropped",
			"request_id", ev.RequestID,
			"entity", entity,
			"entity_id", entityID,
		)
		e.countFailure(entity)
	}
}

// Run publishes queued events until ctx is cancelled, then drains what is
// left in the queue.
func (e *Emitter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			e.drain()
			return nil
		case ev := <-e.inbox:
			e.publish(ctx, ev)
		}
	}
}

func (e *Emitter) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), defaultPublishTimeout)
	defer cancel()
	for {
		select {
		case ev := <-e.inbox:
			e.publish(ctx, ev)
		default:
			return
		}
	}
}

func (e *Emitter) publish(ctx context.Context, ev Event) {
	ctx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()

	if e.breaker.Allow() {
		err := e.primary.Publish(ctx, ev)
		if err == nil {
			if _, change := e.breaker.RecordSuccess(); change.Closed {
				e.logger.InfoContext(ctx, "audit publisher recovered")
			}
			return
		}
		_, change := e.breaker.RecordFailure()
		e.logger.WarnContext(ctx, "audit publish failed",
			"request_id", ev.RequestID,
			"entity", ev.Entity,
			"circuit_opened", change.Opened,
			"error", err,
		)
	}

	if e.fallback == nil {
		e.countFailure(ev.Entity)
		return
	}
	if err := e.fallback.Publish(ctx, ev); err != nil {
		e.logger.ErrorContext(ctx, "audit fallback publish failed",
			"request_id", ev.RequestID,
			"entity", ev.Entity,
			"error", err,
		)
		e.countFailure(ev.Entity)
	}
}

func (e *Emitter) countFailure(entity string) {
	if e.failures != nil {
		e.failures.IncrementAuditFailure(entity)
	}
}
