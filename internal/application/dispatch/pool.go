// Package dispatch runs event handlers on a bounded worker pool decoupled
// from request handling.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/match-hub/match-hub/internal/domain/alert"
	"github.com/match-hub/match-hub/internal/domain/event"
)

var (
	ErrQueueFull = errors.New("dispatch queue full")
	ErrStopped   = errors.New("dispatcher stopped")
)

var tracer = otel.Tracer("github.com/match-hub/match-hub/internal/application/dispatch")

// Handler processes one event
type Handler interface {
	Handle(ctx context.Context, e event.Event) error
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, e event.Event) error

func (f HandlerFunc) Handle(ctx context.Context, e event.Event) error { return f(ctx, e) }

// Config sizes the pool
type Config struct {
	Workers      int
	QueueSize    int
	EventTimeout time.Duration
	AlertTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 5
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 100
	}
	if c.EventTimeout <= 0 {
		c.EventTimeout = 10 * time.Second
	}
	if c.AlertTimeout <= 0 {
		c.AlertTimeout = 5 * time.Second
	}
	return c
}

// Stats is a snapshot of pool counters
type Stats struct {
	Accepted  int64 `json:"accepted"`
	Rejected  int64 `json:"rejected"`
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
	Queued    int   `json:"queued"`
}

// Pool is a fixed set of workers draining a bounded queue. Dispatch never
// blocks; events that do not fit are dropped and reported.
type Pool struct {
	cfg     Config
	handler Handler
	alerts  alert.Sink
	logger  zerolog.Logger

	queue   chan event.Event
	mu      sync.RWMutex
	started bool
	stopped bool
	baseCtx context.Context
	wg      sync.WaitGroup

	accepted  atomic.Int64
	rejected  atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
}

// NewPool creates a pool. Workers start with Start.
func NewPool(cfg Config, handler Handler, alerts alert.Sink, logger zerolog.Logger) *Pool {
	cfg = cfg.withDefaults()
	if alerts == nil {
		alerts = alert.Nop{}
	}
	return &Pool{
		cfg:     cfg,
		handler: handler,
		alerts:  alerts,
		logger:  logger.With().Str("component", "dispatcher").Logger(),
		queue:   make(chan event.Event, cfg.QueueSize),
		baseCtx: context.Background(),
	}
}

// Start launches the workers. In-flight events keep running after ctx is
// cancelled; use Stop to drain.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true
	p.baseCtx = context.WithoutCancel(ctx)

	for i := 0; i < p.cfg.Workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Info().
		Int("workers", p.cfg.Workers).
		Int("queue_size", p.cfg.QueueSize).
		Msg("dispatcher started")
}

// Dispatch enqueues e without blocking
func (p *Pool) Dispatch(e event.Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		p.reject(e, ErrStopped)
		return ErrStopped
	}

	select {
	case p.queue <- e:
		p.accepted.Add(1)
		return nil
	default:
		p.reject(e, ErrQueueFull)
		return ErrQueueFull
	}
}

// Stop closes intake and waits for queued events until ctx expires
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	started := p.started
	close(p.queue)
	p.mu.Unlock()

	if !started {
		// No workers will ever read the queue; report what it still holds.
		discarded := 0
		for e := range p.queue {
			p.reject(e, ErrStopped)
			discarded++
		}
		if discarded > 0 {
			p.logger.Warn().Int("discarded", discarded).Msg("dispatcher stopped before start")
		}
		return nil
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info().Msg("dispatcher drained")
		return nil
	case <-ctx.Done():
		p.logger.Warn().Int("queued", len(p.queue)).Msg("dispatcher stop timed out")
		return fmt.Errorf("drain dispatcher: %w", ctx.Err())
	}
}

// Stats returns current counters
func (p *Pool) Stats() Stats {
	return Stats{
		Accepted:  p.accepted.Load(),
		Rejected:  p.rejected.Load(),
		Processed: p.processed.Load(),
		Failed:    p.failed.Load(),
		Queued:    len(p.queue),
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for e := range p.queue {
		p.process(id, e)
	}
}

func (p *Pool) process(workerID int, e event.Event) {
	ctx, cancel := context.WithTimeout(p.baseCtx, p.cfg.EventTimeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "dispatch.Handle")
	span.SetAttributes(
		attribute.String("event.id", e.ID().String()),
		attribute.String("event.type", string(e.Type())),
		attribute.Int("dispatch.worker", workerID),
	)
	defer span.End()

	err := p.safeHandle(ctx, e)
	if err == nil {
		p.processed.Add(1)
		return
	}

	p.failed.Add(1)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	p.logger.Error().
		Err(err).
		Int("worker", workerID).
		Str("event_id", e.ID().String()).
		Str("event_type", string(e.Type())).
		Str("post_id", e.AggregateID().String()).
		Msg("event handler failed")
	p.raise(alert.New(alert.SeverityWarning, "dispatcher", "Event handler failed", err.Error()).
		With("event_type", string(e.Type())).
		With("event_id", e.ID().String()))
}

func (p *Pool) safeHandle(ctx context.Context, e event.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().
				Str("stack", string(debug.Stack())).
				Str("event_id", e.ID().String()).
				Msg("event handler panicked")
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return p.handler.Handle(ctx, e)
}

func (p *Pool) reject(e event.Event, reason error) {
	p.rejected.Add(1)
	p.logger.Error().
		Err(reason).
		Str("event_id", e.ID().String()).
		Str("event_type", string(e.Type())).
		Str("post_id", e.AggregateID().String()).
		Int("queue_size", p.cfg.QueueSize).
		Msg("event rejected")
	p.raise(alert.New(alert.SeverityCritical, "dispatcher", "Event rejected", reason.Error()).
		With("event_type", string(e.Type())).
		With("event_id", e.ID().String()).
		With("post_id", e.AggregateID().String()))
}

// raise sends the alert off the caller's goroutine
func (p *Pool) raise(a alert.Alert) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.cfg.AlertTimeout)
		defer cancel()
		if err := p.alerts.Send(ctx, a); err != nil {
			p.logger.Warn().Err(err).Str("alert", a.Title).Msg("alert delivery failed")
		}
	}()
}
