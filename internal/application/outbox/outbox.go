// Package outbox buffers domain events raised inside a transaction and hands
// them to the asynchronous dispatcher only after the transaction commits.
package outbox

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/match-hub/match-hub/internal/domain/event"
	"github.com/match-hub/match-hub/internal/domain/match"
)

var tracer = otel.Tracer("github.com/match-hub/match-hub/internal/application/outbox")

// Buffer collects events for a single request. It is discarded when the
// transaction that produced it rolls back.
type Buffer struct {
	mu     sync.Mutex
	events []event.Event
}

// NewBuffer creates an empty request-scoped buffer
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Add appends events in the order they were raised
func (b *Buffer) Add(events ...event.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, events...)
}

// Len returns the number of buffered events
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

// Drain returns all buffered events and empties the buffer
func (b *Buffer) Drain() []event.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	events := b.events
	b.events = nil
	return events
}

// Dispatcher accepts events for asynchronous processing without blocking
type Dispatcher interface {
	Dispatch(e event.Event) error
}

// Publisher moves committed events to the dispatcher
type Publisher struct {
	dispatcher Dispatcher
	txManager  match.TxManager
	logger     zerolog.Logger
}

// NewPublisher creates a new outbox publisher
func NewPublisher(dispatcher Dispatcher, txManager match.TxManager, logger zerolog.Logger) *Publisher {
	return &Publisher{
		dispatcher: dispatcher,
		txManager:  txManager,
		logger:     logger.With().Str("component", "outbox").Logger(),
	}
}

// Flush dispatches every buffered event. Must only be called after the
// owning transaction committed. Rejections are logged and never returned:
// the committed state stands regardless of delivery.
func (p *Publisher) Flush(ctx context.Context, buf *Buffer) int {
	if buf == nil {
		return 0
	}
	events := buf.Drain()
	_, span := tracer.Start(ctx, "outbox.Flush")
	defer span.End()

	dispatched := 0
	for _, e := range events {
		if err := p.dispatcher.Dispatch(e); err != nil {
			p.logger.Error().
				Err(err).
				Str("event_id", e.ID().String()).
				Str("event_type", string(e.Type())).
				Str("post_id", e.AggregateID().String()).
				Msg("event dropped after commit")
			continue
		}
		dispatched++
	}
	span.SetAttributes(
		attribute.Int("outbox.events", len(events)),
		attribute.Int("outbox.dispatched", dispatched),
	)
	return dispatched
}

// Transact runs fn in a transaction with a fresh buffer and flushes the
// buffer only when the transaction committed.
func (p *Publisher) Transact(ctx context.Context, fn func(ctx context.Context, buf *Buffer) error) error {
	buf := NewBuffer()
	if err := p.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		return fn(txCtx, buf)
	}); err != nil {
		return err
	}
	p.Flush(ctx, buf)
	return nil
}
