package event

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/techsolutions/pos/internal/domain/shared"
	"github.com/techsolutions/pos/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrBusStopped is returned when publishing after Stop
var ErrBusStopped = errors.New("event bus stopped")

// InMemoryEventBus delivers events synchronously to subscribed handlers in
// registration order. A failing or panicking handler does not stop delivery
// to the others; all failures are returned joined.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	stopped  atomic.Bool
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
	}
}

// Publish delivers each event to its handlers
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if b.stopped.Load() {
		return ErrBusStopped
	}

	var errs []error
	for _, event := range events {
		for _, handler := range b.registry.GetHandlers(event.EventType()) {
			if err := b.dispatch(ctx, handler, event); err != nil {
				errs = append(errs, fmt.Errorf("%s %s: %w", event.EventType(), event.EventID(), err))
			}
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers a handler. Without explicit types the handler's own
// EventTypes are used.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("Event handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start marks the bus as accepting events
func (b *InMemoryEventBus) Start(_ context.Context) error {
	b.stopped.Store(false)
	b.logger.Info("Event bus started", zap.Int("handlers", b.registry.Count()))
	return nil
}

// Stop rejects further events. Delivery is synchronous, so nothing is in
// flight once Publish has returned.
func (b *InMemoryEventBus) Stop(_ context.Context) error {
	b.stopped.Store(true)
	b.logger.Info("Event bus stopped")
	return nil
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "event_bus", "handle",
		attribute.String("event.type", event.EventType()),
		attribute.Int64("event.aggregate_id", event.AggregateID()),
	)
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked",
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r),
			)
			err = fmt.Errorf("handler panicked: %v", r)
		}
		telemetry.RecordError(span, err)
		span.End()
	}()

	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
