package testutil

import (
	"context"
	"sync"

	"github.com/techsolutions/pos/internal/domain/shared"
)

// EventRecorder is a shared.EventHandler that keeps every event it receives.
type EventRecorder struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
}

// NewEventRecorder creates a recorder interested in eventTypes.
func NewEventRecorder(eventTypes ...string) *EventRecorder {
	return &EventRecorder{eventTypes: eventTypes}
}

// EventTypes returns the event types this handler subscribes to.
func (h *EventRecorder) EventTypes() []string {
	return h.eventTypes
}

// Handle records the event and returns the configured error.
func (h *EventRecorder) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

// Handled returns a copy of the handled events.
func (h *EventRecorder) Handled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	result := make([]shared.DomainEvent, len(h.handled))
	copy(result, h.handled)
	return result
}

// HandledCount returns the number of handled events.
func (h *EventRecorder) HandledCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

// OfType returns the handled events of one type, in arrival order.
func (h *EventRecorder) OfType(eventType string) []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	var result []shared.DomainEvent
	for _, e := range h.handled {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

// SetError sets the error to return from Handle.
func (h *EventRecorder) SetError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

// Reset clears handled events and the configured error.
func (h *EventRecorder) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = nil
	h.err = nil
}

var _ shared.EventHandler = (*EventRecorder)(nil)
