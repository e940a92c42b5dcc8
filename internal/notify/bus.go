// Package notify fans order and inventory events out to in-process listeners.
//
// Delivery is synchronous and in attachment order. A listener that fails, by
// returning an error or by panicking, is logged and skipped; the remaining
// listeners still see the event and the publisher never sees the failure.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/metrics"
	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/models"
)

// Listener receives every event published on a Bus it is attached to.
// Implementations must be comparable (pointer receivers) so Attach can
// recognise a listener it already holds.
type Listener interface {
	Name() string
	Handle(ctx context.Context, ev models.Event) error
}

type Bus struct {
	mu        sync.RWMutex
	listeners []Listener

	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewBus creates an empty bus. m may be nil.
func NewBus(logger *zap.Logger, m *metrics.Metrics) *Bus {
	return &Bus{logger: logger, metrics: m}
}

// NewEvent stamps a payload with a fresh id and the current time.
func NewEvent(typ models.EventType, payload any) models.Event {
	return models.Event{
		ID:         uuid.NewString(),
		Type:       typ,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

// Attach adds l unless it is already attached. It reports whether l was added.
func (b *Bus) Attach(l Listener) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, existing := range b.listeners {
		if existing == l {
			return false
		}
	}
	b.listeners = append(b.listeners, l)
	b.logger.Info("👂 Listener attached", zap.String("listener", l.Name()))
	return true
}

// Detach removes l. It reports whether l was attached.
func (b *Bus) Detach(l Listener) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, existing := range b.listeners {
		if existing == l {
			b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
			b.logger.Info("Listener detached", zap.String("listener", l.Name()))
			return true
		}
	}
	return false
}

// Listeners returns the names of the attached listeners in delivery order.
func (b *Bus) Listeners() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.listeners))
	for _, l := range b.listeners {
		names = append(names, l.Name())
	}
	return names
}

// Publish delivers ev to every listener attached at the time of the call.
func (b *Bus) Publish(ctx context.Context, ev models.Event) {
	b.mu.RLock()
	snapshot := append([]Listener(nil), b.listeners...)
	b.mu.RUnlock()

	if b.metrics != nil {
		b.metrics.EventsPublished.WithLabelValues(string(ev.Type)).Inc()
	}

	for _, l := range snapshot {
		if err := b.deliver(ctx, l, ev); err != nil {
			b.logger.Error("❌ Listener failed",
				zap.String("listener", l.Name()),
				zap.String("event_type", string(ev.Type)),
				zap.String("event_id", ev.ID),
				zap.Error(err),
			)
			if b.metrics != nil {
				b.metrics.ListenerFailures.WithLabelValues(l.Name()).Inc()
			}
		}
	}
}

func (b *Bus) deliver(ctx context.Context, l Listener, ev models.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return l.Handle(ctx, ev)
}
