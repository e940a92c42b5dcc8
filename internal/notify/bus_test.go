package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/metrics"
	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/models"
)

type recordingListener struct {
	name string
	seen []models.Event
	err  error
	boom bool
}

func (l *recordingListener) Name() string { return l.name }

func (l *recordingListener) Handle(_ context.Context, ev models.Event) error {
	l.seen = append(l.seen, ev)
	if l.boom {
		panic("listener exploded")
	}
	return l.err
}

func TestBus_AttachIsIdempotent(t *testing.T) {
	bus := NewBus(zap.NewNop(), nil)
	l := &recordingListener{name: "rec"}

	assert.True(t, bus.Attach(l))
	assert.False(t, bus.Attach(l))
	assert.Equal(t, []string{"rec"}, bus.Listeners())

	bus.Publish(context.Background(), NewEvent(models.EventOrderCreated, models.OrderCreatedEvent{}))
	assert.Len(t, l.seen, 1)
}

func TestBus_Detach(t *testing.T) {
	bus := NewBus(zap.NewNop(), nil)
	a := &recordingListener{name: "a"}
	b := &recordingListener{name: "b"}
	bus.Attach(a)
	bus.Attach(b)

	assert.True(t, bus.Detach(a))
	assert.False(t, bus.Detach(a))
	assert.Equal(t, []string{"b"}, bus.Listeners())

	bus.Publish(context.Background(), NewEvent(models.EventOrderCancelled, models.OrderCancelledEvent{}))
	assert.Empty(t, a.seen)
	assert.Len(t, b.seen, 1)
}

func TestBus_FailuresAreIsolated(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry(), "test")
	bus := NewBus(zap.NewNop(), m)

	failing := &recordingListener{name: "failing", err: errors.New("smtp down")}
	panicking := &recordingListener{name: "panicking", boom: true}
	healthy := &recordingListener{name: "healthy"}
	bus.Attach(failing)
	bus.Attach(panicking)
	bus.Attach(healthy)

	require.NotPanics(t, func() {
		bus.Publish(context.Background(), NewEvent(models.EventOrderCreated, models.OrderCreatedEvent{}))
	})

	assert.Len(t, failing.seen, 1)
	assert.Len(t, panicking.seen, 1)
	assert.Len(t, healthy.seen, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ListenerFailures.WithLabelValues("failing")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ListenerFailures.WithLabelValues("panicking")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("order.created")))
}

func TestBus_DeliversInAttachmentOrder(t *testing.T) {
	bus := NewBus(zap.NewNop(), nil)
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		bus.Attach(&listenerFunc{name: name, fn: func(string) { order = append(order, name) }})
	}

	bus.Publish(context.Background(), NewEvent(models.EventProductLowStock, models.LowStockEvent{}))
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestNewEvent(t *testing.T) {
	a := NewEvent(models.EventOrderCreated, nil)
	b := NewEvent(models.EventOrderCreated, nil)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.OccurredAt.IsZero())
}

type listenerFunc struct {
	name string
	fn   func(string)
}

func (l *listenerFunc) Name() string { return l.name }

func (l *listenerFunc) Handle(context.Context, models.Event) error {
	l.fn(l.name)
	return nil
}
