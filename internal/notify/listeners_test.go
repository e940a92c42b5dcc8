package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/models"
)

func sampleOrder(status models.OrderStatus, total string) models.Order {
	return models.Order{
		ID:           42,
		CustomerID:   "cust-1",
		CustomerName: "Ada",
		Status:       status,
		Total:        decimal.RequireFromString(total),
	}
}

type fakeEmailSender struct {
	sent []models.EmailMessage
	err  error
}

func (f *fakeEmailSender) SendEmail(_ context.Context, msg models.EmailMessage) error {
	f.sent = append(f.sent, msg)
	return f.err
}

type fakePushSender struct {
	sent []models.PushMessage
}

func (f *fakePushSender) SendPush(_ context.Context, msg models.PushMessage) error {
	f.sent = append(f.sent, msg)
	return nil
}

type fakeAuditSink struct {
	saved []models.AuditEntry
	err   error
}

func (f *fakeAuditSink) Save(_ context.Context, e models.AuditEntry) error {
	f.saved = append(f.saved, e)
	return f.err
}

func TestEmailNotifier_RendersEachEventType(t *testing.T) {
	sender := &fakeEmailSender{}
	n := NewEmailNotifier(sender, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, n.Handle(ctx, NewEvent(models.EventOrderCreated,
		models.OrderCreatedEvent{Order: sampleOrder(models.OrderStatusPending, "90")})))
	require.NoError(t, n.Handle(ctx, NewEvent(models.EventOrderStatusChanged,
		models.OrderStatusChangedEvent{OrderID: 42, OldStatus: models.OrderStatusPending,
			NewStatus: models.OrderStatusProcessing, Order: sampleOrder(models.OrderStatusProcessing, "90")})))
	require.NoError(t, n.Handle(ctx, NewEvent(models.EventOrderCancelled,
		models.OrderCancelledEvent{Order: sampleOrder(models.OrderStatusCancelled, "90")})))
	require.NoError(t, n.Handle(ctx, NewEvent(models.EventProductLowStock,
		models.LowStockEvent{ProductID: 3, ProductName: "Mouse", Stock: 4, Threshold: 10})))

	require.Len(t, sender.sent, 4)
	assert.Equal(t, "cust-1", sender.sent[0].To)
	assert.Equal(t, "Order #42 confirmation", sender.sent[0].Subject)
	assert.Contains(t, sender.sent[0].Body, "90.00")
	assert.Equal(t, "Order #42 is now PROCESSING", sender.sent[1].Subject)
	assert.Equal(t, "Order #42 cancelled", sender.sent[2].Subject)
	assert.Equal(t, InventoryTeamRecipient, sender.sent[3].To)
	assert.Equal(t, models.EventProductLowStock, sender.sent[3].EventType)
}

func TestEmailNotifier_IgnoresUnknownTypes(t *testing.T) {
	sender := &fakeEmailSender{}
	n := NewEmailNotifier(sender, zap.NewNop())

	err := n.Handle(context.Background(), NewEvent("inventory.recount", nil))

	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestEmailNotifier_SenderErrorIsReturned(t *testing.T) {
	sender := &fakeEmailSender{err: errors.New("relay refused")}
	n := NewEmailNotifier(sender, zap.NewNop())

	err := n.Handle(context.Background(), NewEvent(models.EventOrderCancelled,
		models.OrderCancelledEvent{Order: sampleOrder(models.OrderStatusCancelled, "1")}))

	assert.ErrorContains(t, err, "relay refused")
}

func TestEmailNotifier_RejectsMismatchedPayload(t *testing.T) {
	n := NewEmailNotifier(nil, zap.NewNop())

	err := n.Handle(context.Background(), NewEvent(models.EventOrderCreated, "not an order"))

	assert.ErrorContains(t, err, "unexpected payload string")
}

func TestPushNotifier_OnlyOrderEvents(t *testing.T) {
	sender := &fakePushSender{}
	n := NewPushNotifier(sender, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, n.Handle(ctx, NewEvent(models.EventOrderCreated,
		models.OrderCreatedEvent{Order: sampleOrder(models.OrderStatusPending, "10")})))
	require.NoError(t, n.Handle(ctx, NewEvent(models.EventProductLowStock,
		models.LowStockEvent{ProductID: 1, Stock: 2, Threshold: 10})))
	require.NoError(t, n.Handle(ctx, NewEvent(models.EventOrderCancelled,
		models.OrderCancelledEvent{Order: sampleOrder(models.OrderStatusCancelled, "10")})))

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "Order placed", sender.sent[0].Title)
	assert.Equal(t, "cust-1", sender.sent[0].UserID)
	assert.Equal(t, "Order cancelled", sender.sent[1].Title)
}

func TestAuditLogger_RecordsAndFilters(t *testing.T) {
	a := NewAuditLogger(nil)
	ctx := context.Background()

	require.NoError(t, a.Handle(ctx, NewEvent(models.EventOrderCreated, models.OrderCreatedEvent{})))
	require.NoError(t, a.Handle(ctx, NewEvent(models.EventProductLowStock, models.LowStockEvent{})))
	require.NoError(t, a.Handle(ctx, NewEvent(models.EventOrderCreated, models.OrderCreatedEvent{})))

	entries := a.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, models.EventProductLowStock, entries[1].Type)
	assert.False(t, entries[0].Timestamp.IsZero())
	assert.Len(t, a.EntriesByType(models.EventOrderCreated), 2)
	assert.Empty(t, a.EntriesByType(models.EventOrderCancelled))

	a.Clear()
	assert.Empty(t, a.Entries())
}

func TestAuditLogger_EntriesIsACopy(t *testing.T) {
	a := NewAuditLogger(nil)
	require.NoError(t, a.Handle(context.Background(), NewEvent(models.EventOrderCreated, nil)))

	entries := a.Entries()
	entries[0].Type = "tampered"

	assert.Equal(t, models.EventOrderCreated, a.Entries()[0].Type)
}

func TestAuditLogger_SinkFailureKeepsInMemoryEntry(t *testing.T) {
	sink := &fakeAuditSink{err: errors.New("connection reset")}
	a := NewAuditLogger(sink)

	err := a.Handle(context.Background(), NewEvent(models.EventOrderCancelled, models.OrderCancelledEvent{}))

	assert.ErrorContains(t, err, "connection reset")
	assert.Len(t, a.Entries(), 1)
	assert.Len(t, sink.saved, 1)
}

func TestStatsCollector_CountsAndRevenue(t *testing.T) {
	s := NewStatsCollector()
	ctx := context.Background()

	require.NoError(t, s.Handle(ctx, NewEvent(models.EventOrderCreated, models.OrderCreatedEvent{})))
	require.NoError(t, s.Handle(ctx, NewEvent(models.EventOrderCreated, models.OrderCreatedEvent{})))
	require.NoError(t, s.Handle(ctx, NewEvent(models.EventOrderStatusChanged, models.OrderStatusChangedEvent{
		OrderID: 42, OldStatus: models.OrderStatusPending, NewStatus: models.OrderStatusProcessing,
		Order: sampleOrder(models.OrderStatusProcessing, "250.50"),
	})))
	require.NoError(t, s.Handle(ctx, NewEvent(models.EventOrderStatusChanged, models.OrderStatusChangedEvent{
		OrderID: 42, OldStatus: models.OrderStatusProcessing, NewStatus: models.OrderStatusCompleted,
		Order: sampleOrder(models.OrderStatusCompleted, "250.50"),
	})))
	require.NoError(t, s.Handle(ctx, NewEvent(models.EventOrderCancelled, models.OrderCancelledEvent{})))
	require.NoError(t, s.Handle(ctx, NewEvent(models.EventProductLowStock, models.LowStockEvent{})))

	snap := s.Snapshot()
	assert.Equal(t, 2, snap.OrdersCreated)
	assert.Equal(t, 1, snap.OrdersCompleted)
	assert.Equal(t, 1, snap.OrdersCancelled)
	assert.Equal(t, 1, snap.LowStockAlerts)
	assert.True(t, decimal.RequireFromString("250.50").Equal(snap.Revenue), snap.Revenue.String())
}
