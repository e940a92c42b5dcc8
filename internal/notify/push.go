package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/models"
)

type PushSender interface {
	SendPush(ctx context.Context, msg models.PushMessage) error
}

// PushNotifier only reacts to order lifecycle events.
type PushNotifier struct {
	sender PushSender
	logger *zap.Logger
}

func NewPushNotifier(sender PushSender, logger *zap.Logger) *PushNotifier {
	return &PushNotifier{sender: sender, logger: logger}
}

func (n *PushNotifier) Name() string { return "push" }

func (n *PushNotifier) Handle(ctx context.Context, ev models.Event) error {
	msg := models.PushMessage{EventType: ev.Type, EventID: ev.ID}

	switch ev.Type {
	case models.EventOrderCreated:
		p, ok := ev.Payload.(models.OrderCreatedEvent)
		if !ok {
			return payloadError(ev)
		}
		msg.UserID = p.Order.CustomerID
		msg.Title = "Order placed"
		msg.Body = fmt.Sprintf("Order #%d placed, total %s", p.Order.ID, p.Order.Total.StringFixed(2))
	case models.EventOrderStatusChanged:
		p, ok := ev.Payload.(models.OrderStatusChangedEvent)
		if !ok {
			return payloadError(ev)
		}
		msg.UserID = p.Order.CustomerID
		msg.Title = "Order update"
		msg.Body = fmt.Sprintf("Order #%d is now %s", p.OrderID, p.NewStatus)
	case models.EventOrderCancelled:
		p, ok := ev.Payload.(models.OrderCancelledEvent)
		if !ok {
			return payloadError(ev)
		}
		msg.UserID = p.Order.CustomerID
		msg.Title = "Order cancelled"
		msg.Body = fmt.Sprintf("Order #%d was cancelled", p.Order.ID)
	default:
		return nil
	}

	n.logger.Info("📱 Push", zap.String("user_id", msg.UserID), zap.String("title", msg.Title))
	if n.sender == nil {
		return nil
	}
	if err := n.sender.SendPush(ctx, msg); err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	return nil
}
