package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/models"
)

// InventoryTeamRecipient receives low-stock alerts.
const InventoryTeamRecipient = "inventory-team"

type EmailSender interface {
	SendEmail(ctx context.Context, msg models.EmailMessage) error
}

// EmailNotifier turns events into emails. Without a sender the email is only logged.
type EmailNotifier struct {
	sender EmailSender
	logger *zap.Logger
}

func NewEmailNotifier(sender EmailSender, logger *zap.Logger) *EmailNotifier {
	return &EmailNotifier{sender: sender, logger: logger}
}

func (n *EmailNotifier) Name() string { return "email" }

func (n *EmailNotifier) Handle(ctx context.Context, ev models.Event) error {
	msg, ok, err := n.render(ev)
	if err != nil {
		return err
	}
	if !ok {
		n.logger.Debug("Email notifier ignoring event", zap.String("event_type", string(ev.Type)))
		return nil
	}

	n.logger.Info("📧 Email", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	if n.sender == nil {
		return nil
	}
	if err := n.sender.SendEmail(ctx, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func (n *EmailNotifier) render(ev models.Event) (models.EmailMessage, bool, error) {
	msg := models.EmailMessage{EventType: ev.Type, EventID: ev.ID}

	switch ev.Type {
	case models.EventOrderCreated:
		p, ok := ev.Payload.(models.OrderCreatedEvent)
		if !ok {
			return msg, false, payloadError(ev)
		}
		msg.To = p.Order.CustomerID
		msg.Subject = fmt.Sprintf("Order #%d confirmation", p.Order.ID)
		msg.Body = fmt.Sprintf("Hi %s, we received your order #%d of %d item(s). Total: %s.",
			p.Order.CustomerName, p.Order.ID, len(p.Order.Items), p.Order.Total.StringFixed(2))
	case models.EventOrderStatusChanged:
		p, ok := ev.Payload.(models.OrderStatusChangedEvent)
		if !ok {
			return msg, false, payloadError(ev)
		}
		msg.To = p.Order.CustomerID
		msg.Subject = fmt.Sprintf("Order #%d is now %s", p.OrderID, p.NewStatus)
		msg.Body = fmt.Sprintf("Hi %s, your order #%d moved from %s to %s.",
			p.Order.CustomerName, p.OrderID, p.OldStatus, p.NewStatus)
	case models.EventOrderCancelled:
		p, ok := ev.Payload.(models.OrderCancelledEvent)
		if !ok {
			return msg, false, payloadError(ev)
		}
		msg.To = p.Order.CustomerID
		msg.Subject = fmt.Sprintf("Order #%d cancelled", p.Order.ID)
		msg.Body = fmt.Sprintf("Hi %s, your order #%d has been cancelled.", p.Order.CustomerName, p.Order.ID)
	case models.EventProductLowStock:
		p, ok := ev.Payload.(models.LowStockEvent)
		if !ok {
			return msg, false, payloadError(ev)
		}
		msg.To = InventoryTeamRecipient
		msg.Subject = fmt.Sprintf("Low stock: %s", p.ProductName)
		msg.Body = fmt.Sprintf("Product #%d (%s) is down to %d unit(s), below the threshold of %d.",
			p.ProductID, p.ProductName, p.Stock, p.Threshold)
	default:
		return msg, false, nil
	}

	return msg, true, nil
}

func payloadError(ev models.Event) error {
	return fmt.Errorf("event %s: unexpected payload %T", ev.Type, ev.Payload)
}
