package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/messaging"
	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/models"
)

const (
	EmailQueue = "notifications.email"
	PushQueue  = "notifications.push"
)

// NotificationPublisher hands rendered emails and pushes to a broker for
// delivery by downstream workers. It satisfies notify.EmailSender and
// notify.PushSender.
type NotificationPublisher struct {
	broker messaging.Broker
	logger *zap.Logger
}

func NewNotificationPublisher(broker messaging.Broker, logger *zap.Logger) *NotificationPublisher {
	return &NotificationPublisher{broker: broker, logger: logger}
}

// SendEmail publishes msg to the email queue, keyed by event id
func (p *NotificationPublisher) SendEmail(ctx context.Context, msg models.EmailMessage) error {
	return p.publish(ctx, EmailQueue, msg.EventID, msg)
}

// SendPush publishes msg to the push queue, keyed by event id
func (p *NotificationPublisher) SendPush(ctx context.Context, msg models.PushMessage) error {
	return p.publish(ctx, PushQueue, msg.EventID, msg)
}

func (p *NotificationPublisher) publish(ctx context.Context, dest, key string, msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err := p.broker.Publish(ctx, dest, key, data); err != nil {
		return err
	}

	p.logger.Info("📤 Notification dispatched", zap.String("destination", dest), zap.String("event_id", key))
	return nil
}
