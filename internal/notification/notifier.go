package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/adboardhq/adboard/internal/config"
	"github.com/adboardhq/adboard/internal/logger"
	"github.com/adboardhq/adboard/internal/pubsub"
	"github.com/adboardhq/adboard/internal/types"
)

// Event is a fire-and-forget operator-facing message about an invoice
// generation outcome. Consumers (UI toasts, audit trail) subscribe to the
// configured topic; the billing flows never wait on delivery.
type Event struct {
	Type       string    `json:"type"`
	CampaignID string    `json:"campaign_id,omitempty"`
	InvoiceID  string    `json:"invoice_id,omitempty"`
	MonthKey   string    `json:"month_key,omitempty"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

const (
	EventInvoiceGenerated        = "invoice.generated"
	EventInvoiceGenerationFailed = "invoice.generation_failed"
)

// Notifier publishes generation outcomes without blocking the caller.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

type notifier struct {
	pubsub pubsub.Publisher
	topic  string
	logger *logger.Logger
}

// NewNotifier creates a Notifier on top of the given publisher.
func NewNotifier(ps pubsub.Publisher, cfg *config.Configuration, logger *logger.Logger) Notifier {
	return &notifier{
		pubsub: ps,
		topic:  cfg.Notification.Topic,
		logger: logger,
	}
}

// Notify publishes the event. Failures are logged and swallowed: a lost
// toast must never fail an already-persisted invoice.
func (n *notifier) Notify(ctx context.Context, event Event) {
	event.Timestamp = time.Now().UTC()

	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Errorw("failed to marshal notification event", "error", err, "type", event.Type)
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("tenant_id", types.GetTenantID(ctx))
	msg.Metadata.Set("event_type", event.Type)

	if err := n.pubsub.Publish(ctx, n.topic, msg); err != nil {
		n.logger.Errorw("failed to publish notification event",
			"error", err,
			"type", event.Type,
			"invoice_id", event.InvoiceID)
	}
}
