package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/shop-assistant/internal/email"
	"github.com/example/shop-assistant/internal/events"
)

// Handler turns confirmed-order events into notification emails sent to
// the configured orders inbox.
type Handler struct {
	emailService *email.Service
	ordersInbox  string
}

func NewHandler(emailSvc *email.Service, ordersInbox string) *Handler {
	return &Handler{emailService: emailSvc, ordersInbox: ordersInbox}
}

// HandleEnvelope processes one event envelope from Kafka. Event types
// other than OrderConfirmed are ignored.
func (h *Handler) HandleEnvelope(_ context.Context, envelope events.Envelope) error {
	if envelope.Type != events.TypeOrderConfirmed {
		return nil
	}

	var order events.OrderConfirmed
	if err := json.Unmarshal(envelope.Data, &order); err != nil {
		log.Printf("[Notifier] Failed to unmarshal OrderConfirmed event: %v", err)
		return err
	}

	log.Printf("[Notifier] Processing order %s for session %s (%.2f €)",
		order.OrderID, order.SessionID, order.Total)

	if err := h.emailService.SendOrderConfirmation(h.ordersInbox, order); err != nil {
		log.Printf("[Notifier] Failed to send email for order %s: %v", order.OrderID, err)
		return err
	}

	log.Printf("[Notifier] Confirmation email sent for order %s", order.OrderID)
	return nil
}
