package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const TypeOrderConfirmed = "OrderConfirmed"

// OrderLine is one product line of a confirmed order.
type OrderLine struct {
	ProductID int     `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// OrderConfirmed is emitted exactly once per confirmed order, before
// the session's cart is cleared.
type OrderConfirmed struct {
	OrderID     string      `json:"order_id"`
	SessionID   string      `json:"session_id"`
	Name        string      `json:"name"`
	City        string      `json:"city"`
	Total       float64     `json:"total"`
	Items       []OrderLine `json:"items"`
	ConfirmedAt time.Time   `json:"confirmed_at"`
}

// Envelope wraps an event payload for the wire.
type Envelope struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEnvelope wraps a payload in a typed envelope with a fresh id.
func NewEnvelope(eventType string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		ID:        uuid.New().String(),
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}, nil
}
