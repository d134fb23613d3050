package conversation

import (
	"github.com/example/shop-assistant/internal/domain/cart"
	"github.com/example/shop-assistant/internal/domain/pricing"
)

// Mode is the conversation's current phase. It constrains which intents
// the router honors.
type Mode string

const (
	ModeCatalog      Mode = "catalog"
	ModeCartEdit     Mode = "cart_edit"
	ModeShipping     Mode = "shipping"
	ModeConfirmation Mode = "confirmation"
	ModeEnd          Mode = "end"
)

const (
	SpeakerUser = "user"
	SpeakerBot  = "bot"
)

// ChatEntry is one line of the session transcript.
type ChatEntry struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// State is everything the assistant tracks for one session. One
// instance per session; mutated turn by turn by the engine. It
// serializes to JSON so any session store backend can persist it.
type State struct {
	SessionID       string           `json:"session_id"`
	Mode            Mode             `json:"mode"`
	Cart            *cart.Cart       `json:"cart"`
	LastUserMessage string           `json:"last_user_message"`
	ShippingName    string           `json:"shipping_name,omitempty"`
	ShippingCity    string           `json:"shipping_city,omitempty"`
	BotMessage      string           `json:"bot_message"`
	Summary         *pricing.Summary `json:"discount_summary,omitempty"`
	History         []ChatEntry      `json:"chat_history"`

	// Order bookkeeping. OrderConfirmed is sticky: once true the
	// confirmation handler only re-renders the stored snapshot.
	OrderConfirmed bool    `json:"order_confirmed"`
	LastOrderName  string  `json:"last_order_name,omitempty"`
	LastOrderCity  string  `json:"last_order_city,omitempty"`
	LastOrderTotal float64 `json:"last_order_total"`
}

// NewState creates a fresh session state in catalog mode with the
// welcome message already in the transcript.
func NewState(sessionID, welcome string) *State {
	return &State{
		SessionID:  sessionID,
		Mode:       ModeCatalog,
		Cart:       cart.New(),
		BotMessage: welcome,
		History:    []ChatEntry{{Speaker: SpeakerBot, Text: welcome}},
	}
}

func (s *State) appendHistory(speaker, text string) {
	s.History = append(s.History, ChatEntry{Speaker: speaker, Text: text})
}
