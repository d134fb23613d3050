package conversation

import (
	"context"
	"strings"
	"sync"

	"github.com/example/shop-assistant/internal/conversation/intent"
	"github.com/example/shop-assistant/internal/domain/catalog"
	"github.com/example/shop-assistant/internal/domain/coupon"
	"github.com/example/shop-assistant/internal/domain/pricing"
	"github.com/example/shop-assistant/internal/events"
)

// Publisher emits order events once a session confirms an order.
// Publishing is best-effort and never fails a turn.
type Publisher interface {
	PublishOrderConfirmed(ctx context.Context, event events.OrderConfirmed) error
}

// Engine runs one conversation turn: parse the message, route it to a
// handler for the session's mode, and leave the updated state plus the
// outbound message behind. It holds no per-session state itself and is
// safe to share across sessions.
type Engine struct {
	mu        sync.RWMutex
	catalog   *catalog.Catalog
	coupons   *coupon.Book
	replies   *Replies
	publisher Publisher
}

func NewEngine(cat *catalog.Catalog, coupons *coupon.Book, replies *Replies) *Engine {
	if replies == nil {
		replies = DefaultReplies()
	}
	return &Engine{catalog: cat, coupons: coupons, replies: replies}
}

// SetPublisher wires an optional order-event publisher.
func (e *Engine) SetPublisher(p Publisher) {
	e.publisher = p
}

// ReplaceData swaps the catalog and coupon lists, e.g. after an admin
// reload of the data files. In-flight carts keep the product snapshots
// they already reference.
func (e *Engine) ReplaceData(cat *catalog.Catalog, coupons *coupon.Book) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.catalog = cat
	e.coupons = coupons
}

func (e *Engine) data() (*catalog.Catalog, *coupon.Book) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.catalog, e.coupons
}

// Catalog returns the current product catalog.
func (e *Engine) Catalog() *catalog.Catalog {
	cat, _ := e.data()
	return cat
}

// NewSession creates the initial state for a session, greeting
// included.
func (e *Engine) NewSession(sessionID string) *State {
	return NewState(sessionID, e.replies.Welcome)
}

// HandleTurn processes one inbound message against the session state.
// It always sets BotMessage, appends both transcript entries, and
// refreshes the discount summary. Handlers never return errors to the
// caller; user-facing problems become bot messages.
func (e *Engine) HandleTurn(ctx context.Context, st *State, message string) {
	msg := strings.TrimSpace(message)
	if msg == "" {
		st.BotMessage = e.replies.EmptyMessage
		st.appendHistory(SpeakerBot, st.BotMessage)
		return
	}

	st.LastUserMessage = msg
	st.appendHistory(SpeakerUser, msg)

	parsed := intent.Parse(msg)
	handler := e.route(st, parsed)
	handler(ctx, st, parsed)

	refreshSummary(st)
	if st.BotMessage != "" {
		st.appendHistory(SpeakerBot, st.BotMessage)
	}
}

type handlerFunc func(ctx context.Context, st *State, p intent.Parsed)

// route picks the handler for (mode, intent). Shipping and confirmation
// honor only a small set of intent overrides: once shipping collection
// starts, ambiguous text is shipping input, not a command.
func (e *Engine) route(st *State, p intent.Parsed) handlerFunc {
	if st.Mode == ModeShipping {
		switch p.Intent {
		case intent.Exit:
			return e.handleExit
		case intent.Help:
			return e.handleHelp
		}
		return e.handleShipping
	}

	if st.Mode == ModeConfirmation {
		switch p.Intent {
		case intent.Exit:
			return e.handleExit
		case intent.Help:
			return e.handleHelp
		case intent.ShowCatalog:
			return e.handleCatalog
		case intent.ShowCart:
			return e.handleShowCart
		}
		return e.handleConfirmation
	}

	switch p.Intent {
	case intent.ShowCatalog:
		return e.handleCatalog
	case intent.AddToCart:
		return e.handleAddToCart
	case intent.RemoveFromCart:
		return e.handleRemoveFromCart
	case intent.UpdateQuantity:
		return e.handleUpdateQuantity
	case intent.ShowCart:
		return e.handleShowCart
	case intent.Checkout:
		return e.handleCheckout
	case intent.ApplyCoupon:
		return e.handleApplyCoupon
	case intent.Smalltalk:
		return e.handleSmalltalk
	case intent.Greeting:
		return e.handleGreeting
	case intent.Help:
		return e.handleHelp
	case intent.Exit:
		return e.handleExit
	}
	return e.handleUnknown
}

// refreshSummary recomputes the discount summary after the turn, or
// drops it when the cart is empty. Summaries are never patched in
// place.
func refreshSummary(st *State) {
	if st.Cart.IsEmpty() {
		st.Summary = nil
		return
	}
	summary := pricing.ComputeTotals(st.Cart)
	st.Summary = &summary
}
