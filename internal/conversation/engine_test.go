package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shop-assistant/internal/domain/catalog"
	"github.com/example/shop-assistant/internal/domain/coupon"
	"github.com/example/shop-assistant/internal/events"
)

type mockPublisher struct {
	published []events.OrderConfirmed
	err       error
}

func (m *mockPublisher) PublishOrderConfirmed(_ context.Context, event events.OrderConfirmed) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, event)
	return nil
}

func newTestEngine() *Engine {
	cat := catalog.New([]catalog.Product{
		{ID: 101, Name: "Camiseta azul", Price: 15.99},
		{ID: 402, Name: "Gorra negra", Price: 9.99},
		{ID: 500, Name: "Chaqueta acolchada", Price: 100.00},
	})
	book := coupon.NewBook([]coupon.Coupon{
		{Code: "VIP20", Kind: coupon.KindPercent, Value: 20},
		{Code: "SUPER5", Kind: coupon.KindFixed, Value: 5},
		{Code: "MIN100", Kind: coupon.KindPercent, Value: 20, MinTotal: 100},
	})
	return NewEngine(cat, book, nil)
}

func turn(t *testing.T, e *Engine, st *State, message string) string {
	t.Helper()
	e.HandleTurn(context.Background(), st, message)
	return st.BotMessage
}

func TestNewSession(t *testing.T) {
	e := newTestEngine()

	st := e.NewSession("sess-1")

	assert.Equal(t, "sess-1", st.SessionID)
	assert.Equal(t, ModeCatalog, st.Mode)
	assert.True(t, st.Cart.IsEmpty())
	require.Len(t, st.History, 1)
	assert.Equal(t, SpeakerBot, st.History[0].Speaker)
	assert.Equal(t, st.BotMessage, st.History[0].Text)
}

func TestHandleTurn_EmptyMessage(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")
	before := len(st.History)

	msg := turn(t, e, st, "   ")

	assert.Equal(t, DefaultReplies().EmptyMessage, msg)
	assert.Len(t, st.History, before+1, "only the bot reply joins the transcript")
	assert.Empty(t, st.LastUserMessage)
}

func TestHandleTurn_AppendsTranscript(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")
	before := len(st.History)

	turn(t, e, st, "hola")

	require.Len(t, st.History, before+2)
	assert.Equal(t, SpeakerUser, st.History[before].Speaker)
	assert.Equal(t, "hola", st.History[before].Text)
	assert.Equal(t, SpeakerBot, st.History[before+1].Speaker)
}

func TestCannedReplies(t *testing.T) {
	e := newTestEngine()
	replies := DefaultReplies()

	tests := []struct {
		message  string
		expected string
	}{
		{"hola", replies.Greeting},
		{"ayuda", replies.Help},
		{"¿qué tiempo hace hoy?", replies.Smalltalk},
		{"asdfghjkl", replies.Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			st := e.NewSession("sess-1")
			assert.Equal(t, tt.expected, turn(t, e, st, tt.message))
		})
	}
}

func TestShowCatalog(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")

	msg := turn(t, e, st, "muéstrame el catálogo")

	assert.Contains(t, msg, "Camiseta azul")
	assert.Contains(t, msg, "15.99")
	assert.Equal(t, ModeCatalog, st.Mode)
}

func TestAddToCart_ByID(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")

	msg := turn(t, e, st, "pon el producto 402")

	assert.Contains(t, msg, "He añadido 1 unidad(es) de Gorra negra")
	assert.Equal(t, ModeCartEdit, st.Mode)
	assert.Equal(t, 1, st.Cart.Items[402].Quantity)
	require.NotNil(t, st.Summary)
	assert.InDelta(t, 9.99, st.Summary.FinalTotal, 0.001)
}

func TestAddToCart_ByNameWithQuantityAccumulates(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")

	turn(t, e, st, "añade 2 unidades de la gorra negra")
	assert.Equal(t, 2, st.Cart.Items[402].Quantity)

	turn(t, e, st, "añade 3 del producto 402")
	assert.Equal(t, 5, st.Cart.Items[402].Quantity)
}

func TestAddToCart_UnknownProduct(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")

	msg := turn(t, e, st, "añade el unicornio dorado")

	assert.Contains(t, msg, "No encuentro ese producto")
	assert.True(t, st.Cart.IsEmpty())
	assert.Nil(t, st.Summary)
}

func TestRemoveFromCart(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")
	turn(t, e, st, "añade la gorra negra")

	msg := turn(t, e, st, "quita la gorra negra")

	assert.Contains(t, msg, "He eliminado Gorra negra")
	assert.True(t, st.Cart.IsEmpty())
	assert.Nil(t, st.Summary, "the summary disappears with the last item")
}

func TestRemoveFromCart_NotInCart(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")

	msg := turn(t, e, st, "quita la camiseta azul")

	assert.Contains(t, msg, "no está en tu carrito")
}

func TestRemoveFromCart_Unresolvable(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")

	msg := turn(t, e, st, "quita el unicornio dorado")

	assert.Contains(t, msg, "No entiendo qué producto")
}

func TestUpdateQuantity(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")
	turn(t, e, st, "añade la camiseta azul")

	msg := turn(t, e, st, "cambia la camiseta azul a 3")

	assert.Contains(t, msg, "He actualizado la cantidad de Camiseta azul a 3")
	assert.Equal(t, 3, st.Cart.Items[101].Quantity)
}

func TestUpdateQuantity_ReplacementPhrasing(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")
	turn(t, e, st, "pon el producto 402")

	turn(t, e, st, "pon 3 en lugar de 1 del producto 402")

	assert.Equal(t, 3, st.Cart.Items[402].Quantity)
}

func TestUpdateQuantity_MissingQuantity(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")
	turn(t, e, st, "añade la camiseta azul")

	msg := turn(t, e, st, "cambia la camiseta azul")

	assert.Contains(t, msg, "No he entendido la cantidad nueva")
	assert.Equal(t, 1, st.Cart.Items[101].Quantity, "cart stays untouched")
}

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")
	turn(t, e, st, "añade 2 unidades de la camiseta azul")

	msg := turn(t, e, st, "cambia la camiseta azul a 0")

	assert.Contains(t, msg, "He eliminado Camiseta azul")
	assert.True(t, st.Cart.IsEmpty())
}

func TestUpdateQuantity_NotInCart(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")

	msg := turn(t, e, st, "cambia la gorra negra a 2")

	assert.Contains(t, msg, "no está en tu carrito")
}

func TestShowCart_Empty(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")

	msg := turn(t, e, st, "¿qué llevo en el carrito?")

	assert.Contains(t, msg, "Tu carrito está vacío")
	assert.Equal(t, ModeCatalog, st.Mode)
}

func TestShowCart_WithItemsAndCoupon(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")
	turn(t, e, st, "añade 3 unidades del producto 500")
	turn(t, e, st, "aplica el cupón VIP20")

	msg := turn(t, e, st, "muéstrame el carrito")

	assert.Contains(t, msg, "Chaqueta acolchada x3")
	assert.Contains(t, msg, "Descuento por cantidades: -25.00 €")
	assert.Contains(t, msg, "Descuento por total: -27.50 €")
	assert.Contains(t, msg, "Cupón aplicado (VIP20): -49.50 €")
	assert.Contains(t, msg, "Total final: 198.00 €")
	assert.Equal(t, ModeCartEdit, st.Mode)
}

func TestApplyCoupon_NoCode(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")

	msg := turn(t, e, st, "¿tenéis algún descuento?")

	assert.Contains(t, msg, "Indícame el código del cupón")
}

func TestApplyCoupon_UnknownCode(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")

	msg := turn(t, e, st, "aplica el cupón NADA")

	assert.Contains(t, msg, "Ese cupón no es válido")
	assert.Nil(t, st.Cart.AppliedCoupon)
}

func TestApplyCoupon_BelowMinimum(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")
	turn(t, e, st, "añade la gorra negra")

	msg := turn(t, e, st, "aplica el cupón MIN100")

	assert.Contains(t, msg, "requiere un mínimo de 100.00 €")
	assert.Nil(t, st.Cart.AppliedCoupon)
}

func TestApplyCoupon_Replacement(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")
	turn(t, e, st, "añade la gorra negra")

	msg := turn(t, e, st, "aplica el cupón VIP20")
	assert.Contains(t, msg, "He aplicado el cupón VIP20")

	msg = turn(t, e, st, "aplica el cupón SUPER5")
	assert.Contains(t, msg, "sustituido el cupón anterior (VIP20)")
	assert.Equal(t, "SUPER5", st.Cart.AppliedCoupon.Code)

	// re-applying the current coupon is not a replacement
	msg = turn(t, e, st, "aplica el cupón super5")
	assert.NotContains(t, msg, "sustituido")
}

func TestCheckout_EmptyCart(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")

	msg := turn(t, e, st, "quiero finalizar la compra")

	assert.Contains(t, msg, "Tu carrito está vacío")
	assert.Equal(t, ModeCatalog, st.Mode)
}

func TestCheckout_StartsShipping(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")
	turn(t, e, st, "añade 2 unidades de la gorra negra")

	msg := turn(t, e, st, "quiero finalizar la compra")

	assert.Contains(t, msg, "Vamos a finalizar tu compra")
	assert.Contains(t, msg, "19.98 €")
	assert.Equal(t, ModeShipping, st.Mode)
	assert.Empty(t, st.ShippingName)
	assert.Empty(t, st.ShippingCity)
}

func TestShipping_CombinedNameAndCity(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")
	turn(t, e, st, "añade la gorra negra")
	turn(t, e, st, "quiero finalizar la compra")

	msg := turn(t, e, st, "Soy Manuel de Sevilla")

	assert.Equal(t, "Manuel", st.ShippingName)
	assert.Equal(t, "Sevilla", st.ShippingCity)
	assert.Equal(t, ModeConfirmation, st.Mode)
	assert.True(t, st.OrderConfirmed)
	assert.Contains(t, msg, "Pedido registrado correctamente")
	assert.Contains(t, msg, "Manuel")
	assert.Contains(t, msg, "Sevilla")
	assert.True(t, st.Cart.IsEmpty())
	assert.Nil(t, st.Summary)
	assert.InDelta(t, 9.99, st.LastOrderTotal, 0.001)
}

func TestShipping_SequentialCollection(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")
	turn(t, e, st, "añade la gorra negra")
	turn(t, e, st, "quiero finalizar la compra")

	msg := turn(t, e, st, "Ana")
	assert.Equal(t, "Ana", st.ShippingName)
	assert.Contains(t, msg, "¿En qué ciudad vives?")

	msg = turn(t, e, st, "12")
	assert.Contains(t, msg, "Necesito una ciudad válida")
	assert.Empty(t, st.ShippingCity)

	msg = turn(t, e, st, "Madrid")
	assert.Equal(t, "Madrid", st.ShippingCity)
	assert.True(t, st.OrderConfirmed)
	assert.Contains(t, msg, "Pedido registrado correctamente")
}

func TestShipping_RejectsNumericName(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")
	turn(t, e, st, "añade la gorra negra")
	turn(t, e, st, "quiero finalizar la compra")

	msg := turn(t, e, st, "12345")

	assert.Contains(t, msg, "Necesito un nombre válido")
	assert.Empty(t, st.ShippingName)
}

func TestShipping_ReasksMalformedCombinedPhrase(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")
	turn(t, e, st, "añade la gorra negra")
	turn(t, e, st, "quiero finalizar la compra")

	// looks like "soy X de Y" but X is not a usable name
	msg := turn(t, e, st, "soy 12 de Madrid")

	assert.Contains(t, msg, "en una sola frase")
	assert.Empty(t, st.ShippingName, "nothing stored from the rejected phrase")
	assert.Equal(t, ModeShipping, st.Mode)
}

func TestShipping_HonorsExitAndHelp(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")
	turn(t, e, st, "añade la gorra negra")
	turn(t, e, st, "quiero finalizar la compra")

	msg := turn(t, e, st, "ayuda")
	assert.Equal(t, DefaultReplies().Help, msg)
	assert.Equal(t, ModeShipping, st.Mode, "help does not leave shipping")

	turn(t, e, st, "salir")
	assert.Equal(t, ModeCatalog, st.Mode)
	assert.True(t, st.Cart.IsEmpty())
}

func TestConfirmation_IsIdempotent(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")
	turn(t, e, st, "añade la gorra negra")
	turn(t, e, st, "quiero finalizar la compra")
	turn(t, e, st, "Soy Manuel de Sevilla")
	confirmedTotal := st.LastOrderTotal

	msg := turn(t, e, st, "gracias, perfecto")

	assert.Contains(t, msg, "Tu pedido ya está confirmado")
	assert.Contains(t, msg, "Manuel")
	assert.Equal(t, confirmedTotal, st.LastOrderTotal)
	assert.True(t, st.Cart.IsEmpty())
	assert.Equal(t, ModeConfirmation, st.Mode)
}

func TestConfirmation_CatalogOverride(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")
	turn(t, e, st, "añade la gorra negra")
	turn(t, e, st, "quiero finalizar la compra")
	turn(t, e, st, "Soy Manuel de Sevilla")

	msg := turn(t, e, st, "muéstrame el catálogo")

	assert.Contains(t, msg, "Gorra negra")
	assert.Equal(t, ModeCatalog, st.Mode)
}

func TestExit_ClearsSession(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")
	turn(t, e, st, "añade 2 unidades de la gorra negra")
	turn(t, e, st, "aplica el cupón VIP20")

	msg := turn(t, e, st, "quiero salir")

	assert.Contains(t, msg, "He vaciado tu carrito")
	assert.True(t, st.Cart.IsEmpty())
	assert.Nil(t, st.Cart.AppliedCoupon)
	assert.Empty(t, st.LastUserMessage)
	assert.Equal(t, ModeCatalog, st.Mode)
	assert.Nil(t, st.Summary)
}

func TestOrderConfirmed_PublishesEvent(t *testing.T) {
	e := newTestEngine()
	pub := &mockPublisher{}
	e.SetPublisher(pub)
	st := e.NewSession("sess-1")
	turn(t, e, st, "añade 2 unidades de la gorra negra")
	turn(t, e, st, "quiero finalizar la compra")

	turn(t, e, st, "Soy Manuel de Sevilla")

	require.Len(t, pub.published, 1)
	event := pub.published[0]
	assert.NotEmpty(t, event.OrderID)
	assert.Equal(t, "sess-1", event.SessionID)
	assert.Equal(t, "Manuel", event.Name)
	assert.Equal(t, "Sevilla", event.City)
	assert.InDelta(t, 19.98, event.Total, 0.001)
	require.Len(t, event.Items, 1)
	assert.Equal(t, 402, event.Items[0].ProductID)
	assert.Equal(t, 2, event.Items[0].Quantity)
	assert.False(t, event.ConfirmedAt.IsZero())
}

func TestOrderConfirmed_PublishFailureDoesNotBreakTheTurn(t *testing.T) {
	e := newTestEngine()
	e.SetPublisher(&mockPublisher{err: errors.New("broker down")})
	st := e.NewSession("sess-1")
	turn(t, e, st, "añade la gorra negra")
	turn(t, e, st, "quiero finalizar la compra")

	msg := turn(t, e, st, "Soy Manuel de Sevilla")

	assert.True(t, st.OrderConfirmed)
	assert.Contains(t, msg, "Pedido registrado correctamente")
}

func TestReplaceData(t *testing.T) {
	e := newTestEngine()
	st := e.NewSession("sess-1")

	e.ReplaceData(
		catalog.New([]catalog.Product{{ID: 900, Name: "Bufanda roja", Price: 7.50}}),
		coupon.NewBook(nil),
	)

	turn(t, e, st, "añade el producto 900")
	assert.Equal(t, 1, st.Cart.Items[900].Quantity)

	msg := turn(t, e, st, "aplica el cupón VIP20")
	assert.Contains(t, msg, "Ese cupón no es válido")
}
