package conversation

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/shop-assistant/internal/conversation/intent"
	"github.com/example/shop-assistant/internal/domain/catalog"
	"github.com/example/shop-assistant/internal/domain/pricing"
	"github.com/example/shop-assistant/internal/events"
)

func (e *Engine) handleCatalog(_ context.Context, st *State, _ intent.Parsed) {
	cat, _ := e.data()

	var b strings.Builder
	b.WriteString("Estos son algunos de nuestros productos, ¿deseas añadir alguno?\n")
	for _, p := range cat.Products() {
		fmt.Fprintf(&b, "  %d · %s · %.2f €\n", p.ID, p.Name, p.Price)
	}

	st.BotMessage = strings.TrimRight(b.String(), "\n")
	st.Mode = ModeCatalog
}

// resolveProduct finds the product an intent refers to, by id first and
// then by approximate name match over the raw text.
func (e *Engine) resolveProduct(p intent.Parsed) (catalog.Product, bool) {
	cat, _ := e.data()

	if p.ProductID != 0 {
		if product, ok := cat.FindByID(p.ProductID); ok {
			return product, true
		}
	}
	if p.ProductName != "" {
		if product, ok := cat.FindByName(p.ProductName); ok {
			return product, true
		}
	}
	return catalog.Product{}, false
}

func (e *Engine) handleAddToCart(_ context.Context, st *State, p intent.Parsed) {
	product, ok := e.resolveProduct(p)
	if !ok {
		st.BotMessage = "No encuentro ese producto. Puedes usar el id (por ejemplo 101) " +
			"o pedirme que te muestre el catálogo."
		return
	}

	quantity := 1
	if p.Quantity != nil {
		quantity = *p.Quantity
	}
	if quantity <= 0 {
		st.BotMessage = "No puedo añadir cantidades negativas o iguales a cero; " +
			"la cantidad debe ser al menos 1."
		return
	}

	if err := st.Cart.AddItem(product, quantity); err != nil {
		st.BotMessage = "No he podido añadir ese producto al carrito."
		return
	}

	st.Mode = ModeCartEdit
	st.BotMessage = fmt.Sprintf("He añadido %d unidad(es) de %s a tu carrito.", quantity, product.Name)
}

func (e *Engine) handleRemoveFromCart(_ context.Context, st *State, p intent.Parsed) {
	product, ok := e.resolveProduct(p)
	if !ok {
		st.BotMessage = "No entiendo qué producto quieres eliminar del carrito. " +
			"Dímelo por su nombre o su id."
		return
	}

	if !st.Cart.Contains(product.ID) {
		st.BotMessage = fmt.Sprintf("%s no está en tu carrito. "+
			"Puedes pedirme que te muestre el carrito para revisarlo.", product.Name)
		return
	}

	st.Cart.RemoveItem(product.ID)
	st.Mode = ModeCartEdit
	st.BotMessage = fmt.Sprintf("He eliminado %s de tu carrito.", product.Name)
}

func (e *Engine) handleUpdateQuantity(_ context.Context, st *State, p intent.Parsed) {
	if p.Quantity == nil {
		st.BotMessage = "No he entendido la cantidad nueva. Dime, por ejemplo: " +
			"'pon 3 camisetas azules' o 'cambia la camiseta azul a 2'."
		return
	}

	product, ok := e.resolveProduct(p)
	if !ok {
		st.BotMessage = "No he podido identificar el producto cuya cantidad quieres cambiar."
		return
	}

	if !st.Cart.Contains(product.ID) {
		st.BotMessage = fmt.Sprintf("%s no está en tu carrito. "+
			"Primero añádelo y luego podré cambiar la cantidad.", product.Name)
		return
	}

	// A non-positive new quantity means the user wants the line gone.
	if *p.Quantity <= 0 {
		st.Cart.RemoveItem(product.ID)
		st.Mode = ModeCartEdit
		st.BotMessage = fmt.Sprintf("He eliminado %s del carrito porque la cantidad nueva es %d.",
			product.Name, *p.Quantity)
		return
	}

	if err := st.Cart.SetQuantity(product.ID, *p.Quantity); err != nil {
		st.BotMessage = "No he podido actualizar la cantidad de ese producto."
		return
	}

	st.Mode = ModeCartEdit
	st.BotMessage = fmt.Sprintf("He actualizado la cantidad de %s a %d unidad(es).",
		product.Name, *p.Quantity)
}

func (e *Engine) handleShowCart(_ context.Context, st *State, _ intent.Parsed) {
	if st.Cart.IsEmpty() {
		st.BotMessage = "Tu carrito está vacío. Si quieres, puedo mostrarte el catálogo " +
			"para que añadas productos."
		return
	}

	summary := pricing.ComputeTotals(st.Cart)
	st.Summary = &summary

	var b strings.Builder
	b.WriteString("Hasta ahora esto es lo que llevas añadido al carrito:\n")
	for _, item := range st.Cart.Items {
		lineTotal := item.Product.Price * float64(item.Quantity)
		fmt.Fprintf(&b, "  %s x%d · %.2f €/ud · %.2f €\n",
			item.Product.Name, item.Quantity, item.Product.Price, lineTotal)
	}
	fmt.Fprintf(&b, "Descuento por cantidades: -%.2f €\n", summary.LineDiscounts)
	fmt.Fprintf(&b, "Descuento por total: -%.2f €\n", summary.CartDiscount)
	if st.Cart.AppliedCoupon != nil {
		fmt.Fprintf(&b, "Cupón aplicado (%s): -%.2f €\n", st.Cart.AppliedCoupon.Code, summary.CouponDiscount)
	}
	fmt.Fprintf(&b, "Total final: %.2f €", summary.FinalTotal)

	st.BotMessage = b.String()
	st.Mode = ModeCartEdit
}

func (e *Engine) handleCheckout(_ context.Context, st *State, _ intent.Parsed) {
	if st.Cart.IsEmpty() {
		st.BotMessage = "Tu carrito está vacío. Añade algún producto antes de finalizar."
		st.Mode = ModeCatalog
		return
	}

	summary := pricing.ComputeTotals(st.Cart)
	st.Summary = &summary

	st.BotMessage = fmt.Sprintf("Vamos a finalizar tu compra. El total es %.2f €. "+
		"Puedes decirme tu nombre y ciudad de envío en una sola frase, por ejemplo: "+
		"'Soy Ana de Madrid', o bien decírmelo por partes empezando por tu nombre.",
		summary.FinalTotal)

	// Re-entering checkout always restarts shipping collection.
	st.Mode = ModeShipping
	st.ShippingName = ""
	st.ShippingCity = ""
}

func (e *Engine) handleShipping(ctx context.Context, st *State, p intent.Parsed) {
	text := strings.TrimSpace(st.LastUserMessage)

	// Combined attempt: name and city in one sentence. Only worth
	// trying while at least one of the two is still missing.
	if st.ShippingName == "" || st.ShippingCity == "" {
		if name, city, ok := splitNameCity(text); ok &&
			isValidHumanField(name) && isValidHumanField(city) {
			st.ShippingName = name
			st.ShippingCity = city
			st.Mode = ModeConfirmation
			e.handleConfirmation(ctx, st, p)
			return
		}
	}

	// Sequential collection: name first, then city.
	if st.ShippingName == "" {
		if !isValidHumanField(text) {
			st.BotMessage = "Necesito un nombre válido (por ejemplo: Ana). ¿Cuál es tu nombre?"
			return
		}
		// A leftover "soy X de Y" that the combined patterns rejected
		// should be re-asked, not stored partially as a name.
		cleaned := strings.TrimSpace(shippingPrefixRe.ReplaceAllString(text, ""))
		if strings.Contains(strings.ToLower(cleaned), " de ") {
			st.BotMessage = "Puedo recogerlo en una sola frase (por ejemplo: 'Soy Ana de Madrid') " +
				"o por partes. Para hacerlo por partes, dime solo tu nombre."
			return
		}
		st.ShippingName = cleaned
		st.BotMessage = "Perfecto. ¿En qué ciudad vives?"
		return
	}

	if st.ShippingCity == "" {
		if !isValidHumanField(text) {
			st.BotMessage = "Necesito una ciudad válida (por ejemplo: Madrid). ¿En qué ciudad vives?"
			return
		}
		st.ShippingCity = text
		st.Mode = ModeConfirmation
		e.handleConfirmation(ctx, st, p)
		return
	}
}

func (e *Engine) handleApplyCoupon(_ context.Context, st *State, p intent.Parsed) {
	if p.CouponCode == "" {
		st.BotMessage = "Indícame el código del cupón (por ejemplo: VIP20)."
		return
	}

	_, book := e.data()
	cp, ok := book.FindByCode(p.CouponCode)
	if !ok {
		st.BotMessage = "Ese cupón no es válido. Si quieres, puedo mostrarte el catálogo o tu carrito."
		return
	}

	currentTotal := pricing.ComputeTotals(st.Cart).FinalTotal
	if currentTotal < cp.MinTotal {
		st.BotMessage = fmt.Sprintf("El cupón %s requiere un mínimo de %.2f €. "+
			"Ahora tu total es %.2f €.", cp.Code, cp.MinTotal, currentTotal)
		return
	}

	previous := st.Cart.ApplyCoupon(cp)
	if previous != nil && !strings.EqualFold(previous.Code, cp.Code) {
		st.BotMessage = fmt.Sprintf("He aplicado el cupón %s y he sustituido el cupón anterior (%s).",
			cp.Code, previous.Code)
	} else {
		st.BotMessage = fmt.Sprintf("He aplicado el cupón %s a tu carrito.", cp.Code)
	}
	st.Mode = ModeCartEdit
}

// handleConfirmation closes the order exactly once. The first entry
// snapshots the totals, publishes the order event, and clears the cart;
// every later entry only re-renders the stored snapshot.
func (e *Engine) handleConfirmation(ctx context.Context, st *State, _ intent.Parsed) {
	if !st.OrderConfirmed {
		var total float64
		if !st.Cart.IsEmpty() {
			total = pricing.ComputeTotals(st.Cart).FinalTotal
		}

		name := st.ShippingName
		if name == "" {
			name = "cliente"
		}
		city := st.ShippingCity
		if city == "" {
			city = "tu ciudad"
		}

		st.LastOrderName = name
		st.LastOrderCity = city
		st.LastOrderTotal = total
		st.OrderConfirmed = true

		e.publishOrderConfirmed(ctx, st, total)

		st.Cart.Clear()
		st.Summary = nil

		st.BotMessage = fmt.Sprintf("Pedido registrado correctamente. "+
			"Envío a nombre de %s en %s. Total pagado: %.2f €. "+
			"Puedes seguir comprando (pídeme el catálogo) o escribir 'salir' para terminar.",
			name, city, total)
		st.Mode = ModeConfirmation
		return
	}

	st.BotMessage = fmt.Sprintf("Tu pedido ya está confirmado. Último envío: %s en %s. "+
		"Total del último pedido: %.2f €. Si quieres, puedo mostrarte el catálogo "+
		"para seguir comprando o puedes escribir 'salir'.",
		st.LastOrderName, st.LastOrderCity, st.LastOrderTotal)
	st.Mode = ModeConfirmation
}

// publishOrderConfirmed emits the order event while the cart still
// holds the lines. Failures are logged, never surfaced to the user.
func (e *Engine) publishOrderConfirmed(ctx context.Context, st *State, total float64) {
	if e.publisher == nil {
		return
	}

	items := make([]events.OrderLine, 0, len(st.Cart.Items))
	for _, item := range st.Cart.Items {
		items = append(items, events.OrderLine{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.Product.Price,
		})
	}

	event := events.OrderConfirmed{
		OrderID:     uuid.New().String(),
		SessionID:   st.SessionID,
		Name:        st.LastOrderName,
		City:        st.LastOrderCity,
		Total:       total,
		Items:       items,
		ConfirmedAt: time.Now(),
	}

	if err := e.publisher.PublishOrderConfirmed(ctx, event); err != nil {
		log.Printf("[Conversation] Failed to publish order %s: %v", event.OrderID, err)
	}
}

func (e *Engine) handleSmalltalk(_ context.Context, st *State, _ intent.Parsed) {
	st.BotMessage = e.replies.Smalltalk
}

func (e *Engine) handleGreeting(_ context.Context, st *State, _ intent.Parsed) {
	st.BotMessage = e.replies.Greeting
}

func (e *Engine) handleHelp(_ context.Context, st *State, _ intent.Parsed) {
	st.BotMessage = e.replies.Help
}

func (e *Engine) handleUnknown(_ context.Context, st *State, _ intent.Parsed) {
	st.BotMessage = e.replies.Unknown
}

// handleExit is the only way back to catalog mode from a non-catalog
// mode without going through checkout.
func (e *Engine) handleExit(_ context.Context, st *State, _ intent.Parsed) {
	st.Cart.Clear()
	st.ShippingName = ""
	st.ShippingCity = ""
	st.LastUserMessage = ""
	st.Mode = ModeCatalog
	st.BotMessage = "Sesión finalizada. He vaciado tu carrito. Gracias por tu visita."
}
