package email

import (
	"fmt"
	"strings"

	"github.com/example/shop-assistant/internal/events"
)

// BuildOrderConfirmationBody renders the plain-text body for an order
// confirmation email.
func BuildOrderConfirmationBody(order events.OrderConfirmed) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Pedido %s registrado correctamente.\n\n", order.OrderID)
	fmt.Fprintf(&b, "Envío a nombre de %s en %s.\n\n", order.Name, order.City)

	if len(order.Items) > 0 {
		b.WriteString("Artículos:\n")
		for _, item := range order.Items {
			fmt.Fprintf(&b, "  %s x%d · %.2f €/ud · %.2f €\n",
				item.Name, item.Quantity, item.UnitPrice, item.UnitPrice*float64(item.Quantity))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Total pagado: %.2f €\n\n", order.Total)
	b.WriteString("Gracias por tu compra.\n")

	return b.String()
}
