package email

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/shop-assistant/internal/events"
)

func TestBuildOrderConfirmationBody(t *testing.T) {
	body := BuildOrderConfirmationBody(events.OrderConfirmed{
		OrderID: "ord-1",
		Name:    "Manuel",
		City:    "Sevilla",
		Total:   19.98,
		Items: []events.OrderLine{
			{ProductID: 402, Name: "Gorra negra", Quantity: 2, UnitPrice: 9.99},
		},
	})

	assert.Contains(t, body, "Pedido ord-1 registrado correctamente.")
	assert.Contains(t, body, "Envío a nombre de Manuel en Sevilla.")
	assert.Contains(t, body, "Gorra negra x2 · 9.99 €/ud · 19.98 €")
	assert.Contains(t, body, "Total pagado: 19.98 €")
}

func TestBuildOrderConfirmationBody_NoItems(t *testing.T) {
	body := BuildOrderConfirmationBody(events.OrderConfirmed{
		OrderID: "ord-2",
		Name:    "Ana",
		City:    "Madrid",
	})

	assert.NotContains(t, body, "Artículos:")
	assert.Contains(t, body, "Total pagado: 0.00 €")
}
