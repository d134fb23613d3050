package conversation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Replies holds the canned assistant texts. Defaults live in code; a
// YAML file can override any subset of them.
type Replies struct {
	Welcome      string `yaml:"welcome"`
	Greeting     string `yaml:"greeting"`
	Help         string `yaml:"help"`
	Unknown      string `yaml:"unknown"`
	Smalltalk    string `yaml:"smalltalk"`
	EmptyMessage string `yaml:"empty_message"`
}

func DefaultReplies() *Replies {
	return &Replies{
		Welcome: "¡Hola! Bienvenido a nuestra tienda. Soy tu asistente de compras. " +
			"Pregúntame por nuestro catálogo o dime qué productos quieres que añada a tu carrito.",
		Greeting: "¡Hola! Soy tu asistente de compras. Puedo mostrarte el catálogo, añadir artículos al carrito, " +
			"aplicar cupones y ayudarte a finalizar la compra. Por ejemplo, puedes decirme " +
			"'muestra el catálogo' o 'añade 2 camisetas azules'.",
		Help: "Puedo ayudarte con estas cosas:\n" +
			"- Ver catálogo: 'muestra el catálogo', 'qué productos tenéis'\n" +
			"- Añadir producto: 'añade 2 camisetas azules', 'pon 1 producto 101'\n" +
			"- Quitar producto: 'quita la camiseta azul', 'elimina producto 101'\n" +
			"- Ver carrito: 'qué llevo en el carrito', 'mostrar carrito'\n" +
			"- Cambiar cantidades: 'cambia la camiseta azul a 3', 'pon 2 en lugar de 1'\n" +
			"- Aplicar cupón: 'aplica el cupón BIENVENIDA10'\n" +
			"- Finalizar compra: 'quiero finalizar la compra'\n" +
			"- Salir: 'salir', 'terminar'",
		Unknown: "No he entendido bien tu petición. Puedes pedirme que te muestre el catálogo, que añada o quite " +
			"productos, que cambie cantidades en tu carrito o que te muestre el total. " +
			"Si necesitas más detalles, escribe 'ayuda'.",
		Smalltalk: "Soy un asistente de tienda online. No sé el tiempo que hace, pero sí puedo ayudarte con tu compra. " +
			"Puedo mostrarte el catálogo, añadir o quitar productos, aplicar cupones y ayudarte a finalizar el pedido.",
		EmptyMessage: "No he recibido ningún mensaje. Escribe algún texto para continuar.",
	}
}

// LoadReplies reads a YAML overrides file on top of the defaults. Keys
// absent from the file keep their default text.
func LoadReplies(path string) (*Replies, error) {
	replies := DefaultReplies()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read replies file: %w", err)
	}
	if err := yaml.Unmarshal(data, replies); err != nil {
		return nil, fmt.Errorf("failed to parse replies file %s: %w", path, err)
	}

	return replies, nil
}
