package intent

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Type classifies the purpose of a user message.
type Type string

const (
	ShowCatalog    Type = "show_catalog"
	ShowCart       Type = "show_cart"
	AddToCart      Type = "add_to_cart"
	RemoveFromCart Type = "remove_from_cart"
	UpdateQuantity Type = "update_quantity"
	Checkout       Type = "checkout"
	ApplyCoupon    Type = "apply_coupon"
	Exit           Type = "exit"
	Smalltalk      Type = "smalltalk"
	Help           Type = "help"
	Greeting       Type = "greeting"
	Unknown        Type = "unknown"
)

// Parsed is the classification of a single message plus the slots
// extracted from it. Produced per message; never stored.
type Parsed struct {
	Intent      Type
	ProductID   int    // 0 when no id was found
	ProductName string // raw text kept as a fuzzy name fallback
	Quantity    *int   // nil when no usable quantity was found
	CouponCode  string
}

// Keyword tables hold normalized (lowercase, accent-stripped) forms, so
// "añade" is listed as "anade".
var (
	exitKeywords     = []string{"salir", "terminar", "cerrar", "adios", "hasta luego"}
	greetingKeywords = []string{"hola", "buenas", "buenos dias", "buenas tardes", "buenas noches", "hey", "que tal", "que hay"}
	helpKeywords     = []string{"ayuda", "como funciona", "que puedo hacer", "que sabes hacer", "como te uso", "instrucciones", "ayudame"}
	cartKeywords     = []string{"carrito", "carro", "cesta", "basket"}
	couponKeywords   = []string{"cupon", "cupones", "descuento", "promo", "promocion"}
	checkoutKeywords = []string{"finalizar", "pagar", "tramitar pedido", "terminar compra", "confirmar compra", "realizar el pago"}
	// "en lugar de" / "en vez de" mark a replacement phrasing ("pon 3 en
	// lugar de 1"), which is an update even when the verb looks like an add.
	updateKeywords   = []string{"cambia", "cambiar", "ajusta", "ajustar", "modifica", "modificar", "actualiza", "actualizar", "deja", "en lugar de", "en vez de"}
	addKeywords      = []string{"anade", "agrega", "anadir", "meter", "mete", "pon", "incluye", "sumar", "compra", "comprar", "agregame", "echame"}
	removeKeywords   = []string{"quita", "quitar", "elimina", "borra", "saca", "retira", "eliminalo", "quitame"}
	catalogKeywords  = []string{"catalogo", "productos", "tienda", "que teneis", "que tienes", "mostrar catalogo", "ver catalogo", "ver productos", "que puedo comprar"}
	smalltalkKeywords = []string{"tiempo", "clima"}
)

var (
	productIDRe    = regexp.MustCompile(`(?i)(?:producto|id|articulo|artículo)\s+(?:n[ºo°]\s*)?(?:del\s+|de\s+)?(\d+)`)
	standaloneIDRe = regexp.MustCompile(`(?i)\bdel\s+(\d{3})\b`)
	intRe          = regexp.MustCompile(`\d+`)
	unitsRe        = regexp.MustCompile(`(?i)\b(\d+)\s*(?:unidades|unidad|uds|ud)\b`)
	timesRe        = regexp.MustCompile(`(?i)\bx\s*(\d+)\b`)
	leadingIntRe   = regexp.MustCompile(`^\s*(\d+)\b`)
	couponCodeRe   = regexp.MustCompile(`(?i)(?:cupon|cupón|descuento|promo)\s+([A-Za-z0-9_-]+)`)
)

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases the text and strips diacritics. Only keyword
// matching uses the normalized form; slot regexes run on the raw text.
func Normalize(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	out, _, err := transform.String(deaccent, lowered)
	if err != nil {
		return lowered
	}
	return out
}

type rule struct {
	keywords []string
	build    func(raw, text string) Parsed
}

// The cascade order is the disambiguation mechanism: keyword sets
// overlap, and the first matching rule wins. Update sits before add so
// "cambia ... a 3" is not read as an add; cart-view sits before coupon
// and catalog so "carrito" phrases are not swallowed by them.
var cascade = []rule{
	{exitKeywords, func(raw, text string) Parsed { return Parsed{Intent: Exit} }},
	{greetingKeywords, func(raw, text string) Parsed { return Parsed{Intent: Greeting} }},
	{helpKeywords, func(raw, text string) Parsed { return Parsed{Intent: Help} }},
	{cartKeywords, func(raw, text string) Parsed { return Parsed{Intent: ShowCart} }},
	{couponKeywords, func(raw, text string) Parsed {
		return Parsed{Intent: ApplyCoupon, CouponCode: extractCouponCode(raw)}
	}},
	{checkoutKeywords, func(raw, text string) Parsed { return Parsed{Intent: Checkout} }},
	{updateKeywords, func(raw, text string) Parsed {
		id := extractProductID(raw)
		return Parsed{
			Intent:      UpdateQuantity,
			ProductID:   id,
			ProductName: raw,
			Quantity:    extractUpdateQuantity(raw, text, id),
		}
	}},
	{addKeywords, func(raw, text string) Parsed {
		id := extractProductID(raw)
		return Parsed{
			Intent:      AddToCart,
			ProductID:   id,
			ProductName: raw,
			Quantity:    extractAddQuantity(raw, id),
		}
	}},
	{removeKeywords, func(raw, text string) Parsed {
		return Parsed{Intent: RemoveFromCart, ProductID: extractProductID(raw), ProductName: raw}
	}},
	{catalogKeywords, func(raw, text string) Parsed { return Parsed{Intent: ShowCatalog} }},
	{smalltalkKeywords, func(raw, text string) Parsed { return Parsed{Intent: Smalltalk} }},
}

// Parse maps free text to an intent plus slots. It never fails:
// unmatched input yields Unknown.
func Parse(message string) Parsed {
	raw := strings.TrimSpace(message)
	text := Normalize(raw)

	for _, r := range cascade {
		if containsAny(text, r.keywords) {
			return r.build(raw, text)
		}
	}
	return Parsed{Intent: Unknown}
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// extractProductID finds patterns like "producto 103", "id 103",
// "artículo nº 103", or a bare "del 103".
func extractProductID(raw string) int {
	if m := productIDRe.FindStringSubmatch(raw); m != nil {
		return atoi(m[1])
	}
	if m := standaloneIDRe.FindStringSubmatch(raw); m != nil {
		return atoi(m[1])
	}
	return 0
}

// extractAddQuantity picks the quantity for an add: an explicit unit
// count ("3 unidades"), a multiplier ("x3"), a leading number, or the
// first number anywhere. A result equal to the already-extracted
// product id is discarded so "pon el producto 402" does not become
// quantity 402.
func extractAddQuantity(raw string, productID int) *int {
	var qty *int
	switch {
	case unitsRe.MatchString(raw):
		qty = submatchInt(unitsRe, raw)
	case timesRe.MatchString(raw):
		qty = submatchInt(timesRe, raw)
	case leadingIntRe.MatchString(raw):
		qty = submatchInt(leadingIntRe, raw)
	default:
		if m := intRe.FindString(raw); m != "" {
			n := atoi(m)
			qty = &n
		}
	}
	if qty != nil && productID != 0 && *qty == productID {
		return nil
	}
	return qty
}

// extractUpdateQuantity picks the new quantity for an update. A
// replacement phrasing ("pon 3 en lugar de 1") means the first number
// is the new value; otherwise the last number distinct from the product
// id wins (or simply the last number when no id was found).
func extractUpdateQuantity(raw, text string, productID int) *int {
	nums := intRe.FindAllString(raw, -1)
	if len(nums) == 0 {
		return nil
	}

	if strings.Contains(text, "en lugar de") || strings.Contains(text, "en vez de") {
		n := atoi(nums[0])
		return &n
	}

	if productID != 0 {
		for i := len(nums) - 1; i >= 0; i-- {
			if n := atoi(nums[i]); n != productID {
				return &n
			}
		}
		return nil
	}

	n := atoi(nums[len(nums)-1])
	return &n
}

// extractCouponCode returns the token following a coupon keyword, or ""
// when the phrase carries no code; downstream prompts for one.
func extractCouponCode(raw string) string {
	if m := couponCodeRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return ""
}

func submatchInt(re *regexp.Regexp, s string) *int {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	n := atoi(m[1])
	return &n
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
