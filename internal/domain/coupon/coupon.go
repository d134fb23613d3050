package coupon

import "strings"

// Kind enumerates the supported discount kinds.
type Kind string

const (
	KindPercent Kind = "percent"
	KindFixed   Kind = "fixed"
)

// Coupon is an externally issued discount code. Codes are matched
// case-insensitively; the struct is immutable once loaded.
type Coupon struct {
	Code     string  `json:"code"`
	Kind     Kind    `json:"type"`
	Value    float64 `json:"value"`
	MinTotal float64 `json:"min_total"`
}

// Book holds the coupon list loaded at startup.
type Book struct {
	coupons []Coupon
}

func NewBook(coupons []Coupon) *Book {
	return &Book{coupons: coupons}
}

// Coupons returns the loaded coupons in load order.
func (b *Book) Coupons() []Coupon {
	return b.coupons
}

// FindByCode looks up a coupon by its code, ignoring case.
func (b *Book) FindByCode(code string) (Coupon, bool) {
	for _, c := range b.coupons {
		if strings.EqualFold(c.Code, code) {
			return c, true
		}
	}
	return Coupon{}, false
}
