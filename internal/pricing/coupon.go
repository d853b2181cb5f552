package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type CouponKind string

const (
	CouponPercent CouponKind = "percent"
	CouponFlat    CouponKind = "flat"
)

type Coupon struct {
	Code        string          `json:"code"`
	Kind        CouponKind      `json:"kind"`
	Value       decimal.Decimal `json:"value"`
	MinSubtotal decimal.Decimal `json:"min_subtotal"`
	Description string          `json:"description"`
}

// DiscountOn returns the amount the coupon takes off subtotal, before capping.
func (c Coupon) DiscountOn(subtotal decimal.Decimal) decimal.Decimal {
	switch c.Kind {
	case CouponPercent:
		return subtotal.Mul(c.Value).Div(hundred).Round(2)
	case CouponFlat:
		return c.Value
	default:
		return decimal.Zero
	}
}

var coupons = map[string]Coupon{
	"WELCOME10": {
		Code:        "WELCOME10",
		Kind:        CouponPercent,
		Value:       decimal.NewFromInt(10),
		Description: "10% off your order",
	},
	"FLAT50": {
		Code:        "FLAT50",
		Kind:        CouponFlat,
		Value:       decimal.NewFromInt(50),
		Description: "₹50 off your order",
	},
	"FESTIVE15": {
		Code:        "FESTIVE15",
		Kind:        CouponPercent,
		Value:       decimal.NewFromInt(15),
		MinSubtotal: decimal.NewFromInt(1500),
		Description: "15% off orders of ₹1500 or more",
	},
}

// Lookup finds a coupon by code, ignoring case and surrounding spaces.
func Lookup(code string) (Coupon, bool) {
	c, ok := coupons[normalize(code)]
	return c, ok
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CouponError is a rejection shown to the shopper. It never replaces a
// coupon that was already applied.
type CouponError struct {
	Code   string
	Reason string
}

func (e *CouponError) Error() string {
	return fmt.Sprintf("coupon %q rejected: %s", e.Code, e.Reason)
}

const (
	ReasonUnknown       = "unknown coupon code"
	ReasonMinNotReached = "minimum order value not reached"
)

// CouponState holds the coupon applied to a checkout.
type CouponState struct {
	applied *Coupon
}

func (s *CouponState) Apply(code string, subtotal decimal.Decimal) error {
	c, ok := Lookup(code)
	if !ok {
		return &CouponError{Code: normalize(code), Reason: ReasonUnknown}
	}

	if subtotal.LessThan(c.MinSubtotal) {
		return &CouponError{Code: c.Code, Reason: ReasonMinNotReached}
	}

	s.applied = &c
	return nil
}

func (s *CouponState) Remove() {
	s.applied = nil
}

// Applied returns the current coupon, or nil.
func (s *CouponState) Applied() *Coupon {
	return s.applied
}
