// Package pricing computes checkout totals and validates coupon codes.
package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Calculator turns a cart subtotal into a priced quote. Amounts are in the
// store currency's major unit.
type Calculator struct {
	DeliveryFee           decimal.Decimal
	FreeDeliveryThreshold decimal.Decimal
	TaxPercent            decimal.Decimal
}

type Quote struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
	CouponCode  string          `json:"coupon_code,omitempty"`
}

// Quote prices subtotal with an optional coupon. Delivery is free once the
// subtotal reaches the threshold. The total never goes below zero.
func (c Calculator) Quote(subtotal decimal.Decimal, coupon *Coupon) Quote {
	q := Quote{
		Subtotal:    subtotal,
		Discount:    decimal.Zero,
		DeliveryFee: c.DeliveryFee,
		Tax:         subtotal.Mul(c.TaxPercent).Div(hundred).Round(2),
	}

	if subtotal.GreaterThanOrEqual(c.FreeDeliveryThreshold) || subtotal.IsZero() {
		q.DeliveryFee = decimal.Zero
	}

	if coupon != nil {
		q.Discount = decimal.Min(coupon.DiscountOn(subtotal), subtotal)
		q.CouponCode = coupon.Code
	}

	q.Total = subtotal.Add(q.DeliveryFee).Add(q.Tax).Sub(q.Discount)
	if q.Total.IsNegative() {
		q.Total = decimal.Zero
	}
	return q
}
