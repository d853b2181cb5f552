// internal/config/checkout.go
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/javajoker/storefront-backend/internal/pricing"
)

// Pricing parses the checkout amounts into a price calculator.
func (c *CheckoutConfig) Pricing() (pricing.Calculator, error) {
	fee, err := decimal.NewFromString(c.DeliveryFee)
	if err != nil {
		return pricing.Calculator{}, fmt.Errorf("invalid DELIVERY_FEE %q: %w", c.DeliveryFee, err)
	}

	threshold, err := decimal.NewFromString(c.FreeDeliveryThreshold)
	if err != nil {
		return pricing.Calculator{}, fmt.Errorf("invalid FREE_DELIVERY_THRESHOLD %q: %w", c.FreeDeliveryThreshold, err)
	}

	tax, err := decimal.NewFromString(c.TaxPercent)
	if err != nil {
		return pricing.Calculator{}, fmt.Errorf("invalid TAX_PERCENT %q: %w", c.TaxPercent, err)
	}

	if fee.IsNegative() || threshold.IsNegative() || tax.IsNegative() {
		return pricing.Calculator{}, fmt.Errorf("checkout amounts must not be negative")
	}

	return pricing.Calculator{
		DeliveryFee:           fee,
		FreeDeliveryThreshold: threshold,
		TaxPercent:            tax,
	}, nil
}

func (c *CheckoutConfig) GuestCartTTL() time.Duration {
	return time.Duration(c.GuestCartTTLHours) * time.Hour
}
