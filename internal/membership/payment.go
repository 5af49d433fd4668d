package membership

import "strings"

// IsPaid decides whether the client's declared payment covers the period.
func IsPaid(c Client, catalog Catalog) bool {
	p, ok := catalog.Lookup(c.PeriodID)
	if !ok {
		return false
	}
	if c.HasDiscount {
		return c.PaymentAmount != nil && *c.PaymentAmount > 0 && strings.TrimSpace(c.DiscountReason) != ""
	}
	return c.PaymentAmount != nil && *c.PaymentAmount >= p.Price
}

// ValidatePayment checks a payment amount against the period price. A zero
// ceiling means the period is unknown and no cap applies.
func ValidatePayment(amount *int64, hasDiscount bool, discountReason string, ceiling int64) error {
	var v int64
	if amount != nil {
		v = *amount
	}
	if v < 0 {
		return Invalid(KindPayment, "payment amount cannot be negative")
	}
	if hasDiscount {
		if strings.TrimSpace(discountReason) == "" {
			return Invalid(KindPayment, "discount reason is required")
		}
		if v <= 0 {
			return Invalid(KindPayment, "discounted payment amount must be greater than 0")
		}
		return nil
	}
	if ceiling > 0 && v > ceiling {
		return Invalid(KindPayment, "payment amount cannot exceed %d for the selected period", ceiling)
	}
	return nil
}
