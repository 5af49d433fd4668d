package membership

import (
	"regexp"
	"strings"
)

// International number: plus sign followed by 11 or 12 digits (+996..., +7...).
var phonePattern = regexp.MustCompile(`^\+\d{11,12}$`)

func ValidPhone(phone string) bool {
	return phonePattern.MatchString(strings.TrimSpace(phone))
}

// ValidateClient runs the general field validators in submit order and
// returns the first failure. Freeze fields are checked by Submit.
func ValidateClient(c Client, catalog Catalog, today Date) error {
	if !ValidPhone(c.Phone) {
		return Invalid(KindMissingField, "enter a valid phone number (+996XXXXXXXXX or +7XXXXXXXXXX)")
	}
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Surname) == "" {
		return Invalid(KindMissingField, "name and surname are required")
	}
	if !c.StartDate.IsZero() && !c.EndDate.IsZero() && c.StartDate.After(c.EndDate) {
		return Invalid(KindChronology, "end date cannot be before start date")
	}
	if birth, err := ParseDate(c.BirthDate); err == nil && !birth.IsZero() && birth.After(today) {
		return Invalid(KindChronology, "birth date cannot be in the future")
	}

	var ceiling int64
	if p, ok := catalog.Lookup(c.PeriodID); ok {
		ceiling = p.Price
	}
	if err := ValidatePayment(c.PaymentAmount, c.HasDiscount, c.DiscountReason, ceiling); err != nil {
		return err
	}
	if strings.TrimSpace(c.PaymentMethod) == "" {
		return Invalid(KindMissingField, "select a payment method")
	}
	return nil
}

// Submit turns an edited client plus the freeze fields of the form into the
// record to persist. A frozen client must carry a valid freeze attempt; any
// other status clears the current freeze while keeping the history.
func Submit(draft Client, attempt *FreezeRecord, catalog Catalog, policy FreezePolicy, today Date) (Client, error) {
	c := Recompute(draft.clone(), catalog)
	if c.Status == "" {
		c.Status = StatusActive
	}
	if err := ValidateClient(c, catalog, today); err != nil {
		return Client{}, err
	}

	if c.Status == StatusFrozen {
		var a FreezeRecord
		if attempt != nil {
			a = *attempt
		}
		if err := ValidateFreeze(a, policy); err != nil {
			return Client{}, err
		}
		c.Freeze, c.FreezeHistory = ApplyFreeze(c.FreezeHistory, a)
	} else {
		c.Freeze = nil
	}
	if c.FreezeHistory == nil {
		c.FreezeHistory = []FreezeRecord{}
	}
	c.Visits = NewVisitLedger(c.Visits...)
	return c, nil
}
