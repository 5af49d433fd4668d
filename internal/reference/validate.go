package reference

import (
	"regexp"
	"strings"

	"github.com/Bu1gur/challenger-crm/internal/membership"
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

func ValidatePeriod(p membership.Period) error {
	if strings.TrimSpace(p.Label) == "" {
		return membership.Invalid(membership.KindMissingField, "period label is required")
	}
	if p.Price < 0 {
		return membership.Invalid(membership.KindPayment, "period price cannot be negative")
	}
	if p.Months < 1 {
		return membership.Invalid(membership.KindMissingField, "period must last at least one month")
	}
	if p.Sessions < 0 {
		return membership.Invalid(membership.KindMissingField, "session count cannot be negative")
	}
	return nil
}

// NormalizePaymentMethod trims bank names and drops banks from non-transfer kinds.
func NormalizePaymentMethod(m PaymentMethod) PaymentMethod {
	m.Label = strings.TrimSpace(m.Label)
	if m.Kind != KindTransfer {
		m.Banks = []string{}
		return m
	}
	banks := make([]string, 0, len(m.Banks))
	for _, b := range m.Banks {
		if b = strings.TrimSpace(b); b != "" {
			banks = append(banks, b)
		}
	}
	m.Banks = banks
	return m
}

func ValidatePaymentMethod(m PaymentMethod) error {
	if m.Label == "" {
		return membership.Invalid(membership.KindMissingField, "payment method label is required")
	}
	if !m.Kind.Valid() {
		return membership.Invalid(membership.KindMissingField, "payment type must be cash, card or transfer")
	}
	if m.Kind == KindTransfer && len(m.Banks) == 0 {
		return membership.Invalid(membership.KindMissingField, "a transfer needs at least one bank")
	}
	return nil
}

func ValidateGroup(g Group) error {
	if strings.TrimSpace(g.Name) == "" {
		return membership.Invalid(membership.KindMissingField, "group name is required")
	}
	for _, t := range []string{g.TimeStart, g.TimeEnd} {
		if t != "" && !clockPattern.MatchString(t) {
			return membership.Invalid(membership.KindMissingField, "time must be HH:MM, got %q", t)
		}
	}
	if g.TimeStart != "" && g.TimeEnd != "" && g.TimeEnd <= g.TimeStart {
		return membership.Invalid(membership.KindChronology, "group must end after it starts")
	}
	return nil
}

// NormalizeFreezePolicy trims reasons and removes blanks and repeats.
func NormalizeFreezePolicy(p membership.FreezePolicy) membership.FreezePolicy {
	seen := make(map[string]bool, len(p.Reasons))
	reasons := make([]string, 0, len(p.Reasons))
	for _, r := range p.Reasons {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		reasons = append(reasons, r)
	}
	p.Reasons = reasons
	return p
}

func ValidateFreezePolicy(p membership.FreezePolicy) error {
	if p.MaxDays < 0 {
		return membership.Invalid(membership.KindFreeze, "maximum freeze length cannot be negative")
	}
	return nil
}
