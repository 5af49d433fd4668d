package membership

import "strings"

// RenewalRequest is the renewal form. A zero StartDate means "continue from
// the current end date, or today when there is none".
type RenewalRequest struct {
	PeriodID       string
	StartDate      Date
	PaymentMethod  string
	Amount         *int64
	HasDiscount    bool
	DiscountReason string
}

// RenewalQuote holds the values the renewal form shows while it is open.
type RenewalQuote struct {
	Period    Period
	Known     bool
	StartDate Date
	EndDate   Date
	Amount    int64
}

// QuoteRenewal re-derives the end date and the payment amount for the
// current state of the renewal form. Without a discount the amount is the
// period price; with one it is whatever the operator typed.
func QuoteRenewal(c Client, req RenewalRequest, catalog Catalog, today Date) RenewalQuote {
	start := req.StartDate
	if start.IsZero() {
		start = c.EndDate
	}
	if start.IsZero() {
		start = today
	}

	q := RenewalQuote{StartDate: start}
	p, ok := catalog.Lookup(req.PeriodID)
	if !ok {
		return q
	}
	q.Period, q.Known = p, true
	q.EndDate = CalculateTerm(start, catalog, p.ID).End
	q.Amount = p.Price
	if req.HasDiscount {
		q.Amount = 0
		if req.Amount != nil {
			q.Amount = *req.Amount
		}
	}
	return q
}

// Extend starts a new subscription cycle for c. The input client is not
// modified; the renewed copy is returned.
func Extend(c Client, req RenewalRequest, catalog Catalog, today Date) (Client, error) {
	q := QuoteRenewal(c, req, catalog, today)
	if !q.Known {
		return Client{}, Invalid(KindUnresolvedRef, "select a subscription period")
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return Client{}, Invalid(KindMissingField, "select a payment method")
	}
	amount := q.Amount
	if err := ValidatePayment(&amount, req.HasDiscount, req.DiscountReason, q.Period.Price); err != nil {
		return Client{}, err
	}
	if !q.EndDate.IsZero() && q.StartDate.After(q.EndDate) {
		return Client{}, Invalid(KindChronology, "end date cannot be before start date")
	}

	out := c.clone()
	out.PeriodID = q.Period.ID
	out.StartDate = q.StartDate
	out.EndDate = q.EndDate
	sessions := q.Period.Sessions
	out.TotalSessions = &sessions
	out.Visits = VisitLedger{}
	out.Status = StatusActive
	out.Freeze = nil
	if out.FreezeHistory == nil {
		out.FreezeHistory = []FreezeRecord{}
	}

	out.PaymentAmount = &amount
	out.PaymentMethod = req.PaymentMethod
	out.HasDiscount = req.HasDiscount
	out.DiscountReason = ""
	entry := PaymentEntry{
		Date:   today,
		Amount: amount,
		Method: req.PaymentMethod,
		Period: q.Period.Label,
	}
	if req.HasDiscount {
		out.DiscountReason = strings.TrimSpace(req.DiscountReason)
		entry.Comment = out.DiscountReason
	}
	out.PaymentHistory = append(out.PaymentHistory, entry)
	out.Paid = IsPaid(out, catalog)
	return out, nil
}
