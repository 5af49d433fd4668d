package membership

// Period is a purchasable subscription length.
type Period struct {
	ID       string
	Label    string
	Price    int64
	Months   int
	Sessions int
}

// Catalog is the ordered list of periods offered by the club.
type Catalog []Period

// Lookup finds a period by exact identifier. The boolean is false for
// unknown or deleted periods; callers disable derived fields in that case.
func (c Catalog) Lookup(id string) (Period, bool) {
	for _, p := range c {
		if p.ID == id {
			return p, true
		}
	}
	return Period{}, false
}

// Term is the outcome of the period calculator.
type Term struct {
	End      Date
	Sessions int
	Known    bool
}

// CalculateTerm derives the end date and session quota for a subscription
// starting on start. Unknown periods produce an empty Term.
func CalculateTerm(start Date, catalog Catalog, periodID string) Term {
	p, ok := catalog.Lookup(periodID)
	if !ok {
		return Term{}
	}
	term := Term{Sessions: p.Sessions, Known: true}
	if !start.IsZero() && p.Months > 0 {
		term.End = start.AddMonths(p.Months)
	}
	return term
}

// DefaultPaymentAmount is the amount pre-filled for a period: its price.
func DefaultPaymentAmount(catalog Catalog, periodID string) (int64, bool) {
	p, ok := catalog.Lookup(periodID)
	if !ok {
		return 0, false
	}
	return p.Price, true
}
