package membership

// VisitLedger is the set of days a client attended. Order carries no meaning.
type VisitLedger []Date

// NewVisitLedger builds a ledger, dropping duplicate and unset dates.
func NewVisitLedger(dates ...Date) VisitLedger {
	l := VisitLedger{}
	for _, d := range dates {
		if d.IsZero() {
			continue
		}
		l = l.Add(d)
	}
	return l
}

func (l VisitLedger) Contains(d Date) bool {
	for _, v := range l {
		if v.Equal(d) {
			return true
		}
	}
	return false
}

// Add returns the ledger with d recorded. Adding a recorded day is a no-op.
func (l VisitLedger) Add(d Date) VisitLedger {
	if l.Contains(d) {
		return l
	}
	out := make(VisitLedger, len(l), len(l)+1)
	copy(out, l)
	return append(out, d)
}

// Remove returns the ledger without any occurrence of d.
func (l VisitLedger) Remove(d Date) VisitLedger {
	out := make(VisitLedger, 0, len(l))
	for _, v := range l {
		if !v.Equal(d) {
			out = append(out, v)
		}
	}
	return out
}

func (l VisitLedger) Strings() []string {
	out := make([]string, len(l))
	for i, d := range l {
		out[i] = d.String()
	}
	return out
}

// RemainingSessions is quota minus recorded visits. The quota comes from the
// period when it resolves, otherwise from the stored total. The result is not
// clamped: attending more than the quota yields a negative value.
func RemainingSessions(catalog Catalog, periodID string, totalSessions *int, visits VisitLedger) (int, bool) {
	if p, ok := catalog.Lookup(periodID); ok {
		return p.Sessions - len(visits), true
	}
	if totalSessions != nil {
		return *totalSessions - len(visits), true
	}
	return 0, false
}
