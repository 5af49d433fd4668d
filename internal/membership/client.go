package membership

import "strings"

type Status string

const (
	StatusActive    Status = "active"
	StatusFrozen    Status = "frozen"
	StatusCompleted Status = "completed"
)

var statusAliases = map[string]Status{
	"active":    StatusActive,
	"frozen":    StatusFrozen,
	"completed": StatusCompleted,
	"активен":   StatusActive,
	"заморожен": StatusFrozen,
	"завершён":  StatusCompleted,
	"завершен":  StatusCompleted,
}

// ParseStatus accepts the canonical values and the club's Russian labels.
// An empty string is Active.
func ParseStatus(s string) (Status, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return StatusActive, true
	}
	st, ok := statusAliases[s]
	return st, ok
}

// PaymentEntry is one line of a client's payment history.
type PaymentEntry struct {
	Date    Date
	Amount  int64
	Method  string
	Period  string
	Comment string
}

type Client struct {
	ID             *int64
	ContractNumber string
	Name           string
	Surname        string
	Phone          string
	Address        string
	BirthDate      string
	Group          string
	Trainer        string
	Comment        string

	PeriodID  string
	StartDate Date
	EndDate   Date

	PaymentAmount  *int64
	PaymentMethod  string
	HasDiscount    bool
	DiscountReason string
	Paid           bool
	TotalSessions  *int

	Status         Status
	Freeze         *FreezeRecord
	FreezeHistory  []FreezeRecord
	Visits         VisitLedger
	PaymentHistory []PaymentEntry

	Deleted bool
}

// Recompute refreshes the fields derived from the start date, the period
// selection and the payment fields. It never touches user-entered values.
func Recompute(c Client, catalog Catalog) Client {
	term := CalculateTerm(c.StartDate, catalog, c.PeriodID)
	if term.Known {
		c.EndDate = term.End
		sessions := term.Sessions
		c.TotalSessions = &sessions
	} else {
		c.EndDate = Date{}
	}
	c.Paid = IsPaid(c, catalog)
	return c
}

// Remaining is RemainingSessions for this client.
func (c Client) Remaining(catalog Catalog) (int, bool) {
	return RemainingSessions(catalog, c.PeriodID, c.TotalSessions, c.Visits)
}

func (c Client) FullName() string {
	return strings.TrimSpace(c.Name + " " + c.Surname)
}

func (c Client) clone() Client {
	out := c
	out.FreezeHistory = append([]FreezeRecord(nil), c.FreezeHistory...)
	out.Visits = append(VisitLedger(nil), c.Visits...)
	out.PaymentHistory = append([]PaymentEntry(nil), c.PaymentHistory...)
	if c.Freeze != nil {
		f := *c.Freeze
		out.Freeze = &f
	}
	return out
}
