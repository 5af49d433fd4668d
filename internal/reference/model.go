package reference

import (
	"strings"

	"github.com/Bu1gur/challenger-crm/internal/membership"
)

type PaymentKind string

const (
	KindCash     PaymentKind = "cash"
	KindCard     PaymentKind = "card"
	KindTransfer PaymentKind = "transfer"
)

func (k PaymentKind) Valid() bool {
	return k == KindCash || k == KindCard || k == KindTransfer
}

// PaymentMethod is a way a client may pay. Only transfers name banks.
type PaymentMethod struct {
	ID    string
	Label string
	Kind  PaymentKind
	Banks []string
}

type Weekday string

const (
	Monday    Weekday = "mon"
	Tuesday   Weekday = "tue"
	Wednesday Weekday = "wed"
	Thursday  Weekday = "thu"
	Friday    Weekday = "fri"
	Saturday  Weekday = "sat"
	Sunday    Weekday = "sun"
)

// Week lists the days in display order.
var Week = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayAliases = map[string]Weekday{
	"пн": Monday, "вт": Tuesday, "ср": Wednesday, "чт": Thursday,
	"пт": Friday, "сб": Saturday, "вс": Sunday,
	"monday": Monday, "tuesday": Tuesday, "wednesday": Wednesday, "thursday": Thursday,
	"friday": Friday, "saturday": Saturday, "sunday": Sunday,
}

// ParseWeekday accepts "mon".."sun", full English names and Пн..Вс.
func ParseWeekday(s string) (Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, d := range Week {
		if string(d) == s {
			return d, true
		}
	}
	d, ok := weekdayAliases[s]
	return d, ok
}

// SortDays returns the distinct days in week order.
func SortDays(days []Weekday) []Weekday {
	seen := make(map[Weekday]bool, len(days))
	for _, d := range days {
		seen[d] = true
	}
	out := make([]Weekday, 0, len(seen))
	for _, d := range Week {
		if seen[d] {
			out = append(out, d)
		}
	}
	return out
}

// Group is a training group with a weekly timetable.
type Group struct {
	ID        string
	Name      string
	Days      []Weekday
	TimeStart string
	TimeEnd   string
	Comment   string
}

func (g Group) MeetsOn(d Weekday) bool {
	for _, x := range g.Days {
		if x == d {
			return true
		}
	}
	return false
}

// Snapshot is all reference data at one point in time.
type Snapshot struct {
	Periods  membership.Catalog      `json:"periods"`
	Payments []PaymentMethod         `json:"payments"`
	Groups   []Group                 `json:"groups"`
	Freeze   membership.FreezePolicy `json:"freeze"`
}

func (s Snapshot) PaymentMethod(id string) (PaymentMethod, bool) {
	for _, p := range s.Payments {
		if p.ID == id {
			return p, true
		}
	}
	return PaymentMethod{}, false
}

func (s Snapshot) Group(id string) (Group, bool) {
	for _, g := range s.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}
