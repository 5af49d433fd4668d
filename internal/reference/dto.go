package reference

import (
	"github.com/Bu1gur/challenger-crm/internal/membership"
)

// Wire shapes keep the field names the club's front end has always used
// (value, label, trainings, type).

type PeriodDTO struct {
	Value     string `json:"value" yaml:"value"`
	Label     string `json:"label" yaml:"label" binding:"required"`
	Price     int64  `json:"price" yaml:"price" binding:"min=0"`
	Months    int    `json:"months" yaml:"months" binding:"required,min=1"`
	Trainings int    `json:"trainings" yaml:"trainings" binding:"min=0"`
}

type PaymentMethodDTO struct {
	Value string   `json:"value" yaml:"value"`
	Label string   `json:"label" yaml:"label" binding:"required"`
	Type  string   `json:"type" yaml:"type" binding:"required,oneof=cash card transfer"`
	Banks []string `json:"banks" yaml:"banks"`
}

type GroupDTO struct {
	Value     string   `json:"value" yaml:"value"`
	Name      string   `json:"name" yaml:"name" binding:"required"`
	Days      []string `json:"days" yaml:"days"`
	TimeStart string   `json:"time_start" yaml:"time_start"`
	TimeEnd   string   `json:"time_end" yaml:"time_end"`
	Comment   string   `json:"comment" yaml:"comment"`
}

type FreezeSettingsDTO struct {
	MaxDays        int      `json:"max_days" yaml:"max_days" binding:"min=0"`
	Reasons        []string `json:"reasons" yaml:"reasons"`
	RequireConfirm bool     `json:"require_confirm" yaml:"require_confirm"`
}

func (d PeriodDTO) ToDomain() membership.Period {
	return membership.Period{ID: d.Value, Label: d.Label, Price: d.Price, Months: d.Months, Sessions: d.Trainings}
}

func PeriodFromDomain(p membership.Period) PeriodDTO {
	return PeriodDTO{Value: p.ID, Label: p.Label, Price: p.Price, Months: p.Months, Trainings: p.Sessions}
}

func (d PaymentMethodDTO) ToDomain() PaymentMethod {
	return PaymentMethod{ID: d.Value, Label: d.Label, Kind: PaymentKind(d.Type), Banks: d.Banks}
}

func PaymentMethodFromDomain(m PaymentMethod) PaymentMethodDTO {
	banks := m.Banks
	if banks == nil {
		banks = []string{}
	}
	return PaymentMethodDTO{Value: m.ID, Label: m.Label, Type: string(m.Kind), Banks: banks}
}

// ToDomain fails with a validation error on an unrecognised weekday.
func (d GroupDTO) ToDomain() (Group, error) {
	days := make([]Weekday, 0, len(d.Days))
	for _, s := range d.Days {
		wd, ok := ParseWeekday(s)
		if !ok {
			return Group{}, membership.Invalid(membership.KindMissingField, "unknown weekday %q", s)
		}
		days = append(days, wd)
	}
	return Group{
		ID:        d.Value,
		Name:      d.Name,
		Days:      SortDays(days),
		TimeStart: d.TimeStart,
		TimeEnd:   d.TimeEnd,
		Comment:   d.Comment,
	}, nil
}

func GroupFromDomain(g Group) GroupDTO {
	days := make([]string, 0, len(g.Days))
	for _, wd := range SortDays(g.Days) {
		days = append(days, string(wd))
	}
	return GroupDTO{
		Value:     g.ID,
		Name:      g.Name,
		Days:      days,
		TimeStart: g.TimeStart,
		TimeEnd:   g.TimeEnd,
		Comment:   g.Comment,
	}
}

func (d FreezeSettingsDTO) ToDomain() membership.FreezePolicy {
	return membership.FreezePolicy{MaxDays: d.MaxDays, Reasons: d.Reasons, RequireConfirm: d.RequireConfirm}
}

func FreezeSettingsFromDomain(p membership.FreezePolicy) FreezeSettingsDTO {
	reasons := p.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	return FreezeSettingsDTO{MaxDays: p.MaxDays, Reasons: reasons, RequireConfirm: p.RequireConfirm}
}
