package reference

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Bu1gur/challenger-crm/internal/membership"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Periods        []PeriodDTO        `yaml:"periods"`
	Payments       []PaymentMethodDTO `yaml:"payments"`
	Groups         []GroupDTO         `yaml:"groups"`
	FreezeSettings *FreezeSettingsDTO `yaml:"freeze_settings"`
}

// DefaultSnapshot is the reference data the club started with.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Periods: membership.Catalog{
			{ID: "1m", Label: "Месячный — 4000 сом", Price: 4000, Months: 1, Sessions: 12},
			{ID: "3m", Label: "3 месяца — 11000 сом", Price: 11000, Months: 3, Sessions: 36},
			{ID: "6m", Label: "6 месяцев — 21000 сом", Price: 21000, Months: 6, Sessions: 72},
		},
		Payments: []PaymentMethod{
			{ID: "cash", Label: "Наличные", Kind: KindCash, Banks: []string{}},
			{ID: "card", Label: "Карта", Kind: KindCard, Banks: []string{}},
			{ID: "transfer", Label: "Перевод", Kind: KindTransfer, Banks: []string{"Мбанк", "Оптима", "Бакай"}},
		},
		Groups: []Group{
			{ID: "none", Name: "Без группы", Days: []Weekday{}},
			{ID: "kids", Name: "Дети", Days: []Weekday{}},
			{ID: "adults", Name: "Взрослые", Days: []Weekday{}},
		},
		Freeze: membership.FreezePolicy{
			MaxDays:        membership.DefaultMaxFreezeDays,
			Reasons:        []string{"Болезнь", "Отпуск", "Учёба", "Другое"},
			RequireConfirm: false,
		},
	}
}

func LoadSeed(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes and validates a YAML seed. Sections left out of the
// document fall back to DefaultSnapshot.
func ParseSeed(data []byte) (Snapshot, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Snapshot{}, fmt.Errorf("parse seed file: %w", err)
	}

	snap := DefaultSnapshot()

	if f.Periods != nil {
		snap.Periods = make(membership.Catalog, 0, len(f.Periods))
		for _, d := range f.Periods {
			p := d.ToDomain()
			if strings.TrimSpace(p.ID) == "" {
				return Snapshot{}, fmt.Errorf("seed period %q has no value", p.Label)
			}
			if err := ValidatePeriod(p); err != nil {
				return Snapshot{}, fmt.Errorf("seed period %q: %w", p.ID, err)
			}
			snap.Periods = append(snap.Periods, p)
		}
	}

	if f.Payments != nil {
		snap.Payments = make([]PaymentMethod, 0, len(f.Payments))
		for _, d := range f.Payments {
			m := NormalizePaymentMethod(d.ToDomain())
			if m.ID == "" {
				m.ID = string(m.Kind)
			}
			if err := ValidatePaymentMethod(m); err != nil {
				return Snapshot{}, fmt.Errorf("seed payment %q: %w", m.ID, err)
			}
			snap.Payments = append(snap.Payments, m)
		}
	}

	if f.Groups != nil {
		snap.Groups = make([]Group, 0, len(f.Groups))
		for _, d := range f.Groups {
			g, err := d.ToDomain()
			if err == nil && g.ID == "" {
				err = errors.New("group has no value")
			}
			if err == nil {
				err = ValidateGroup(g)
			}
			if err != nil {
				return Snapshot{}, fmt.Errorf("seed group %q: %w", d.Name, err)
			}
			snap.Groups = append(snap.Groups, g)
		}
	}

	if f.FreezeSettings != nil {
		p := NormalizeFreezePolicy(f.FreezeSettings.ToDomain())
		if err := ValidateFreezePolicy(p); err != nil {
			return Snapshot{}, fmt.Errorf("seed freeze settings: %w", err)
		}
		snap.Freeze = p
	}

	return snap, nil
}
