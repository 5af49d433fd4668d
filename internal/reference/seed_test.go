package reference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeed(t *testing.T) {
	doc := []byte(`
periods:
  - value: 12m
    label: Год
    price: 40000
    months: 12
    trainings: 144
groups:
  - value: kids
    name: Дети
    days: [Пт, Пн, Ср]
    time_start: "17:00"
    time_end: "18:30"
`)

	snap, err := ParseSeed(doc)
	require.NoError(t, err)

	require.Len(t, snap.Periods, 1)
	assert.Equal(t, 144, snap.Periods[0].Sessions)
	require.Len(t, snap.Groups, 1)
	assert.Equal(t, []Weekday{Monday, Wednesday, Friday}, snap.Groups[0].Days)
	// разделы, которых нет в файле, берутся по умолчанию
	assert.Len(t, snap.Payments, 3)
	assert.Equal(t, 30, snap.Freeze.MaxDays)
}

func TestParseSeed_Rejects(t *testing.T) {
	tests := map[string]string{
		"period without value":  "periods:\n  - label: x\n    price: 1\n    months: 1\n",
		"transfer without bank": "payments:\n  - value: t\n    label: Перевод\n    type: transfer\n",
		"bad weekday":           "groups:\n  - value: g\n    name: G\n    days: [Xx]\n",
		"negative max days":     "freeze_settings:\n  max_days: -5\n",
		"not yaml":              "periods: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSeed([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadSeed_RepositoryFile(t *testing.T) {
	snap, err := LoadSeed(filepath.Join("..", "..", "seed.yaml"))
	require.NoError(t, err)
	assert.Len(t, snap.Periods, 3)
	transfer, ok := snap.PaymentMethod("transfer")
	require.True(t, ok)
	assert.NotEmpty(t, transfer.Banks)
}

func TestLoadSeed_MissingFile(t *testing.T) {
	_, err := LoadSeed(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseWeekday(t *testing.T) {
	for in, want := range map[string]Weekday{"mon": Monday, "Вс": Sunday, "Saturday": Saturday, " ср ": Wednesday} {
		got, ok := ParseWeekday(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseWeekday("сегодня")
	assert.False(t, ok)
}

func TestSortDays(t *testing.T) {
	assert.Equal(t, []Weekday{Monday, Saturday, Sunday}, SortDays([]Weekday{Sunday, Monday, Saturday, Monday}))
	assert.Empty(t, SortDays(nil))
}
