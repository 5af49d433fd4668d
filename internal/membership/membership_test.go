package membership

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() Catalog {
	return Catalog{
		{ID: "1m", Label: "Monthly", Price: 4000, Months: 1, Sessions: 12},
		{ID: "3m", Label: "3 months", Price: 11000, Months: 3, Sessions: 36},
		{ID: "6m", Label: "6 months", Price: 21000, Months: 6, Sessions: 72},
	}
}

func amount(v int64) *int64 { return &v }
func sessions(v int) *int    { return &v }

func TestCatalogLookup(t *testing.T) {
	c := testCatalog()

	p, ok := c.Lookup("3m")
	require.True(t, ok)
	assert.Equal(t, int64(11000), p.Price)

	_, ok = c.Lookup("12m")
	assert.False(t, ok)

	_, ok = Catalog(nil).Lookup("1m")
	assert.False(t, ok)
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		start  string
		months int
		want   string
	}{
		{"2024-01-31", 1, "2024-02-29"},
		{"2023-01-31", 1, "2023-02-28"},
		{"2024-03-31", 1, "2024-04-30"},
		{"2024-01-15", 1, "2024-02-15"},
		{"2024-11-30", 3, "2025-02-28"},
		{"2024-08-31", 6, "2025-02-28"},
		{"2024-03-01", 1, "2024-04-01"},
	}

	for _, tt := range tests {
		t.Run(tt.start, func(t *testing.T) {
			got := MustParseDate(tt.start).AddMonths(tt.months)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestCalculateTerm(t *testing.T) {
	c := testCatalog()

	term := CalculateTerm(MustParseDate("2024-01-31"), c, "1m")
	assert.True(t, term.Known)
	assert.Equal(t, "2024-02-29", term.End.String())
	assert.Equal(t, 12, term.Sessions)

	unknown := CalculateTerm(MustParseDate("2024-01-31"), c, "gone")
	assert.False(t, unknown.Known)
	assert.True(t, unknown.End.IsZero())
	assert.Equal(t, 0, unknown.Sessions)

	noStart := CalculateTerm(Date{}, c, "3m")
	assert.True(t, noStart.Known)
	assert.True(t, noStart.End.IsZero())
	assert.Equal(t, 36, noStart.Sessions)
}

func TestRecompute(t *testing.T) {
	c := testCatalog()
	client := Client{
		PeriodID:      "3m",
		StartDate:     MustParseDate("2024-05-10"),
		EndDate:       MustParseDate("2030-01-01"),
		PaymentAmount: amount(11000),
	}

	got := Recompute(client, c)
	assert.Equal(t, "2024-08-10", got.EndDate.String())
	require.NotNil(t, got.TotalSessions)
	assert.Equal(t, 36, *got.TotalSessions)
	assert.True(t, got.Paid)

	client.PeriodID = "deleted"
	client.TotalSessions = sessions(8)
	got = Recompute(client, c)
	assert.True(t, got.EndDate.IsZero())
	assert.Equal(t, 8, *got.TotalSessions)
	assert.False(t, got.Paid)
}

func TestIsPaid_NoDiscount(t *testing.T) {
	c := testCatalog()
	for _, p := range c {
		paid := Client{PeriodID: p.ID, PaymentAmount: amount(p.Price)}
		assert.True(t, IsPaid(paid, c), p.ID)

		short := Client{PeriodID: p.ID, PaymentAmount: amount(p.Price - 1)}
		assert.False(t, IsPaid(short, c), p.ID)
	}

	assert.False(t, IsPaid(Client{PeriodID: "1m"}, c), "missing amount")
	assert.False(t, IsPaid(Client{PeriodID: "nope", PaymentAmount: amount(999999)}, c), "unknown period")
}

func TestIsPaid_WithDiscount(t *testing.T) {
	c := testCatalog()
	for _, p := range c {
		client := Client{PeriodID: p.ID, HasDiscount: true, PaymentAmount: amount(1), DiscountReason: "x"}
		assert.True(t, IsPaid(client, c))

		client.DiscountReason = ""
		assert.False(t, IsPaid(client, c))

		client.DiscountReason = "   "
		assert.False(t, IsPaid(client, c))

		client.DiscountReason = "x"
		client.PaymentAmount = amount(0)
		assert.False(t, IsPaid(client, c))

		client.PaymentAmount = nil
		assert.False(t, IsPaid(client, c))
	}
}

func TestValidatePayment(t *testing.T) {
	tests := []struct {
		name        string
		amount      *int64
		hasDiscount bool
		reason      string
		ceiling     int64
		wantErr     bool
	}{
		{"within price", amount(4000), false, "", 4000, false},
		{"above price", amount(4001), false, "", 4000, true},
		{"negative", amount(-1), false, "", 4000, true},
		{"unknown period has no cap", amount(999999), false, "", 0, false},
		{"discount above price allowed", amount(5000), true, "friend", 4000, false},
		{"discount without reason", amount(100), true, " ", 4000, true},
		{"discount with zero amount", amount(0), true, "friend", 4000, true},
		{"missing amount without discount", nil, false, "", 4000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePayment(tt.amount, tt.hasDiscount, tt.reason, tt.ceiling)
			if tt.wantErr {
				ve, ok := AsValidation(err)
				require.True(t, ok)
				assert.Equal(t, KindPayment, ve.Kind)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFreeze(t *testing.T) {
	policy := FreezePolicy{MaxDays: 30, Reasons: []string{"Illness", "Vacation"}}
	start := MustParseDate("2024-06-01")

	tests := []struct {
		name    string
		attempt FreezeRecord
		policy  FreezePolicy
		wantErr string
	}{
		{"30 days inclusive accepted", FreezeRecord{Start: start, End: start.AddDays(29), Reason: "Illness"}, policy, ""},
		{"31 days rejected", FreezeRecord{Start: start, End: start.AddDays(30), Reason: "Illness"}, policy, "maximum freeze length is 30 days"},
		{"single day", FreezeRecord{Start: start, End: start, Reason: "Vacation"}, policy, ""},
		{"missing end", FreezeRecord{Start: start, Reason: "Illness"}, policy, "freeze dates are required"},
		{"missing start", FreezeRecord{End: start, Reason: "Illness"}, policy, "freeze dates are required"},
		{"end before start", FreezeRecord{Start: start, End: start.AddDays(-1), Reason: "Illness"}, policy, "freeze end cannot be before freeze start"},
		{"missing reason", FreezeRecord{Start: start, End: start.AddDays(3)}, policy, "freeze reason is required"},
		{"reason outside the list", FreezeRecord{Start: start, End: start.AddDays(3), Reason: "Bored"}, policy, "freeze reason is required"},
		{"no reasons configured", FreezeRecord{Start: start, End: start.AddDays(3)}, FreezePolicy{MaxDays: 30}, ""},
		{"confirmation required", FreezeRecord{Start: start, End: start.AddDays(3)}, FreezePolicy{MaxDays: 30, RequireConfirm: true}, "freeze confirmation is required"},
		{"confirmation given", FreezeRecord{Start: start, End: start.AddDays(3), Confirm: true}, FreezePolicy{MaxDays: 30, RequireConfirm: true}, ""},
		{"zero max days is unlimited", FreezeRecord{Start: start, End: start.AddDays(365)}, FreezePolicy{MaxDays: 0}, ""},
		{"zero max days still checks chronology", FreezeRecord{Start: start, End: start.AddDays(-1)}, FreezePolicy{MaxDays: 0}, "freeze end cannot be before freeze start"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFreeze(tt.attempt, tt.policy)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestApplyFreeze_Idempotent(t *testing.T) {
	attempt := FreezeRecord{
		Start:  MustParseDate("2024-06-01"),
		End:    MustParseDate("2024-06-10"),
		Reason: "Illness",
	}

	current, history := ApplyFreeze(nil, attempt)
	require.NotNil(t, current)
	require.Len(t, history, 1)

	current, history = ApplyFreeze(history, attempt)
	assert.Len(t, history, 1)
	assert.Equal(t, attempt, *current)

	moved := attempt
	moved.End = MustParseDate("2024-06-12")
	current, history = ApplyFreeze(history, moved)
	assert.Len(t, history, 2)
	assert.Equal(t, moved.End, current.End)
}

// Episodes are keyed by (start, end, reason). A changed comment or
// confirmation flag replaces the current freeze but does not add history.
func TestApplyFreeze_CommentAndConfirmDoNotStartNewEpisode(t *testing.T) {
	first := FreezeRecord{
		Start:  MustParseDate("2024-06-01"),
		End:    MustParseDate("2024-06-10"),
		Reason: "Illness",
	}
	_, history := ApplyFreeze(nil, first)

	edited := first
	edited.Comment = "doctor's note received"
	edited.Confirm = true
	current, history := ApplyFreeze(history, edited)

	assert.Len(t, history, 1)
	assert.Equal(t, "", history[0].Comment)
	assert.True(t, current.Confirm)
	assert.Equal(t, "doctor's note received", current.Comment)
}

func TestApplyFreeze_DoesNotMutateInput(t *testing.T) {
	history := make([]FreezeRecord, 1, 4)
	history[0] = FreezeRecord{Start: MustParseDate("2024-01-01"), End: MustParseDate("2024-01-05")}

	_, out := ApplyFreeze(history, FreezeRecord{Start: MustParseDate("2024-02-01"), End: MustParseDate("2024-02-05")})
	assert.Len(t, out, 2)
	assert.Len(t, history, 1)
}

func TestVisitLedger(t *testing.T) {
	day := MustParseDate("2024-06-01")

	l := VisitLedger{}.Add(day).Add(day)
	assert.Len(t, l, 1)

	l = l.Remove(MustParseDate("2024-07-01"))
	assert.Len(t, l, 1)

	l = l.Remove(day)
	assert.Empty(t, l)

	dup := NewVisitLedger(day, day, Date{}, day.AddDays(1))
	assert.Len(t, dup, 2)

	withDup := VisitLedger{day, day, day.AddDays(1)}
	assert.Len(t, withDup.Remove(day), 1)
}

func TestRemainingSessions(t *testing.T) {
	c := testCatalog()
	start := MustParseDate("2024-01-01")

	ledger := func(n int) VisitLedger {
		l := VisitLedger{}
		for i := 0; i < n; i++ {
			l = l.Add(start.AddDays(i))
		}
		return l
	}

	got, ok := RemainingSessions(c, "1m", nil, ledger(5))
	assert.True(t, ok)
	assert.Equal(t, 7, got)

	got, ok = RemainingSessions(c, "1m", nil, ledger(13))
	assert.True(t, ok)
	assert.Equal(t, -1, got)

	got, ok = RemainingSessions(c, "gone", sessions(10), ledger(4))
	assert.True(t, ok)
	assert.Equal(t, 6, got)

	_, ok = RemainingSessions(c, "gone", nil, ledger(4))
	assert.False(t, ok)
}

func TestExtend_EndToEnd(t *testing.T) {
	c := testCatalog()
	history := []FreezeRecord{{Start: MustParseDate("2024-02-01"), End: MustParseDate("2024-02-05"), Reason: "Illness"}}
	client := Client{
		Name:          "Aibek",
		Surname:       "Toktogulov",
		PeriodID:      "1m",
		StartDate:     MustParseDate("2024-02-01"),
		EndDate:       MustParseDate("2024-03-01"),
		PaymentAmount: amount(4000),
		PaymentMethod: "cash",
		Status:        StatusFrozen,
		Freeze:        &history[0],
		FreezeHistory: history,
		Visits:        NewVisitLedger(MustParseDate("2024-02-06"), MustParseDate("2024-02-08")),
	}

	today := MustParseDate("2024-02-28")
	out, err := Extend(client, RenewalRequest{PeriodID: "1m", PaymentMethod: "cash"}, c, today)
	require.NoError(t, err)

	assert.Equal(t, "2024-03-01", out.StartDate.String())
	assert.Equal(t, "2024-04-01", out.EndDate.String())
	assert.Empty(t, out.Visits)
	assert.Equal(t, StatusActive, out.Status)
	assert.Nil(t, out.Freeze)
	assert.Len(t, out.FreezeHistory, 1)
	assert.True(t, out.Paid)
	require.Len(t, out.PaymentHistory, 1)
	assert.Equal(t, int64(4000), out.PaymentHistory[0].Amount)
	assert.Equal(t, "Monthly", out.PaymentHistory[0].Period)
	assert.Equal(t, today, out.PaymentHistory[0].Date)

	assert.Len(t, client.Visits, 2, "input client must not change")
	assert.NotNil(t, client.Freeze)
}

func TestExtend_DefaultsToTodayAndRecordsDiscount(t *testing.T) {
	c := testCatalog()
	today := MustParseDate("2024-05-20")

	out, err := Extend(Client{}, RenewalRequest{
		PeriodID:       "3m",
		PaymentMethod:  "card",
		Amount:         amount(9000),
		HasDiscount:    true,
		DiscountReason: " family ",
	}, c, today)
	require.NoError(t, err)

	assert.Equal(t, today, out.StartDate)
	assert.Equal(t, "2024-08-20", out.EndDate.String())
	assert.Equal(t, int64(9000), *out.PaymentAmount)
	assert.True(t, out.Paid)
	require.Len(t, out.PaymentHistory, 1)
	assert.Equal(t, "family", out.PaymentHistory[0].Comment)
}

func TestExtend_Rejections(t *testing.T) {
	c := testCatalog()
	today := MustParseDate("2024-05-20")

	tests := []struct {
		name string
		req  RenewalRequest
		kind ErrorKind
	}{
		{"unknown period", RenewalRequest{PeriodID: "12m", PaymentMethod: "cash"}, KindUnresolvedRef},
		{"no method", RenewalRequest{PeriodID: "1m"}, KindMissingField},
		{"discount without reason", RenewalRequest{PeriodID: "1m", PaymentMethod: "cash", HasDiscount: true, Amount: amount(100)}, KindPayment},
		{"discount without amount", RenewalRequest{PeriodID: "1m", PaymentMethod: "cash", HasDiscount: true, DiscountReason: "x"}, KindPayment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extend(Client{}, tt.req, c, today)
			ve, ok := AsValidation(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, ve.Kind)
		})
	}
}

func TestQuoteRenewal(t *testing.T) {
	c := testCatalog()
	client := Client{EndDate: MustParseDate("2024-01-31")}

	q := QuoteRenewal(client, RenewalRequest{PeriodID: "1m"}, c, MustParseDate("2024-01-10"))
	assert.True(t, q.Known)
	assert.Equal(t, "2024-02-29", q.EndDate.String())
	assert.Equal(t, int64(4000), q.Amount)

	q = QuoteRenewal(client, RenewalRequest{PeriodID: "6m", StartDate: MustParseDate("2024-03-01")}, c, MustParseDate("2024-01-10"))
	assert.Equal(t, "2024-09-01", q.EndDate.String())
	assert.Equal(t, int64(21000), q.Amount)

	q = QuoteRenewal(client, RenewalRequest{PeriodID: "1m", HasDiscount: true, Amount: amount(2500)}, c, MustParseDate("2024-01-10"))
	assert.Equal(t, int64(2500), q.Amount)

	q = QuoteRenewal(client, RenewalRequest{PeriodID: "gone"}, c, MustParseDate("2024-01-10"))
	assert.False(t, q.Known)
	assert.True(t, q.EndDate.IsZero())
}
