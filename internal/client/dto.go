package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Bu1gur/challenger-crm/internal/membership"
)

// Amount is a payment amount in whole som. It decodes from a JSON number,
// a numeric string, an empty string or null; the last two mean "not entered".
type Amount struct {
	value *int64
}

func AmountOf(v *int64) Amount {
	if v == nil {
		return Amount{}
	}
	n := *v
	return Amount{value: &n}
}

func (a Amount) Ptr() *int64 {
	return a.value
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		a.value = nil
		return nil
	}

	raw := string(b)
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		raw = strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
		if raw == "" {
			a.value = nil
			return nil
		}
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != float64(int64(f)) {
			return fmt.Errorf("payment amount must be a whole number, got %s", string(b))
		}
		n = int64(f)
	}
	a.value = &n
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if a.value == nil {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(*a.value, 10)), nil
}

type FreezeDTO struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Reason  string `json:"reason"`
	Comment string `json:"comment,omitempty"`
	Confirm bool   `json:"confirm,omitempty"`
}

type PaymentEntryDTO struct {
	Date    string `json:"date"`
	Amount  int64  `json:"amount"`
	Method  string `json:"method"`
	Period  string `json:"period"`
	Comment string `json:"comment,omitempty"`
}

// ClientRequest is the create/update body. Visits and the freeze and
// payment histories are owned by the server and are not accepted here.
type ClientRequest struct {
	ContractNumber string     `json:"contract_number"`
	Name           string     `json:"name"`
	Surname        string     `json:"surname"`
	Phone          string     `json:"phone"`
	Address        string     `json:"address"`
	BirthDate      string     `json:"birth_date"`
	Group          string     `json:"group"`
	Trainer        string     `json:"trainer"`
	Comment        string     `json:"comment"`
	Period         string     `json:"subscription_period"`
	StartDate      string     `json:"start_date"`
	PaymentAmount  Amount     `json:"payment_amount"`
	PaymentMethod  string     `json:"payment_method"`
	HasDiscount    bool       `json:"has_discount"`
	DiscountReason string     `json:"discount_reason"`
	Status         string     `json:"status"`
	Freeze         *FreezeDTO `json:"freeze"`
}

type ClientResponse struct {
	ID                int64             `json:"id"`
	ContractNumber    string            `json:"contract_number"`
	Name              string            `json:"name"`
	Surname           string            `json:"surname"`
	Phone             string            `json:"phone"`
	Address           string            `json:"address"`
	BirthDate         string            `json:"birth_date"`
	Group             string            `json:"group"`
	Trainer           string            `json:"trainer"`
	Comment           string            `json:"comment"`
	Period            string            `json:"subscription_period"`
	StartDate         string            `json:"start_date"`
	EndDate           string            `json:"end_date"`
	PaymentAmount     Amount            `json:"payment_amount"`
	PaymentMethod     string            `json:"payment_method"`
	HasDiscount       bool              `json:"has_discount"`
	DiscountReason    string            `json:"discount_reason"`
	Paid              bool              `json:"paid"`
	TotalSessions     *int              `json:"total_sessions"`
	RemainingSessions *int              `json:"remaining_sessions"`
	Status            string            `json:"status"`
	Freeze            *FreezeDTO        `json:"freeze"`
	FreezeHistory     []FreezeDTO       `json:"freeze_history"`
	Visits            []string          `json:"visits"`
	PaymentHistory    []PaymentEntryDTO `json:"payment_history"`
	Deleted           bool              `json:"deleted"`
}

type RenewalRequestDTO struct {
	Period         string `json:"subscription_period" binding:"required"`
	StartDate      string `json:"start_date"`
	PaymentMethod  string `json:"payment_method"`
	PaymentAmount  Amount `json:"payment_amount"`
	HasDiscount    bool   `json:"has_discount"`
	DiscountReason string `json:"discount_reason"`
}

type RenewalQuoteResponse struct {
	Period      string `json:"subscription_period"`
	PeriodKnown bool   `json:"period_known"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Amount      int64  `json:"payment_amount"`
}

type VisitRequest struct {
	Date string `json:"date"`
}

type QuoteRequest struct {
	Period         string `json:"subscription_period"`
	StartDate      string `json:"start_date"`
	PaymentAmount  Amount `json:"payment_amount"`
	HasDiscount    bool   `json:"has_discount"`
	DiscountReason string `json:"discount_reason"`
}

type QuoteResponse struct {
	PeriodKnown    bool   `json:"period_known"`
	EndDate        string `json:"end_date"`
	TotalSessions  int    `json:"total_sessions"`
	DefaultAmount  Amount `json:"default_amount"`
	Paid           bool   `json:"paid"`
	PaymentProblem string `json:"payment_problem,omitempty"`
}

type SummaryResponse struct {
	ID                int64            `json:"id"`
	FullName          string           `json:"full_name"`
	Status            string           `json:"status"`
	Paid              bool             `json:"paid"`
	PeriodKnown       bool             `json:"period_known"`
	EndDate           string           `json:"end_date"`
	DaysLeft          *int             `json:"days_left"`
	TotalSessions     *int             `json:"total_sessions"`
	Visits            int              `json:"visits"`
	RemainingSessions *int             `json:"remaining_sessions"`
	Freeze            *FreezeDTO       `json:"freeze"`
	FreezeEpisodes    int              `json:"freeze_episodes"`
	FreezeDaysUsed    int              `json:"freeze_days_used"`
	LastPayment       *PaymentEntryDTO `json:"last_payment"`
}

func parseDate(field, s string) (membership.Date, error) {
	d, err := membership.ParseDate(s)
	if err != nil {
		return membership.Date{}, membership.Invalid(membership.KindMissingField, "%s must be a date in YYYY-MM-DD form", field)
	}
	return d, nil
}

func (f FreezeDTO) toDomain() (membership.FreezeRecord, error) {
	start, err := parseDate("freeze start", f.Start)
	if err != nil {
		return membership.FreezeRecord{}, err
	}
	end, err := parseDate("freeze end", f.End)
	if err != nil {
		return membership.FreezeRecord{}, err
	}
	return membership.FreezeRecord{
		Start:   start,
		End:     end,
		Reason:  strings.TrimSpace(f.Reason),
		Comment: strings.TrimSpace(f.Comment),
		Confirm: f.Confirm,
	}, nil
}

func freezeFromDomain(f *membership.FreezeRecord) *FreezeDTO {
	if f == nil {
		return nil
	}
	return &FreezeDTO{Start: f.Start.String(), End: f.End.String(), Reason: f.Reason, Comment: f.Comment, Confirm: f.Confirm}
}

func paymentFromDomain(p membership.PaymentEntry) PaymentEntryDTO {
	return PaymentEntryDTO{Date: p.Date.String(), Amount: p.Amount, Method: p.Method, Period: p.Period, Comment: p.Comment}
}

func (p PaymentEntryDTO) toDomain() (membership.PaymentEntry, error) {
	d, err := membership.ParseDate(p.Date)
	if err != nil {
		return membership.PaymentEntry{}, err
	}
	return membership.PaymentEntry{Date: d, Amount: p.Amount, Method: p.Method, Period: p.Period, Comment: p.Comment}, nil
}

// ToDomain converts the request into a draft client and the freeze the
// operator entered, if any.
func (r ClientRequest) ToDomain() (membership.Client, *membership.FreezeRecord, error) {
	status, ok := membership.ParseStatus(r.Status)
	if !ok {
		return membership.Client{}, nil, membership.Invalid(membership.KindMissingField, "unknown status %q", r.Status)
	}

	start, err := parseDate("start date", r.StartDate)
	if err != nil {
		return membership.Client{}, nil, err
	}

	c := membership.Client{
		ContractNumber: strings.TrimSpace(r.ContractNumber),
		Name:           strings.TrimSpace(r.Name),
		Surname:        strings.TrimSpace(r.Surname),
		Phone:          strings.TrimSpace(r.Phone),
		Address:        strings.TrimSpace(r.Address),
		BirthDate:      strings.TrimSpace(r.BirthDate),
		Group:          r.Group,
		Trainer:        r.Trainer,
		Comment:        r.Comment,
		PeriodID:       r.Period,
		StartDate:      start,
		PaymentAmount:  r.PaymentAmount.Ptr(),
		PaymentMethod:  r.PaymentMethod,
		HasDiscount:    r.HasDiscount,
		DiscountReason: r.DiscountReason,
		Status:         status,
	}

	if r.Freeze == nil {
		return c, nil, nil
	}
	attempt, err := r.Freeze.toDomain()
	if err != nil {
		return membership.Client{}, nil, err
	}
	return c, &attempt, nil
}

func NewClientResponse(r Record) ClientResponse {
	c := r.Client
	var id int64
	if c.ID != nil {
		id = *c.ID
	}

	history := make([]FreezeDTO, 0, len(c.FreezeHistory))
	for i := range c.FreezeHistory {
		history = append(history, *freezeFromDomain(&c.FreezeHistory[i]))
	}
	payments := make([]PaymentEntryDTO, 0, len(c.PaymentHistory))
	for _, p := range c.PaymentHistory {
		payments = append(payments, paymentFromDomain(p))
	}

	return ClientResponse{
		ID:                id,
		ContractNumber:    c.ContractNumber,
		Name:              c.Name,
		Surname:           c.Surname,
		Phone:             c.Phone,
		Address:           c.Address,
		BirthDate:         c.BirthDate,
		Group:             c.Group,
		Trainer:           c.Trainer,
		Comment:           c.Comment,
		Period:            c.PeriodID,
		StartDate:         c.StartDate.String(),
		EndDate:           c.EndDate.String(),
		PaymentAmount:     AmountOf(c.PaymentAmount),
		PaymentMethod:     c.PaymentMethod,
		HasDiscount:       c.HasDiscount,
		DiscountReason:    c.DiscountReason,
		Paid:              c.Paid,
		TotalSessions:     c.TotalSessions,
		RemainingSessions: r.RemainingSessions,
		Status:            string(c.Status),
		Freeze:            freezeFromDomain(c.Freeze),
		FreezeHistory:     history,
		Visits:            c.Visits.Strings(),
		PaymentHistory:    payments,
		Deleted:           c.Deleted,
	}
}

func (r RenewalRequestDTO) ToDomain() (membership.RenewalRequest, error) {
	start, err := parseDate("start date", r.StartDate)
	if err != nil {
		return membership.RenewalRequest{}, err
	}
	return membership.RenewalRequest{
		PeriodID:       r.Period,
		StartDate:      start,
		PaymentMethod:  r.PaymentMethod,
		Amount:         r.PaymentAmount.Ptr(),
		HasDiscount:    r.HasDiscount,
		DiscountReason: r.DiscountReason,
	}, nil
}

func NewRenewalQuoteResponse(q membership.RenewalQuote) RenewalQuoteResponse {
	return RenewalQuoteResponse{
		Period:      q.Period.ID,
		PeriodKnown: q.Known,
		StartDate:   q.StartDate.String(),
		EndDate:     q.EndDate.String(),
		Amount:      q.Amount,
	}
}

func (r QuoteRequest) ToDomain() (QuoteInput, error) {
	start, err := parseDate("start date", r.StartDate)
	if err != nil {
		return QuoteInput{}, err
	}
	return QuoteInput{
		PeriodID:       r.Period,
		StartDate:      start,
		PaymentAmount:  r.PaymentAmount.Ptr(),
		HasDiscount:    r.HasDiscount,
		DiscountReason: r.DiscountReason,
	}, nil
}

func NewQuoteResponse(q Quote) QuoteResponse {
	return QuoteResponse{
		PeriodKnown:    q.PeriodKnown,
		EndDate:        q.EndDate.String(),
		TotalSessions:  q.TotalSessions,
		DefaultAmount:  AmountOf(q.DefaultAmount),
		Paid:           q.Paid,
		PaymentProblem: q.PaymentProblem,
	}
}

func NewSummaryResponse(s Summary) SummaryResponse {
	var last *PaymentEntryDTO
	if s.LastPayment != nil {
		p := paymentFromDomain(*s.LastPayment)
		last = &p
	}
	return SummaryResponse{
		ID:                s.ID,
		FullName:          s.FullName,
		Status:            string(s.Status),
		Paid:              s.Paid,
		PeriodKnown:       s.PeriodKnown,
		EndDate:           s.EndDate.String(),
		DaysLeft:          s.DaysLeft,
		TotalSessions:     s.TotalSessions,
		Visits:            s.Visits,
		RemainingSessions: s.RemainingSessions,
		Freeze:            freezeFromDomain(s.Freeze),
		FreezeEpisodes:    s.FreezeEpisodes,
		FreezeDaysUsed:    s.FreezeDaysUsed,
		LastPayment:       last,
	}
}
