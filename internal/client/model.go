package client

import (
	"errors"

	"github.com/Bu1gur/challenger-crm/internal/membership"
)

var (
	ErrNotFound = errors.New("client not found")
	ErrInFlight = errors.New("a save for this client is already in progress")
	ErrDeleted  = errors.New("client is deleted")
)

// Record is a stored client together with values derived from the
// current catalog.
type Record struct {
	membership.Client
	RemainingSessions *int
}

// Summary is the at-a-glance state shown on the client card.
type Summary struct {
	ID                int64
	FullName          string
	Status            membership.Status
	Paid              bool
	PeriodKnown       bool
	EndDate           membership.Date
	DaysLeft          *int
	TotalSessions     *int
	Visits            int
	RemainingSessions *int
	Freeze            *membership.FreezeRecord
	FreezeEpisodes    int
	FreezeDaysUsed    int
	LastPayment       *membership.PaymentEntry
}

// QuoteInput is the subset of the client form that drives live recompute.
type QuoteInput struct {
	PeriodID       string
	StartDate      membership.Date
	PaymentAmount  *int64
	HasDiscount    bool
	DiscountReason string
}

type Quote struct {
	PeriodKnown    bool
	EndDate        membership.Date
	TotalSessions  int
	DefaultAmount  *int64
	Paid           bool
	PaymentProblem string
}
