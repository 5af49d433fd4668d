package client

import (
	"context"
	"fmt"
	"time"

	"github.com/Bu1gur/challenger-crm/internal/logger"
	"github.com/Bu1gur/challenger-crm/internal/membership"
	"github.com/Bu1gur/challenger-crm/internal/metrics"
	"github.com/Bu1gur/challenger-crm/internal/reference"
)

// ReferenceSource provides the catalog and freeze policy every recompute
// runs against.
type ReferenceSource interface {
	Snapshot(ctx context.Context) (reference.Snapshot, error)
}

type Service interface {
	List(ctx context.Context, f Filter) ([]Record, error)
	Get(ctx context.Context, id int64) (Record, error)
	Create(ctx context.Context, draft membership.Client, freeze *membership.FreezeRecord) (Record, error)
	Update(ctx context.Context, id int64, draft membership.Client, freeze *membership.FreezeRecord) (Record, error)
	Delete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) (Record, error)

	Extend(ctx context.Context, id int64, req membership.RenewalRequest) (Record, error)
	QuoteRenewal(ctx context.Context, id int64, req membership.RenewalRequest) (membership.RenewalQuote, error)

	AddVisit(ctx context.Context, id int64, day membership.Date) (Record, error)
	RemoveVisit(ctx context.Context, id int64, day membership.Date) (Record, error)

	Summary(ctx context.Context, id int64) (Summary, error)
	Quote(ctx context.Context, in QuoteInput) (Quote, error)

	ByGroups(ctx context.Context, groups []string) ([]Record, error)
}

type service struct {
	repo  Repository
	ref   ReferenceSource
	guard *SubmitGuard
	now   func() time.Time
}

func NewService(repo Repository, ref ReferenceSource) Service {
	return &service{repo: repo, ref: ref, guard: NewSubmitGuard(), now: time.Now}
}

func (s *service) today() membership.Date {
	return membership.DateOf(s.now())
}

func (s *service) record(c membership.Client, catalog membership.Catalog) Record {
	r := Record{Client: c}
	if n, ok := c.Remaining(catalog); ok {
		r.RemainingSessions = &n
	}
	return r
}

func (s *service) List(ctx context.Context, f Filter) ([]Record, error) {
	snap, err := s.ref.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	clients, err := s.repo.List(ctx, f.ShowDeleted)
	if err != nil {
		return nil, err
	}

	if f.IsZero() {
		counts := make(map[string]int)
		for _, c := range clients {
			counts[string(c.Status)]++
		}
		metrics.SetClientsByStatus(counts)
	}

	out := make([]Record, 0, len(clients))
	for _, c := range clients {
		if f.Match(c) {
			out = append(out, s.record(c, snap.Periods))
		}
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id int64) (Record, error) {
	snap, err := s.ref.Snapshot(ctx)
	if err != nil {
		return Record{}, err
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	return s.record(c, snap.Periods), nil
}

func (s *service) acquire(key string) (func(), error) {
	release, ok := s.guard.Acquire(key)
	if !ok {
		return nil, ErrInFlight
	}
	return release, nil
}

func clientKey(id int64) string {
	return fmt.Sprintf("client:%d", id)
}

// checkPaymentMethod rejects a method id that is not in the reference data.
// An empty id is left to the client validators.
func checkPaymentMethod(snap reference.Snapshot, id string) error {
	if id == "" {
		return nil
	}
	if _, ok := snap.PaymentMethod(id); !ok {
		return membership.Invalid(membership.KindUnresolvedRef, "unknown payment method %q", id)
	}
	return nil
}

func (s *service) Create(ctx context.Context, draft membership.Client, freeze *membership.FreezeRecord) (Record, error) {
	release, err := s.acquire("new:" + draft.Phone)
	if err != nil {
		return Record{}, err
	}
	defer release()

	snap, err := s.ref.Snapshot(ctx)
	if err != nil {
		return Record{}, err
	}

	draft.ID = nil
	draft.Deleted = false
	draft.FreezeHistory = nil
	draft.Visits = nil
	draft.PaymentHistory = nil

	c, err := membership.Submit(draft, freeze, snap.Periods, snap.Freeze, s.today())
	if err == nil {
		err = checkPaymentMethod(snap, c.PaymentMethod)
	}
	if err != nil {
		metrics.RecordClientSaved("create", "invalid")
		return Record{}, err
	}

	id, err := s.repo.Create(ctx, c)
	if err != nil {
		metrics.RecordClientSaved("create", "error")
		return Record{}, err
	}
	c.ID = &id

	metrics.RecordClientSaved("create", "ok")
	if c.Freeze != nil {
		metrics.RecordFreeze(true)
	}
	logger.Info("client created", "client_id", id, "status", c.Status)
	return s.record(c, snap.Periods), nil
}

// Update replaces the editable fields of a client. Visits and the freeze and
// payment histories are carried over from the stored record. A client that
// stays frozen without a new freeze keeps its current one.
func (s *service) Update(ctx context.Context, id int64, draft membership.Client, freeze *membership.FreezeRecord) (Record, error) {
	release, err := s.acquire(clientKey(id))
	if err != nil {
		return Record{}, err
	}
	defer release()

	snap, err := s.ref.Snapshot(ctx)
	if err != nil {
		return Record{}, err
	}
	stored, err := s.repo.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if stored.Deleted {
		return Record{}, ErrDeleted
	}

	draft.ID = stored.ID
	draft.Deleted = false
	draft.FreezeHistory = stored.FreezeHistory
	draft.Visits = stored.Visits
	draft.PaymentHistory = stored.PaymentHistory
	if draft.Status == membership.StatusFrozen && freeze == nil && stored.Freeze != nil {
		f := *stored.Freeze
		freeze = &f
	}

	c, err := membership.Submit(draft, freeze, snap.Periods, snap.Freeze, s.today())
	// A method removed from the reference data stays valid on clients that
	// already use it.
	if err == nil && c.PaymentMethod != stored.PaymentMethod {
		err = checkPaymentMethod(snap, c.PaymentMethod)
	}
	if err != nil {
		metrics.RecordClientSaved("update", "invalid")
		return Record{}, err
	}

	if err := s.repo.Update(ctx, c); err != nil {
		metrics.RecordClientSaved("update", "error")
		return Record{}, err
	}

	metrics.RecordClientSaved("update", "ok")
	if c.Status == membership.StatusFrozen {
		metrics.RecordFreeze(len(c.FreezeHistory) > len(stored.FreezeHistory))
	}
	return s.record(c, snap.Periods), nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	release, err := s.acquire(clientKey(id))
	if err != nil {
		return err
	}
	defer release()

	if err := s.repo.SetDeleted(ctx, id, true); err != nil {
		return err
	}
	logger.Info("client deleted", "client_id", id)
	return nil
}

func (s *service) Restore(ctx context.Context, id int64) (Record, error) {
	release, err := s.acquire(clientKey(id))
	if err != nil {
		return Record{}, err
	}
	defer release()

	if err := s.repo.SetDeleted(ctx, id, false); err != nil {
		return Record{}, err
	}
	logger.Info("client restored", "client_id", id)

	snap, err := s.ref.Snapshot(ctx)
	if err != nil {
		return Record{}, err
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	return s.record(c, snap.Periods), nil
}

// mutate loads a live client, applies fn and persists the result. The stored
// record is only replaced once fn succeeds.
func (s *service) mutate(ctx context.Context, id int64, fn func(membership.Client, reference.Snapshot) (membership.Client, error)) (Record, error) {
	release, err := s.acquire(clientKey(id))
	if err != nil {
		return Record{}, err
	}
	defer release()

	snap, err := s.ref.Snapshot(ctx)
	if err != nil {
		return Record{}, err
	}
	stored, err := s.repo.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if stored.Deleted {
		return Record{}, ErrDeleted
	}

	c, err := fn(stored, snap)
	if err != nil {
		return Record{}, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return Record{}, err
	}
	return s.record(c, snap.Periods), nil
}

func (s *service) Extend(ctx context.Context, id int64, req membership.RenewalRequest) (Record, error) {
	var amount int64
	rec, err := s.mutate(ctx, id, func(c membership.Client, snap reference.Snapshot) (membership.Client, error) {
		renewed, err := membership.Extend(c, req, snap.Periods, s.today())
		if err == nil {
			err = checkPaymentMethod(snap, req.PaymentMethod)
		}
		if err != nil {
			return membership.Client{}, err
		}
		amount = *renewed.PaymentAmount
		return renewed, nil
	})
	if err != nil {
		return Record{}, err
	}

	metrics.RecordRenewal(rec.PeriodID, rec.PaymentMethod, amount)
	logger.Info("subscription extended", "client_id", id, "period", rec.PeriodID, "end_date", rec.EndDate.String())
	return rec, nil
}

func (s *service) QuoteRenewal(ctx context.Context, id int64, req membership.RenewalRequest) (membership.RenewalQuote, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return membership.RenewalQuote{}, err
	}
	snap, err := s.ref.Snapshot(ctx)
	if err != nil {
		return membership.RenewalQuote{}, err
	}
	return membership.QuoteRenewal(rec.Client, req, snap.Periods, s.today()), nil
}

func (s *service) AddVisit(ctx context.Context, id int64, day membership.Date) (Record, error) {
	if day.IsZero() {
		day = s.today()
	}
	rec, err := s.mutate(ctx, id, func(c membership.Client, _ reference.Snapshot) (membership.Client, error) {
		c.Visits = c.Visits.Add(day)
		return c, nil
	})
	if err == nil {
		metrics.RecordVisit("add")
	}
	return rec, err
}

func (s *service) RemoveVisit(ctx context.Context, id int64, day membership.Date) (Record, error) {
	rec, err := s.mutate(ctx, id, func(c membership.Client, _ reference.Snapshot) (membership.Client, error) {
		c.Visits = c.Visits.Remove(day)
		return c, nil
	})
	if err == nil {
		metrics.RecordVisit("remove")
	}
	return rec, err
}

func (s *service) Summary(ctx context.Context, id int64) (Summary, error) {
	snap, err := s.ref.Snapshot(ctx)
	if err != nil {
		return Summary{}, err
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return Summary{}, err
	}

	_, known := snap.Periods.Lookup(c.PeriodID)
	sum := Summary{
		ID:             id,
		FullName:       c.FullName(),
		Status:         c.Status,
		Paid:           membership.IsPaid(c, snap.Periods),
		PeriodKnown:    known,
		EndDate:        c.EndDate,
		TotalSessions:  c.TotalSessions,
		Visits:         len(c.Visits),
		Freeze:         c.Freeze,
		FreezeEpisodes: len(c.FreezeHistory),
	}
	if !c.EndDate.IsZero() {
		left := s.today().DaysUntil(c.EndDate)
		sum.DaysLeft = &left
	}
	if n, ok := c.Remaining(snap.Periods); ok {
		sum.RemainingSessions = &n
	}
	for _, f := range c.FreezeHistory {
		sum.FreezeDaysUsed += f.Days()
	}
	if n := len(c.PaymentHistory); n > 0 {
		last := c.PaymentHistory[n-1]
		sum.LastPayment = &last
	}
	return sum, nil
}

// Quote recomputes the derived form fields for an unsaved client: end date,
// session quota, the default amount and the paid flag.
func (s *service) Quote(ctx context.Context, in QuoteInput) (Quote, error) {
	snap, err := s.ref.Snapshot(ctx)
	if err != nil {
		return Quote{}, err
	}

	term := membership.CalculateTerm(in.StartDate, snap.Periods, in.PeriodID)
	q := Quote{PeriodKnown: term.Known, EndDate: term.End, TotalSessions: term.Sessions}
	if amount, ok := membership.DefaultPaymentAmount(snap.Periods, in.PeriodID); ok {
		q.DefaultAmount = &amount
	}

	c := membership.Client{
		PeriodID:       in.PeriodID,
		StartDate:      in.StartDate,
		PaymentAmount:  in.PaymentAmount,
		HasDiscount:    in.HasDiscount,
		DiscountReason: in.DiscountReason,
	}
	q.Paid = membership.IsPaid(c, snap.Periods)

	var ceiling int64
	if p, ok := snap.Periods.Lookup(in.PeriodID); ok {
		ceiling = p.Price
	}
	if err := membership.ValidatePayment(in.PaymentAmount, in.HasDiscount, in.DiscountReason, ceiling); err != nil {
		if ve, ok := membership.AsValidation(err); ok {
			q.PaymentProblem = ve.Message
		}
	}
	return q, nil
}

func (s *service) ByGroups(ctx context.Context, groups []string) ([]Record, error) {
	snap, err := s.ref.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	clients, err := s.repo.ListByGroups(ctx, groups)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(clients))
	for _, c := range clients {
		out = append(out, s.record(c, snap.Periods))
	}
	return out, nil
}
