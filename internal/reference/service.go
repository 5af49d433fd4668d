package reference

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Bu1gur/challenger-crm/internal/logger"
	"github.com/Bu1gur/challenger-crm/internal/membership"
	"github.com/Bu1gur/challenger-crm/internal/metrics"
)

const snapshotKey = "reference:snapshot"

type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

type Service interface {
	Snapshot(ctx context.Context) (Snapshot, error)

	CreatePeriod(ctx context.Context, p membership.Period) (membership.Period, error)
	UpdatePeriod(ctx context.Context, id string, p membership.Period) (membership.Period, error)
	DeletePeriod(ctx context.Context, id string) error

	CreatePaymentMethod(ctx context.Context, m PaymentMethod) (PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, id string, m PaymentMethod) (PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, id string) error

	CreateGroup(ctx context.Context, g Group) (Group, error)
	UpdateGroup(ctx context.Context, id string, g Group) (Group, error)
	DeleteGroup(ctx context.Context, id string) error

	UpdateFreezePolicy(ctx context.Context, p membership.FreezePolicy) (membership.FreezePolicy, error)

	Seed(ctx context.Context, snap Snapshot) error
}

type service struct {
	repo  Repository
	cache Cache
	now   func() time.Time

	// generation is bumped by every write; a snapshot loaded under an older
	// generation must not stay in the cache.
	generation atomic.Uint64
}

func NewService(repo Repository, cache Cache) Service {
	return &service{repo: repo, cache: cache, now: time.Now}
}

// Snapshot reads through the cache. Cache failures are logged and the
// database is used instead.
func (s *service) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	hit, err := s.cache.Get(ctx, snapshotKey, &snap)
	if err != nil {
		logger.WithError(err).Warn("reference cache read failed")
	}
	metrics.RecordCacheLookup(hit)
	if hit {
		return snap, nil
	}

	gen := s.generation.Load()
	snap, err = s.load(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	if s.generation.Load() != gen {
		return snap, nil
	}
	if err := s.cache.Set(ctx, snapshotKey, snap); err != nil {
		logger.WithError(err).Warn("reference cache write failed")
	}
	// A write that landed between the check and Set may already have
	// deleted the key; drop the copy so it is not served until the TTL.
	if s.generation.Load() != gen {
		s.dropCached(ctx)
	}
	return snap, nil
}

func (s *service) load(ctx context.Context) (Snapshot, error) {
	periods, err := s.repo.ListPeriods(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	payments, err := s.repo.ListPaymentMethods(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	policy, err := s.repo.GetFreezePolicy(ctx)
	if errors.Is(err, ErrNotFound) {
		policy = membership.DefaultFreezePolicy()
	} else if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{Periods: periods, Payments: payments, Groups: groups, Freeze: policy}, nil
}

func (s *service) invalidate(ctx context.Context) {
	s.generation.Add(1)
	s.dropCached(ctx)
}

func (s *service) dropCached(ctx context.Context) {
	if err := s.cache.Delete(ctx, snapshotKey); err != nil {
		logger.WithError(err).Warn("reference cache invalidation failed")
	}
}

// generatedID follows the club's historical scheme: a prefix plus the
// creation time in Unix milliseconds.
func (s *service) generatedID(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, s.now().UnixMilli())
}

func (s *service) CreatePeriod(ctx context.Context, p membership.Period) (membership.Period, error) {
	p.Label = strings.TrimSpace(p.Label)
	if err := ValidatePeriod(p); err != nil {
		return membership.Period{}, err
	}
	if p.ID = strings.TrimSpace(p.ID); p.ID == "" {
		p.ID = s.generatedID(fmt.Sprintf("%dm_", p.Months))
	}

	if err := s.repo.CreatePeriod(ctx, p); err != nil {
		return membership.Period{}, err
	}
	s.invalidate(ctx)
	logger.Info("period created", "period", p.ID, "price", p.Price)
	return p, nil
}

func (s *service) UpdatePeriod(ctx context.Context, id string, p membership.Period) (membership.Period, error) {
	p.ID = id
	p.Label = strings.TrimSpace(p.Label)
	if err := ValidatePeriod(p); err != nil {
		return membership.Period{}, err
	}

	if err := s.repo.UpdatePeriod(ctx, p); err != nil {
		return membership.Period{}, err
	}
	s.invalidate(ctx)
	return p, nil
}

func (s *service) DeletePeriod(ctx context.Context, id string) error {
	if err := s.repo.DeletePeriod(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	logger.Info("period deleted", "period", id)
	return nil
}

func (s *service) CreatePaymentMethod(ctx context.Context, m PaymentMethod) (PaymentMethod, error) {
	m = NormalizePaymentMethod(m)
	if err := ValidatePaymentMethod(m); err != nil {
		return PaymentMethod{}, err
	}
	if m.ID = strings.TrimSpace(m.ID); m.ID == "" {
		m.ID = s.generatedID(string(m.Kind) + "_")
	}

	if err := s.repo.CreatePaymentMethod(ctx, m); err != nil {
		return PaymentMethod{}, err
	}
	s.invalidate(ctx)
	return m, nil
}

func (s *service) UpdatePaymentMethod(ctx context.Context, id string, m PaymentMethod) (PaymentMethod, error) {
	m.ID = id
	m = NormalizePaymentMethod(m)
	if err := ValidatePaymentMethod(m); err != nil {
		return PaymentMethod{}, err
	}

	if err := s.repo.UpdatePaymentMethod(ctx, m); err != nil {
		return PaymentMethod{}, err
	}
	s.invalidate(ctx)
	return m, nil
}

func (s *service) DeletePaymentMethod(ctx context.Context, id string) error {
	if err := s.repo.DeletePaymentMethod(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) CreateGroup(ctx context.Context, g Group) (Group, error) {
	g.Name = strings.TrimSpace(g.Name)
	g.Days = SortDays(g.Days)
	if err := ValidateGroup(g); err != nil {
		return Group{}, err
	}
	if g.ID = strings.TrimSpace(g.ID); g.ID == "" {
		g.ID = s.generatedID("g")
	}

	if err := s.repo.CreateGroup(ctx, g); err != nil {
		return Group{}, err
	}
	s.invalidate(ctx)
	return g, nil
}

func (s *service) UpdateGroup(ctx context.Context, id string, g Group) (Group, error) {
	g.ID = id
	g.Name = strings.TrimSpace(g.Name)
	g.Days = SortDays(g.Days)
	if err := ValidateGroup(g); err != nil {
		return Group{}, err
	}

	if err := s.repo.UpdateGroup(ctx, g); err != nil {
		return Group{}, err
	}
	s.invalidate(ctx)
	return g, nil
}

func (s *service) DeleteGroup(ctx context.Context, id string) error {
	if err := s.repo.DeleteGroup(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) UpdateFreezePolicy(ctx context.Context, p membership.FreezePolicy) (membership.FreezePolicy, error) {
	p = NormalizeFreezePolicy(p)
	if err := ValidateFreezePolicy(p); err != nil {
		return membership.FreezePolicy{}, err
	}

	if err := s.repo.SaveFreezePolicy(ctx, p); err != nil {
		return membership.FreezePolicy{}, err
	}
	s.invalidate(ctx)
	logger.Info("freeze policy updated", "max_days", p.MaxDays, "reasons", len(p.Reasons))
	return p, nil
}

// Seed replaces all reference data with snap.
func (s *service) Seed(ctx context.Context, snap Snapshot) error {
	if err := s.repo.ReplaceAll(ctx, snap); err != nil {
		return err
	}
	s.invalidate(ctx)
	logger.Info("reference data seeded",
		"periods", len(snap.Periods),
		"payments", len(snap.Payments),
		"groups", len(snap.Groups),
	)
	return nil
}
