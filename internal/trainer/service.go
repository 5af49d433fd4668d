package trainer

import (
	"context"
	"sort"
	"strings"

	"github.com/Bu1gur/challenger-crm/internal/client"
	"github.com/Bu1gur/challenger-crm/internal/logger"
	"github.com/Bu1gur/challenger-crm/internal/membership"
	"github.com/Bu1gur/challenger-crm/internal/reference"
)

type ReferenceSource interface {
	Snapshot(ctx context.Context) (reference.Snapshot, error)
}

// ClientSource lists the live clients of the given groups.
type ClientSource interface {
	ByGroups(ctx context.Context, groups []string) ([]client.Record, error)
}

type Service interface {
	List(ctx context.Context) ([]Trainer, error)
	Get(ctx context.Context, id int64) (*Trainer, error)
	Create(ctx context.Context, req Request) (*Trainer, error)
	Update(ctx context.Context, id int64, req Request) (*Trainer, error)
	Delete(ctx context.Context, id int64) error

	Clients(ctx context.Context, id int64, group string) ([]client.Record, error)
	Schedule(ctx context.Context, id int64) ([]ScheduleEntry, error)
}

type service struct {
	repo    Repository
	ref     ReferenceSource
	clients ClientSource
}

func NewService(repo Repository, ref ReferenceSource, clients ClientSource) Service {
	return &service{repo: repo, ref: ref, clients: clients}
}

// List fills ClientsCount from one lookup over the union of all groups.
func (s *service) List(ctx context.Context) ([]Trainer, error) {
	trainers, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	var groups []string
	seen := map[string]bool{}
	for _, t := range trainers {
		for _, g := range t.Groups {
			if !seen[g] {
				seen[g] = true
				groups = append(groups, g)
			}
		}
	}
	if len(groups) == 0 {
		return trainers, nil
	}

	records, err := s.clients.ByGroups(ctx, groups)
	if err != nil {
		return nil, err
	}
	perGroup := make(map[string]int, len(groups))
	for _, r := range records {
		perGroup[r.Group]++
	}
	for i := range trainers {
		for _, g := range trainers[i].Groups {
			trainers[i].ClientsCount += perGroup[g]
		}
	}
	return trainers, nil
}

func (s *service) Get(ctx context.Context, id int64) (*Trainer, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(t.Groups) == 0 {
		return t, nil
	}
	records, err := s.clients.ByGroups(ctx, t.Groups)
	if err != nil {
		return nil, err
	}
	t.ClientsCount = len(records)
	return t, nil
}

// fromRequest trims the fields and checks that every group exists.
func (s *service) fromRequest(ctx context.Context, req Request) (*Trainer, error) {
	snap, err := s.ref.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	groups := make([]string, 0, len(req.Groups))
	seen := make(map[string]bool, len(req.Groups))
	for _, g := range req.Groups {
		g = strings.TrimSpace(g)
		if seen[g] {
			continue
		}
		if _, ok := snap.Group(g); !ok {
			return nil, membership.Invalid(membership.KindUnresolvedRef, "unknown group %q", g)
		}
		seen[g] = true
		groups = append(groups, g)
	}

	return &Trainer{
		Name:           strings.TrimSpace(req.Name),
		Phone:          strings.TrimSpace(req.Phone),
		Specialization: strings.TrimSpace(req.Specialization),
		Comment:        req.Comment,
		Groups:         groups,
	}, nil
}

func (s *service) Create(ctx context.Context, req Request) (*Trainer, error) {
	t, err := s.fromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	logger.Info("trainer created", "trainer_id", t.ID, "groups", len(t.Groups))
	return t, nil
}

func (s *service) Update(ctx context.Context, id int64, req Request) (*Trainer, error) {
	t, err := s.fromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	t.ID = id
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes the trainer for good. Clients keep the trainer name they
// were saved with.
func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("trainer deleted", "trainer_id", id)
	return nil
}

// Clients are derived from group membership: every live client of any of
// the trainer's groups, or of one of them when group is set.
func (s *service) Clients(ctx context.Context, id int64, group string) ([]client.Record, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	groups := []string(t.Groups)
	if group != "" {
		groups = nil
		for _, g := range t.Groups {
			if g == group {
				groups = []string{g}
				break
			}
		}
	}
	if len(groups) == 0 {
		return []client.Record{}, nil
	}
	return s.clients.ByGroups(ctx, groups)
}

// Schedule lists the trainer's weekly slots in week order, then by start
// time. Groups no longer in the reference data are skipped.
func (s *service) Schedule(ctx context.Context, id int64) ([]ScheduleEntry, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	snap, err := s.ref.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	order := make(map[reference.Weekday]int, len(reference.Week))
	for i, d := range reference.Week {
		order[d] = i
	}

	entries := []ScheduleEntry{}
	for _, gid := range t.Groups {
		g, ok := snap.Group(gid)
		if !ok {
			continue
		}
		for _, d := range g.Days {
			entries = append(entries, ScheduleEntry{
				Day:       string(d),
				GroupID:   g.ID,
				GroupName: g.Name,
				TimeStart: g.TimeStart,
				TimeEnd:   g.TimeEnd,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := order[reference.Weekday(entries[i].Day)], order[reference.Weekday(entries[j].Day)]
		if di != dj {
			return di < dj
		}
		return entries[i].TimeStart < entries[j].TimeStart
	})
	return entries, nil
}
