package client

import (
	"context"

	"github.com/Bu1gur/challenger-crm/internal/membership"
)

type Repository interface {
	List(ctx context.Context, includeDeleted bool) ([]membership.Client, error)
	ListByGroups(ctx context.Context, groups []string) ([]membership.Client, error)
	Get(ctx context.Context, id int64) (membership.Client, error)
	Create(ctx context.Context, c membership.Client) (int64, error)
	Update(ctx context.Context, c membership.Client) error
	SetDeleted(ctx context.Context, id int64, deleted bool) error
}
