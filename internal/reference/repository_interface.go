package reference

import (
	"context"

	"github.com/Bu1gur/challenger-crm/internal/membership"
)

type Repository interface {
	ListPeriods(ctx context.Context) (membership.Catalog, error)
	CreatePeriod(ctx context.Context, p membership.Period) error
	UpdatePeriod(ctx context.Context, p membership.Period) error
	DeletePeriod(ctx context.Context, id string) error

	ListPaymentMethods(ctx context.Context) ([]PaymentMethod, error)
	CreatePaymentMethod(ctx context.Context, m PaymentMethod) error
	UpdatePaymentMethod(ctx context.Context, m PaymentMethod) error
	DeletePaymentMethod(ctx context.Context, id string) error

	ListGroups(ctx context.Context) ([]Group, error)
	CreateGroup(ctx context.Context, g Group) error
	UpdateGroup(ctx context.Context, g Group) error
	DeleteGroup(ctx context.Context, id string) error

	GetFreezePolicy(ctx context.Context) (membership.FreezePolicy, error)
	SaveFreezePolicy(ctx context.Context, p membership.FreezePolicy) error

	ReplaceAll(ctx context.Context, snap Snapshot) error
}
