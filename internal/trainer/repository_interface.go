package trainer

import "context"

type Repository interface {
	List(ctx context.Context) ([]Trainer, error)
	Get(ctx context.Context, id int64) (*Trainer, error)
	Create(ctx context.Context, t *Trainer) error
	Update(ctx context.Context, t *Trainer) error
	Delete(ctx context.Context, id int64) error
}
