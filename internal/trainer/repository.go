package trainer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrNotFound = errors.New("trainer not found")

const trainerColumns = `id, name, phone, specialization, comment, groups, created_at, updated_at`

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func groupsParam(groups pq.StringArray) pq.StringArray {
	if groups == nil {
		return pq.StringArray{}
	}
	return groups
}

func (r *PostgresRepository) List(ctx context.Context) ([]Trainer, error) {
	var trainers []Trainer
	if err := r.db.SelectContext(ctx, &trainers, `SELECT `+trainerColumns+` FROM trainers ORDER BY name, id`); err != nil {
		return nil, fmt.Errorf("list trainers: %w", err)
	}
	for i := range trainers {
		trainers[i].Groups = groupsParam(trainers[i].Groups)
	}
	return trainers, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*Trainer, error) {
	var t Trainer
	err := r.db.GetContext(ctx, &t, `SELECT `+trainerColumns+` FROM trainers WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get trainer: %w", err)
	}
	t.Groups = groupsParam(t.Groups)
	return &t, nil
}

func (r *PostgresRepository) Create(ctx context.Context, t *Trainer) error {
	query := `
		INSERT INTO trainers (name, phone, specialization, comment, groups)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, t.Name, t.Phone, t.Specialization, t.Comment, groupsParam(t.Groups)).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create trainer: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, t *Trainer) error {
	query := `
		UPDATE trainers
		SET name = $2, phone = $3, specialization = $4, comment = $5, groups = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, t.ID, t.Name, t.Phone, t.Specialization, t.Comment, groupsParam(t.Groups)).
		Scan(&t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update trainer: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trainers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete trainer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
