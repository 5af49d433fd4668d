package reference

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Bu1gur/challenger-crm/internal/membership"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrNotFound  = errors.New("reference entry not found")
	ErrDuplicate = errors.New("reference entry already exists")
)

const uniqueViolation = "23505"

type periodRow struct {
	ID       string `db:"id"`
	Label    string `db:"label"`
	Price    int64  `db:"price"`
	Months   int    `db:"months"`
	Sessions int    `db:"sessions"`
}

type paymentRow struct {
	ID    string         `db:"id"`
	Label string         `db:"label"`
	Kind  string         `db:"kind"`
	Banks pq.StringArray `db:"banks"`
}

type groupRow struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	Weekdays  pq.StringArray `db:"weekdays"`
	TimeStart string         `db:"time_start"`
	TimeEnd   string         `db:"time_end"`
	Comment   string         `db:"comment"`
}

type freezeRow struct {
	MaxDays        int            `db:"max_days"`
	Reasons        pq.StringArray `db:"reasons"`
	RequireConfirm bool           `db:"require_confirm"`
}

func (r groupRow) toDomain() Group {
	days := make([]Weekday, 0, len(r.Weekdays))
	for _, s := range r.Weekdays {
		if d, ok := ParseWeekday(s); ok {
			days = append(days, d)
		}
	}
	return Group{ID: r.ID, Name: r.Name, Days: SortDays(days), TimeStart: r.TimeStart, TimeEnd: r.TimeEnd, Comment: r.Comment}
}

func weekdayStrings(days []Weekday) pq.StringArray {
	out := make(pq.StringArray, 0, len(days))
	for _, d := range SortDays(days) {
		out = append(out, string(d))
	}
	return out
}

// textArray never yields NULL; the array columns are NOT NULL.
func textArray(values []string) pq.StringArray {
	if values == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(values)
}

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func mapWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

func expectAffected(res sql.Result, err error) error {
	if err != nil {
		return mapWriteError(err)
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

func (r *PostgresRepository) ListPeriods(ctx context.Context) (membership.Catalog, error) {
	var rows []periodRow
	query := `SELECT id, label, price, months, sessions FROM periods ORDER BY position, id`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}

	catalog := make(membership.Catalog, 0, len(rows))
	for _, row := range rows {
		catalog = append(catalog, membership.Period{
			ID: row.ID, Label: row.Label, Price: row.Price, Months: row.Months, Sessions: row.Sessions,
		})
	}
	return catalog, nil
}

func (r *PostgresRepository) CreatePeriod(ctx context.Context, p membership.Period) error {
	query := `
		INSERT INTO periods (id, label, price, months, sessions, position)
		VALUES ($1, $2, $3, $4, $5, (SELECT COALESCE(MAX(position), 0) + 1 FROM periods))
	`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.Label, p.Price, p.Months, p.Sessions)
	return mapWriteError(err)
}

func (r *PostgresRepository) UpdatePeriod(ctx context.Context, p membership.Period) error {
	query := `UPDATE periods SET label = $2, price = $3, months = $4, sessions = $5 WHERE id = $1`
	return expectAffected(r.db.ExecContext(ctx, query, p.ID, p.Label, p.Price, p.Months, p.Sessions))
}

func (r *PostgresRepository) DeletePeriod(ctx context.Context, id string) error {
	return expectAffected(r.db.ExecContext(ctx, `DELETE FROM periods WHERE id = $1`, id))
}

func (r *PostgresRepository) ListPaymentMethods(ctx context.Context) ([]PaymentMethod, error) {
	var rows []paymentRow
	query := `SELECT id, label, kind, banks FROM payment_methods ORDER BY position, id`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}

	methods := make([]PaymentMethod, 0, len(rows))
	for _, row := range rows {
		banks := []string(row.Banks)
		if banks == nil {
			banks = []string{}
		}
		methods = append(methods, PaymentMethod{ID: row.ID, Label: row.Label, Kind: PaymentKind(row.Kind), Banks: banks})
	}
	return methods, nil
}

func (r *PostgresRepository) CreatePaymentMethod(ctx context.Context, m PaymentMethod) error {
	query := `
		INSERT INTO payment_methods (id, label, kind, banks, position)
		VALUES ($1, $2, $3, $4, (SELECT COALESCE(MAX(position), 0) + 1 FROM payment_methods))
	`
	_, err := r.db.ExecContext(ctx, query, m.ID, m.Label, string(m.Kind), textArray(m.Banks))
	return mapWriteError(err)
}

func (r *PostgresRepository) UpdatePaymentMethod(ctx context.Context, m PaymentMethod) error {
	query := `UPDATE payment_methods SET label = $2, kind = $3, banks = $4 WHERE id = $1`
	return expectAffected(r.db.ExecContext(ctx, query, m.ID, m.Label, string(m.Kind), textArray(m.Banks)))
}

func (r *PostgresRepository) DeletePaymentMethod(ctx context.Context, id string) error {
	return expectAffected(r.db.ExecContext(ctx, `DELETE FROM payment_methods WHERE id = $1`, id))
}

func (r *PostgresRepository) ListGroups(ctx context.Context) ([]Group, error) {
	var rows []groupRow
	query := `SELECT id, name, weekdays, time_start, time_end, comment FROM groups ORDER BY position, id`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	groups := make([]Group, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, row.toDomain())
	}
	return groups, nil
}

func (r *PostgresRepository) CreateGroup(ctx context.Context, g Group) error {
	query := `
		INSERT INTO groups (id, name, weekdays, time_start, time_end, comment, position)
		VALUES ($1, $2, $3, $4, $5, $6, (SELECT COALESCE(MAX(position), 0) + 1 FROM groups))
	`
	_, err := r.db.ExecContext(ctx, query, g.ID, g.Name, weekdayStrings(g.Days), g.TimeStart, g.TimeEnd, g.Comment)
	return mapWriteError(err)
}

func (r *PostgresRepository) UpdateGroup(ctx context.Context, g Group) error {
	query := `UPDATE groups SET name = $2, weekdays = $3, time_start = $4, time_end = $5, comment = $6 WHERE id = $1`
	return expectAffected(r.db.ExecContext(ctx, query, g.ID, g.Name, weekdayStrings(g.Days), g.TimeStart, g.TimeEnd, g.Comment))
}

func (r *PostgresRepository) DeleteGroup(ctx context.Context, id string) error {
	return expectAffected(r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id))
}

// GetFreezePolicy returns ErrNotFound until a policy has been saved.
func (r *PostgresRepository) GetFreezePolicy(ctx context.Context) (membership.FreezePolicy, error) {
	var row freezeRow
	err := r.db.GetContext(ctx, &row, `SELECT max_days, reasons, require_confirm FROM freeze_policy WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return membership.FreezePolicy{}, ErrNotFound
	}
	if err != nil {
		return membership.FreezePolicy{}, fmt.Errorf("get freeze policy: %w", err)
	}
	return membership.FreezePolicy{MaxDays: row.MaxDays, Reasons: []string(row.Reasons), RequireConfirm: row.RequireConfirm}, nil
}

const upsertFreezePolicy = `
	INSERT INTO freeze_policy (id, max_days, reasons, require_confirm)
	VALUES (1, $1, $2, $3)
	ON CONFLICT (id) DO UPDATE
	SET max_days = EXCLUDED.max_days, reasons = EXCLUDED.reasons, require_confirm = EXCLUDED.require_confirm
`

func (r *PostgresRepository) SaveFreezePolicy(ctx context.Context, p membership.FreezePolicy) error {
	_, err := r.db.ExecContext(ctx, upsertFreezePolicy, p.MaxDays, textArray(p.Reasons), p.RequireConfirm)
	if err != nil {
		return fmt.Errorf("save freeze policy: %w", err)
	}
	return nil
}

// ReplaceAll swaps every reference table for the contents of snap in one transaction.
func (r *PostgresRepository) ReplaceAll(ctx context.Context, snap Snapshot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"periods", "payment_methods", "groups"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, p := range snap.Periods {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO periods (id, label, price, months, sessions, position) VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, p.Label, p.Price, p.Months, p.Sessions, i+1)
		if err != nil {
			return fmt.Errorf("insert period %s: %w", p.ID, mapWriteError(err))
		}
	}

	for i, m := range snap.Payments {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO payment_methods (id, label, kind, banks, position) VALUES ($1, $2, $3, $4, $5)`,
			m.ID, m.Label, string(m.Kind), textArray(m.Banks), i+1)
		if err != nil {
			return fmt.Errorf("insert payment method %s: %w", m.ID, mapWriteError(err))
		}
	}

	for i, g := range snap.Groups {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO groups (id, name, weekdays, time_start, time_end, comment, position) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			g.ID, g.Name, weekdayStrings(g.Days), g.TimeStart, g.TimeEnd, g.Comment, i+1)
		if err != nil {
			return fmt.Errorf("insert group %s: %w", g.ID, mapWriteError(err))
		}
	}

	if _, err := tx.ExecContext(ctx, upsertFreezePolicy, snap.Freeze.MaxDays, textArray(snap.Freeze.Reasons), snap.Freeze.RequireConfirm); err != nil {
		return fmt.Errorf("save freeze policy: %w", err)
	}

	return tx.Commit()
}
