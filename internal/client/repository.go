package client

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Bu1gur/challenger-crm/internal/membership"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

const clientColumns = `id, contract_number, name, surname, phone, address, birth_date, group_id, trainer, comment,
	period_id, start_date, end_date, payment_amount, payment_method, has_discount, discount_reason, paid,
	total_sessions, status, freeze, freeze_history, visits, payment_history, deleted`

type clientRow struct {
	ID             int64              `db:"id"`
	ContractNumber string             `db:"contract_number"`
	Name           string             `db:"name"`
	Surname        string             `db:"surname"`
	Phone          string             `db:"phone"`
	Address        string             `db:"address"`
	BirthDate      string             `db:"birth_date"`
	GroupID        string             `db:"group_id"`
	Trainer        string             `db:"trainer"`
	Comment        string             `db:"comment"`
	PeriodID       string             `db:"period_id"`
	StartDate      sql.NullTime       `db:"start_date"`
	EndDate        sql.NullTime       `db:"end_date"`
	PaymentAmount  sql.NullInt64      `db:"payment_amount"`
	PaymentMethod  string             `db:"payment_method"`
	HasDiscount    bool               `db:"has_discount"`
	DiscountReason string             `db:"discount_reason"`
	Paid           bool               `db:"paid"`
	TotalSessions  sql.NullInt64      `db:"total_sessions"`
	Status         string             `db:"status"`
	Freeze         types.NullJSONText `db:"freeze"`
	FreezeHistory  types.JSONText     `db:"freeze_history"`
	Visits         types.JSONText     `db:"visits"`
	PaymentHistory types.JSONText     `db:"payment_history"`
	Deleted        bool               `db:"deleted"`
}

func dateFromNull(t sql.NullTime) membership.Date {
	if !t.Valid {
		return membership.Date{}
	}
	return membership.DateOf(t.Time)
}

func dateParam(d membership.Date) interface{} {
	if d.IsZero() {
		return nil
	}
	return d.Time()
}

func unmarshalColumn(name string, raw types.JSONText, dest interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (r clientRow) toDomain() (membership.Client, error) {
	id := r.ID
	c := membership.Client{
		ID:             &id,
		ContractNumber: r.ContractNumber,
		Name:           r.Name,
		Surname:        r.Surname,
		Phone:          r.Phone,
		Address:        r.Address,
		BirthDate:      r.BirthDate,
		Group:          r.GroupID,
		Trainer:        r.Trainer,
		Comment:        r.Comment,
		PeriodID:       r.PeriodID,
		StartDate:      dateFromNull(r.StartDate),
		EndDate:        dateFromNull(r.EndDate),
		PaymentMethod:  r.PaymentMethod,
		HasDiscount:    r.HasDiscount,
		DiscountReason: r.DiscountReason,
		Paid:           r.Paid,
		Status:         membership.Status(r.Status),
		Deleted:        r.Deleted,
	}
	if r.PaymentAmount.Valid {
		amount := r.PaymentAmount.Int64
		c.PaymentAmount = &amount
	}
	if r.TotalSessions.Valid {
		total := int(r.TotalSessions.Int64)
		c.TotalSessions = &total
	}

	if r.Freeze.Valid {
		var f FreezeDTO
		if err := unmarshalColumn("freeze", r.Freeze.JSONText, &f); err != nil {
			return membership.Client{}, err
		}
		rec, err := f.toDomain()
		if err != nil {
			return membership.Client{}, fmt.Errorf("decode freeze: %w", err)
		}
		c.Freeze = &rec
	}

	var history []FreezeDTO
	if err := unmarshalColumn("freeze_history", r.FreezeHistory, &history); err != nil {
		return membership.Client{}, err
	}
	c.FreezeHistory = make([]membership.FreezeRecord, 0, len(history))
	for _, h := range history {
		rec, err := h.toDomain()
		if err != nil {
			return membership.Client{}, fmt.Errorf("decode freeze_history: %w", err)
		}
		c.FreezeHistory = append(c.FreezeHistory, rec)
	}

	var visits []string
	if err := unmarshalColumn("visits", r.Visits, &visits); err != nil {
		return membership.Client{}, err
	}
	dates := make([]membership.Date, 0, len(visits))
	for _, v := range visits {
		d, err := membership.ParseDate(v)
		if err != nil {
			return membership.Client{}, fmt.Errorf("decode visits: %w", err)
		}
		dates = append(dates, d)
	}
	c.Visits = membership.NewVisitLedger(dates...)

	var payments []PaymentEntryDTO
	if err := unmarshalColumn("payment_history", r.PaymentHistory, &payments); err != nil {
		return membership.Client{}, err
	}
	c.PaymentHistory = make([]membership.PaymentEntry, 0, len(payments))
	for _, p := range payments {
		entry, err := p.toDomain()
		if err != nil {
			return membership.Client{}, fmt.Errorf("decode payment_history: %w", err)
		}
		c.PaymentHistory = append(c.PaymentHistory, entry)
	}

	return c, nil
}

// writeArgs returns the column values shared by INSERT and UPDATE, in
// contract_number..deleted order.
func writeArgs(c membership.Client) ([]interface{}, error) {
	var freeze interface{}
	if c.Freeze != nil {
		raw, err := json.Marshal(freezeFromDomain(c.Freeze))
		if err != nil {
			return nil, err
		}
		freeze = types.JSONText(raw)
	}

	history := make([]FreezeDTO, 0, len(c.FreezeHistory))
	for i := range c.FreezeHistory {
		history = append(history, *freezeFromDomain(&c.FreezeHistory[i]))
	}
	payments := make([]PaymentEntryDTO, 0, len(c.PaymentHistory))
	for _, p := range c.PaymentHistory {
		payments = append(payments, paymentFromDomain(p))
	}

	historyJSON, err := json.Marshal(history)
	if err != nil {
		return nil, err
	}
	visitsJSON, err := json.Marshal(c.Visits.Strings())
	if err != nil {
		return nil, err
	}
	paymentsJSON, err := json.Marshal(payments)
	if err != nil {
		return nil, err
	}

	var amount, total interface{}
	if c.PaymentAmount != nil {
		amount = *c.PaymentAmount
	}
	if c.TotalSessions != nil {
		total = int64(*c.TotalSessions)
	}

	return []interface{}{
		c.ContractNumber, c.Name, c.Surname, c.Phone, c.Address, c.BirthDate, c.Group, c.Trainer, c.Comment,
		c.PeriodID, dateParam(c.StartDate), dateParam(c.EndDate), amount, c.PaymentMethod, c.HasDiscount,
		c.DiscountReason, c.Paid, total, string(c.Status), freeze,
		types.JSONText(historyJSON), types.JSONText(visitsJSON), types.JSONText(paymentsJSON), c.Deleted,
	}, nil
}

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) selectClients(ctx context.Context, query string, args ...interface{}) ([]membership.Client, error) {
	var rows []clientRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	clients := make([]membership.Client, 0, len(rows))
	for _, row := range rows {
		c, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("client %d: %w", row.ID, err)
		}
		clients = append(clients, c)
	}
	return clients, nil
}

func (r *PostgresRepository) List(ctx context.Context, includeDeleted bool) ([]membership.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients`
	if !includeDeleted {
		query += ` WHERE NOT deleted`
	}
	return r.selectClients(ctx, query+` ORDER BY id`)
}

func (r *PostgresRepository) ListByGroups(ctx context.Context, groups []string) ([]membership.Client, error) {
	if len(groups) == 0 {
		return []membership.Client{}, nil
	}
	query := `SELECT ` + clientColumns + ` FROM clients WHERE NOT deleted AND group_id = ANY($1) ORDER BY id`
	return r.selectClients(ctx, query, pq.Array(groups))
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (membership.Client, error) {
	var row clientRow
	err := r.db.GetContext(ctx, &row, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return membership.Client{}, ErrNotFound
	}
	if err != nil {
		return membership.Client{}, fmt.Errorf("get client: %w", err)
	}
	return row.toDomain()
}

func (r *PostgresRepository) Create(ctx context.Context, c membership.Client) (int64, error) {
	args, err := writeArgs(c)
	if err != nil {
		return 0, fmt.Errorf("encode client: %w", err)
	}

	query := `
		INSERT INTO clients (contract_number, name, surname, phone, address, birth_date, group_id, trainer, comment,
			period_id, start_date, end_date, payment_amount, payment_method, has_discount,
			discount_reason, paid, total_sessions, status, freeze,
			freeze_history, visits, payment_history, deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		RETURNING id
	`
	var id int64
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("create client: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) Update(ctx context.Context, c membership.Client) error {
	if c.ID == nil {
		return ErrNotFound
	}
	args, err := writeArgs(c)
	if err != nil {
		return fmt.Errorf("encode client: %w", err)
	}

	query := `
		UPDATE clients SET contract_number = $1, name = $2, surname = $3, phone = $4, address = $5,
			birth_date = $6, group_id = $7, trainer = $8, comment = $9, period_id = $10,
			start_date = $11, end_date = $12, payment_amount = $13, payment_method = $14, has_discount = $15,
			discount_reason = $16, paid = $17, total_sessions = $18, status = $19, freeze = $20,
			freeze_history = $21, visits = $22, payment_history = $23, deleted = $24, updated_at = NOW()
		WHERE id = $25
	`
	res, err := r.db.ExecContext(ctx, query, append(args, *c.ID)...)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	return expectAffected(res)
}

func (r *PostgresRepository) SetDeleted(ctx context.Context, id int64, deleted bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE clients SET deleted = $2, updated_at = NOW() WHERE id = $1`, id, deleted)
	if err != nil {
		return fmt.Errorf("set client deleted: %w", err)
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
