package user

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUserMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewRepository(sqlxDB), mock, func() { sqlxDB.Close() }
}

func TestCreateAndFindUser(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	ctx := context.Background()
	now := time.Now()
	cols := []string{"id", "name", "email", "password_hash", "role", "created_at"}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (name, email, password_hash, role) VALUES ($1, $2, $3, $4) RETURNING id, name, email, password_hash, role, created_at")).
		WithArgs("Айгуль", "desk@challenger.kg", "hash", "manager").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, "Айгуль", "desk@challenger.kg", "hash", "manager", now))

	u, err := repo.Create(ctx, "Айгуль", "desk@challenger.kg", "hash", "manager")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, password_hash, role, created_at FROM users WHERE email = $1")).
		WithArgs("desk@challenger.kg").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, "Айгуль", "desk@challenger.kg", "hash", "manager", now))

	fu, err := repo.FindByEmail(ctx, "desk@challenger.kg")
	require.NoError(t, err)
	assert.Equal(t, "Айгуль", fu.Name)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)")).
		WithArgs("desk@challenger.kg").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.EmailExists(ctx, "desk@challenger.kg")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
