package repositories

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var profileCols = []string{"id", "email", "nombre_completo", "reset_code", "reset_code_expires", "created_at", "updated_at"}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestProfileGetByEmailWithoutPendingCode(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE email = $1")).
		WithArgs("user@x.com").
		WillReturnRows(sqlmock.NewRows(profileCols).AddRow(id.String(), "user@x.com", "Ana", nil, nil, now, now))

	p, err := repo.GetByEmail(context.Background(), "user@x.com")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, "Ana", p.NombreCompleto)
	assert.Nil(t, p.ResetCode)
	assert.Nil(t, p.ResetCodeExpires)
	assert.False(t, p.HasPendingCode())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileGetByEmailWithPendingCode(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)
	id := uuid.New()
	now := time.Now()
	expires := now.Add(10 * time.Minute)

	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE email = $1")).
		WithArgs("user@x.com").
		WillReturnRows(sqlmock.NewRows(profileCols).AddRow(id.String(), "user@x.com", "", "012345", expires, now, now))

	p, err := repo.GetByEmail(context.Background(), "user@x.com")
	require.NoError(t, err)
	require.True(t, p.HasPendingCode())
	assert.Equal(t, "012345", *p.ResetCode)
	assert.True(t, expires.Equal(*p.ResetCodeExpires))
}

func TestProfileGetByEmailNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE email = $1")).
		WithArgs("ghost@x.com").
		WillReturnError(sql.ErrNoRows)

	p, err := repo.GetByEmail(context.Background(), "ghost@x.com")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestProfileGetByEmailDatabaseError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE email = $1")).
		WillReturnError(errors.New("connection reset"))

	p, err := repo.GetByEmail(context.Background(), "user@x.com")
	require.Error(t, err)
	assert.Nil(t, p)
}

func TestProfileSetResetCodeWritesBothColumns(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)
	id := uuid.New()
	expires := time.Now().Add(10 * time.Minute)

	mock.ExpectExec(regexp.QuoteMeta("SET reset_code = $1, reset_code_expires = $2")).
		WithArgs("123456", expires, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetResetCode(context.Background(), id, "123456", expires))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileSetResetCodeUnknownID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetResetCode(context.Background(), uuid.New(), "123456", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProfileClearResetCode(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("SET reset_code = NULL, reset_code_expires = NULL")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ClearResetCode(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}
