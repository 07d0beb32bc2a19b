package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smp-yps/assignment-api/internal/models"
)

func newSettingMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSettingRepositoryGet(t *testing.T) {
	db, mock, cleanup := newSettingMock(t)
	defer cleanup()
	repo := NewSettingRepository(db)

	rows := sqlmock.NewRows([]string{"key", "value", "description", "updated_by", "updated_at"}).
		AddRow(models.SettingMaxAssignmentsPerWeek, "3", nil, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT key, value, description, updated_by, updated_at FROM settings WHERE key = $1")).
		WithArgs(models.SettingMaxAssignmentsPerWeek).
		WillReturnRows(rows)

	setting, err := repo.Get(context.Background(), models.SettingMaxAssignmentsPerWeek)
	require.NoError(t, err)
	assert.Equal(t, "3", setting.Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingRepositoryGetNotFound(t *testing.T) {
	db, mock, cleanup := newSettingMock(t)
	defer cleanup()
	repo := NewSettingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT key, value, description, updated_by, updated_at FROM settings WHERE key = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newSettingMock(t)
	defer cleanup()
	repo := NewSettingRepository(db)

	mock.ExpectExec("INSERT INTO settings").
		WillReturnResult(sqlmock.NewResult(1, 1))

	actor := "user-1"
	err := repo.Upsert(context.Background(), &models.Setting{
		Key:       models.SettingMaxAssignmentsPerWeek,
		Value:     "4",
		UpdatedBy: &actor,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
