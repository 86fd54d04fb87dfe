package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvetinski/fintech-account/internal/adapters/repository"
	"github.com/kvetinski/fintech-account/internal/domain"
)

var accountCols = []string{"id", "name", "phone_nr", "created_time", "modified_time", "deleted_time"}

func newMockRepo(t *testing.T) (*repository.Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	return repository.New(db), mock
}

func TestGetByIDFiltersDeletedRows(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM account\s+WHERE id = \$1 AND deleted_time IS NULL`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(accountCols).AddRow(int64(1), "John", nil, now, now, nil))

	acc, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(1), acc.ID)
	assert.Equal(t, "John", acc.Name)
	assert.Empty(t, acc.PhoneNumber)
	assert.True(t, acc.IsActive())
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT .* FROM account`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(accountCols))

	_, err := repo.GetByID(context.Background(), 2)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestExistsByPhone(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT EXISTS .*phone_nr = \$1 AND deleted_time IS NULL`).
		WithArgs("+1234567890").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByPhone(context.Background(), "+1234567890")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestInsertStoresEmptyPhoneAsNull(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO account`).
		WithArgs("No Phone", nil, now, now).
		WillReturnRows(sqlmock.NewRows(accountCols).AddRow(int64(10), "No Phone", nil, now, now, nil))

	acc, err := repo.Insert(context.Background(), domain.Account{Name: "No Phone", CreatedAt: now, ModifiedAt: now})
	require.NoError(t, err)
	assert.Equal(t, int64(10), acc.ID)
}

func TestInsertMapsUniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO account`).
		WithArgs("Jane", "+1234567890", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "account_phone_nr_active_key"})

	_, err := repo.Insert(context.Background(), domain.Account{Name: "Jane", PhoneNumber: "+1234567890", CreatedAt: now, ModifiedAt: now})
	require.ErrorIs(t, err, domain.ErrDuplicatePhoneNumber)
}

func TestUpdateWritesDeletionMarker(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	deleted := created.Add(time.Hour)

	acc := domain.Account{ID: 4, Name: "John", PhoneNumber: "+1234567890", CreatedAt: created}
	acc.SoftDelete(deleted)

	mock.ExpectQuery(`UPDATE account\s+SET .* WHERE id = \$1 AND deleted_time IS NULL`).
		WithArgs(int64(4), "John", "+1234567890", nil, deleted, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(accountCols).AddRow(int64(4), "John", "+1234567890", created, deleted, deleted))

	saved, err := repo.Update(context.Background(), acc)
	require.NoError(t, err)
	assert.False(t, saved.IsActive())
}

func TestUpdateMapsUniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`UPDATE account`).
		WithArgs(int64(4), "John", "+1987654321", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "account_phone_nr_active_key"})

	_, err := repo.Update(context.Background(), domain.Account{ID: 4, Name: "John", PhoneNumber: "+1987654321", CreatedAt: now, ModifiedAt: now})
	require.ErrorIs(t, err, domain.ErrDuplicatePhoneNumber)
}

func TestUpdateMissingRow(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`UPDATE account`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), domain.Account{ID: 9, Name: "X"})
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestWithinTxCommitsAndUsesTx(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(accountCols).AddRow(int64(1), "John", "+1234567890", now, now, nil))
	mock.ExpectCommit()

	err := repo.WithinTx(context.Background(), func(ctx context.Context) error {
		_, err := repo.GetByIDForUpdate(ctx, 1)
		return err
	})
	require.NoError(t, err)
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	repo, mock := newMockRepo(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := repo.WithinTx(context.Background(), func(ctx context.Context) error {
		return repo.WithinTx(ctx, func(context.Context) error { return boom })
	})
	require.ErrorIs(t, err, boom)
}
