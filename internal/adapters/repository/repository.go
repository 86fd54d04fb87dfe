package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/kvetinski/fintech-account/internal/domain"
	"github.com/kvetinski/fintech-account/internal/telemetry"
)

const (
	uniqueViolation  = "23505"
	phoneActiveIndex = "account_phone_nr_active_key"

	accountColumns = `id, name, phone_nr, created_time, modified_time, deleted_time`
)

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

type txKey struct{}

type Repository struct {
	db      *sql.DB
	metrics *telemetry.Metrics
}

func New(db *sql.DB) *Repository {
	return NewWithMetrics(db, nil)
}

func NewWithMetrics(db *sql.DB, metrics *telemetry.Metrics) *Repository {
	return &Repository{
		db:      db,
		metrics: metrics,
	}
}

// WithinTx runs fn in a transaction carried by the context passed to fn.
// Repository calls made with that context join the transaction; a nested
// WithinTx reuses the outer one.
func (r *Repository) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (domain.Account, error) {
	return r.getByID(ctx, "get_by_id", `
		SELECT `+accountColumns+`
		FROM account
		WHERE id = $1 AND deleted_time IS NULL
	`, id)
}

// GetByIDForUpdate locks the active row until the surrounding transaction ends.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (domain.Account, error) {
	return r.getByID(ctx, "get_by_id_for_update", `
		SELECT `+accountColumns+`
		FROM account
		WHERE id = $1 AND deleted_time IS NULL
		FOR UPDATE
	`, id)
}

func (r *Repository) getByID(ctx context.Context, method, q string, id int64) (domain.Account, error) {
	start := time.Now()
	status := "ok"
	defer func() {
		r.metrics.ObserveDB(method, status, time.Since(start))
	}()

	a, err := scanAccount(r.conn(ctx).QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			status = "not_found"
			return domain.Account{}, domain.ErrAccountNotFound
		}

		status = "error"
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}

	return a, nil
}

func (r *Repository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	start := time.Now()
	status := "ok"
	defer func() {
		r.metrics.ObserveDB("exists_by_phone", status, time.Since(start))
	}()

	const q = `
		SELECT EXISTS (
			SELECT 1 FROM account
			WHERE phone_nr = $1 AND deleted_time IS NULL
		)
	`

	var exists bool
	if err := r.conn(ctx).QueryRowContext(ctx, q, phone).Scan(&exists); err != nil {
		status = "error"
		return false, fmt.Errorf("check phone: %w", err)
	}

	return exists, nil
}

func (r *Repository) Insert(ctx context.Context, acc domain.Account) (domain.Account, error) {
	start := time.Now()
	status := "ok"
	defer func() {
		r.metrics.ObserveDB("insert", status, time.Since(start))
	}()

	const q = `
		INSERT INTO account (name, phone_nr, is_active, created_time, modified_time)
		VALUES ($1, $2, TRUE, $3, $4)
		RETURNING ` + accountColumns

	a, err := scanAccount(r.conn(ctx).QueryRowContext(ctx, q,
		acc.Name, nullString(acc.PhoneNumber), acc.CreatedAt, acc.ModifiedAt,
	))
	if err != nil {
		if isPhoneConflict(err) {
			status = "conflict"
			return domain.Account{}, fmt.Errorf("insert account: %w", domain.ErrDuplicatePhoneNumber)
		}

		status = "error"
		return domain.Account{}, fmt.Errorf("insert account: %w", err)
	}

	return a, nil
}

// Update writes the mutable fields of an active account. The deletion
// marker pair is derived from acc.DeletedAt.
func (r *Repository) Update(ctx context.Context, acc domain.Account) (domain.Account, error) {
	start := time.Now()
	status := "ok"
	defer func() {
		r.metrics.ObserveDB("update", status, time.Since(start))
	}()

	const q = `
		UPDATE account
		SET name = $2,
		    phone_nr = $3,
		    is_active = $4,
		    modified_time = $5,
		    deleted_time = $6
		WHERE id = $1 AND deleted_time IS NULL
		RETURNING ` + accountColumns

	var isActive sql.NullBool
	if acc.IsActive() {
		isActive = sql.NullBool{Bool: true, Valid: true}
	}

	a, err := scanAccount(r.conn(ctx).QueryRowContext(ctx, q,
		acc.ID, acc.Name, nullString(acc.PhoneNumber), isActive, acc.ModifiedAt, acc.DeletedAt,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			status = "not_found"
			return domain.Account{}, domain.ErrAccountNotFound
		}
		if isPhoneConflict(err) {
			status = "conflict"
			return domain.Account{}, fmt.Errorf("update account: %w", domain.ErrDuplicatePhoneNumber)
		}

		status = "error"
		return domain.Account{}, fmt.Errorf("update account: %w", err)
	}

	return a, nil
}

// Ping reports whether the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) conn(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}

	return r.db
}

func scanAccount(s scanner) (domain.Account, error) {
	var (
		a     domain.Account
		phone sql.NullString
	)
	if err := s.Scan(&a.ID, &a.Name, &phone, &a.CreatedAt, &a.ModifiedAt, &a.DeletedAt); err != nil {
		return domain.Account{}, err
	}
	a.PhoneNumber = phone.String

	return a, nil
}

func isPhoneConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return false
	}

	return pqErr.Constraint == phoneActiveIndex || pqErr.Constraint == ""
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
