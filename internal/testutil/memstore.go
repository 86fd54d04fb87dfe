package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/kvetinski/fintech-account/internal/domain"
)

// MemStore is an in-memory account store with the same visibility rules as
// the Postgres repository: soft-deleted rows are invisible to lookups and do
// not take part in phone uniqueness.
type MemStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]domain.Account

	ExistsCalls int
}

func NewMemStore() *MemStore {
	return &MemStore{rows: make(map[int64]domain.Account)}
}

func (m *MemStore) GetByID(_ context.Context, id int64) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.rows[id]
	if !ok || !acc.IsActive() {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return acc, nil
}

func (m *MemStore) GetByIDForUpdate(ctx context.Context, id int64) (domain.Account, error) {
	return m.GetByID(ctx, id)
}

func (m *MemStore) ExistsByPhone(_ context.Context, phone string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ExistsCalls++
	return m.phoneTaken(phone, 0), nil
}

func (m *MemStore) Insert(_ context.Context, acc domain.Account) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if acc.PhoneNumber != "" && m.phoneTaken(acc.PhoneNumber, 0) {
		return domain.Account{}, fmt.Errorf("insert account: %w", domain.ErrDuplicatePhoneNumber)
	}

	m.nextID++
	acc.ID = m.nextID
	m.rows[acc.ID] = acc
	return acc, nil
}

func (m *MemStore) Update(_ context.Context, acc domain.Account) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.rows[acc.ID]
	if !ok || !current.IsActive() {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	if acc.IsActive() && acc.PhoneNumber != "" && m.phoneTaken(acc.PhoneNumber, acc.ID) {
		return domain.Account{}, fmt.Errorf("update account: %w", domain.ErrDuplicatePhoneNumber)
	}

	m.rows[acc.ID] = acc
	return acc, nil
}

// WithinTx runs fn directly; the store lock is taken per call.
func (m *MemStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Len returns the number of stored rows, deleted ones included.
func (m *MemStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.rows)
}

// Raw returns the stored row regardless of its deletion state.
func (m *MemStore) Raw(id int64) (domain.Account, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.rows[id]
	return acc, ok
}

func (m *MemStore) phoneTaken(phone string, exceptID int64) bool {
	for id, acc := range m.rows {
		if id != exceptID && acc.IsActive() && acc.PhoneNumber == phone {
			return true
		}
	}

	return false
}
