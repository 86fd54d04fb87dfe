package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvetinski/fintech-account/internal/domain"
)

func TestAccountRename(t *testing.T) {
	acc := domain.Account{Name: "John Doe"}

	assert.False(t, acc.Rename(""))
	assert.False(t, acc.Rename("   "))
	assert.False(t, acc.Rename("John Doe"))
	assert.Equal(t, "John Doe", acc.Name)

	assert.True(t, acc.Rename(" Jane Smith "))
	assert.Equal(t, "Jane Smith", acc.Name)
}

func TestAccountPhoneChanged(t *testing.T) {
	acc := domain.Account{PhoneNumber: "+1234567890"}

	assert.False(t, acc.PhoneChanged(""))
	assert.False(t, acc.PhoneChanged("+1234567890"))
	assert.False(t, acc.PhoneChanged(" +1234567890 "))
	assert.True(t, acc.PhoneChanged("+1987654321"))
	assert.True(t, acc.PhoneChanged("bogus"))

	empty := domain.Account{}
	assert.True(t, empty.PhoneChanged("+1234567890"))
}

func TestAccountSoftDelete(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	acc := domain.Account{ID: 1, Name: "John", PhoneNumber: "+1234567890", CreatedAt: created, ModifiedAt: created}
	require.True(t, acc.IsActive())

	deletedAt := created.Add(time.Hour)
	acc.SoftDelete(deletedAt)

	assert.False(t, acc.IsActive())
	require.NotNil(t, acc.DeletedAt)
	assert.Equal(t, deletedAt, *acc.DeletedAt)
	assert.Equal(t, deletedAt, acc.ModifiedAt)
	assert.Equal(t, "John", acc.Name)
	assert.Equal(t, "+1234567890", acc.PhoneNumber)
}

func TestErrorKinds(t *testing.T) {
	err := domain.AccountNotFound(42)
	assert.True(t, errors.Is(err, domain.ErrAccountNotFound))
	assert.Equal(t, "Account not found with ID: 42", err.Error())

	err = domain.InvalidPhoneFormat("123-456-7890")
	assert.True(t, errors.Is(err, domain.ErrInvalidPhoneFormat))
	assert.Contains(t, err.Error(), "Invalid phone number format")

	var derr *domain.Error
	require.True(t, errors.As(domain.DuplicatePhoneNumber("+1234567890"), &derr))
	assert.Equal(t, domain.ErrDuplicatePhoneNumber, derr.Kind)
}
