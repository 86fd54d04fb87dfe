package domain

import (
	"strings"
	"time"
)

// Account is a single account record. An account is active while DeletedAt
// is nil; once DeletedAt is set the account is terminal.
type Account struct {
	ID          int64
	Name        string
	PhoneNumber string
	CreatedAt   time.Time
	ModifiedAt  time.Time
	DeletedAt   *time.Time
}

func (a Account) IsActive() bool {
	return a.DeletedAt == nil
}

// Rename replaces the name when the new value is non-blank and different.
// It reports whether the name changed.
func (a *Account) Rename(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || name == a.Name {
		return false
	}

	a.Name = name
	return true
}

// PhoneChanged reports whether phone differs from the stored number.
// Blank input never counts as a change.
func (a Account) PhoneChanged(phone string) bool {
	phone = strings.TrimSpace(phone)
	return phone != "" && phone != a.PhoneNumber
}

func (a *Account) Touch(at time.Time) {
	a.ModifiedAt = at
}

func (a *Account) SoftDelete(at time.Time) {
	deletedAt := at
	a.DeletedAt = &deletedAt
	a.ModifiedAt = at
}
