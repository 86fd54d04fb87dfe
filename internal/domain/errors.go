package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrInvalidPhoneFormat   = errors.New("invalid phone number format")
	ErrDuplicatePhoneNumber = errors.New("phone number already exists")
	ErrValidation           = errors.New("validation failed")
)

// Error is a classified failure with a message fit for API clients.
// Kind is one of the package sentinels.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func AccountNotFound(id int64) error {
	return &Error{Kind: ErrAccountNotFound, Message: fmt.Sprintf("Account not found with ID: %d", id)}
}

func InvalidPhoneFormat(phone string) error {
	return &Error{Kind: ErrInvalidPhoneFormat, Message: "Invalid phone number format: " + phone}
}

func DuplicatePhoneNumber(phone string) error {
	return &Error{Kind: ErrDuplicatePhoneNumber, Message: "Phone number already exists: " + phone}
}

func ValidationFailed(field, reason string) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf("Validation failed: %s: %s", field, reason)}
}
