package domain

import (
	"strings"
	"unicode/utf8"
)

const MaxNameLength = 255

// ValidateName checks a non-blank name against the length limit and the
// characters the store can hold.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if !utf8.ValidString(name) || strings.ContainsRune(name, 0) {
		return ValidationFailed("name", "Name contains invalid characters")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return ValidationFailed("name", "Name must be at most 255 characters")
	}

	return nil
}
