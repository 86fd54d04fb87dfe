package domain

import (
	"regexp"
	"strings"
)

var e164Pattern = regexp.MustCompile(`^\+[1-9][0-9]{6,14}$`)

// IsValidE164 reports whether phone is an E.164 number: a '+', a leading
// digit 1-9 and 7 to 15 digits in total. Surrounding whitespace is ignored.
func IsValidE164(phone string) bool {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return false
	}

	return e164Pattern.MatchString(phone)
}
