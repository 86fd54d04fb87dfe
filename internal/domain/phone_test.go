package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kvetinski/fintech-account/internal/domain"
)

func TestIsValidE164(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  bool
	}{
		{name: "us number", phone: "+1234567890", want: true},
		{name: "minimum length", phone: "+1234567", want: true},
		{name: "maximum length", phone: "+123456789012345", want: true},
		{name: "surrounding whitespace", phone: "  +4915112345678 ", want: true},
		{name: "empty", phone: "", want: false},
		{name: "whitespace only", phone: "   ", want: false},
		{name: "missing plus", phone: "1234567890", want: false},
		{name: "leading zero", phone: "+0123456789", want: false},
		{name: "too short", phone: "+123456", want: false},
		{name: "too long", phone: "+1234567890123456", want: false},
		{name: "dashes", phone: "123-456-7890", want: false},
		{name: "letters", phone: "+12345abc90", want: false},
		{name: "inner space", phone: "+1 234567890", want: false},
		{name: "double plus", phone: "++1234567890", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.IsValidE164(tc.phone))
		})
	}
}
