package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abg-ub/better-auth/pkg/sanitizer"
)

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "User@Example.COM", "user@example.com"},
		{"trims whitespace", "  user@example.com  ", "user@example.com"},
		{"consolidates dots", "first..last@example.com", "first.last@example.com"},
		{"strips leading and trailing dots", ".user.@example.com", "user@example.com"},
		{"preserves plus tags", "User+Tag@Example.com", "user+tag@example.com"},
		{"passes through non-email input", "not an email", "not an email"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, sanitizer.NormalizeEmail(tc.input))
		})
	}
}

func TestExtractEmailDomain(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "example.com", sanitizer.ExtractEmailDomain("user@Example.COM"))
	assert.Equal(t, "", sanitizer.ExtractEmailDomain("no-at-sign"))
}

func TestMaskEmail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "u***@example.com", sanitizer.MaskEmail("user@example.com"))
	assert.Equal(t, "*@example.com", sanitizer.MaskEmail("u@example.com"))
	assert.Equal(t, "not-an-email", sanitizer.MaskEmail("not-an-email"))
}
