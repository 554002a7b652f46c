package validation_test

import (
	"strings"
	"testing"

	"github.com/nixpig/jailer/internal/operations/validation"
	"github.com/stretchr/testify/assert"
)

func TestJailNameValidation(t *testing.T) {
	scenarios := map[string]struct {
		name  string
		valid bool
	}{
		"test alphabetic only": {
			name:  "abcXYZabcXYZ",
			valid: true,
		},
		"test alphanumeric": {
			name:  "web01",
			valid: true,
		},
		"test underscores and hyphens": {
			name:  "test_jail-name",
			valid: true,
		},
		"test nested": {
			name:  "parent.child",
			valid: true,
		},
		"test max length": {
			name:  strings.Repeat("a", 255),
			valid: true,
		},
		"test too long": {
			name:  strings.Repeat("a", 256),
			valid: false,
		},
		"test numeric only": {
			name:  "1234",
			valid: false,
		},
		"test empty": {
			name:  "",
			valid: false,
		},
		"test leading dot": {
			name:  ".hidden",
			valid: false,
		},
		"test trailing dot": {
			name:  "jail.",
			valid: false,
		},
		"test invalid specials": {
			name:  "a$b^c*",
			valid: false,
		},
		"test spaces": {
			name:  "my jail",
			valid: false,
		},
	}

	for scenario, data := range scenarios {
		t.Run(scenario, func(t *testing.T) {
			err := validation.JailName(data.name)
			if data.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
