package middleware

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		wantErr bool
	}{
		{"e164", "+15551234567", false},
		{"digits only", "15551234567", false},
		{"formatted", "+1 (555) 123-4567", false},
		{"empty", "", true},
		{"too long", "+155512345678901234567", true},
		{"letters", "call-me-maybe", true},
		{"plus in middle", "1+5551234567", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePhone(tt.phone)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateMessageBody(t *testing.T) {
	assert.NoError(t, ValidateMessageBody("hi"))
	assert.Error(t, ValidateMessageBody(""))
	assert.Error(t, ValidateMessageBody(strings.Repeat("a", 1601)))
	assert.Error(t, ValidateMessageBody("bad\xff utf8"))
}

func TestValidateTriggerContext(t *testing.T) {
	assert.NoError(t, ValidateTriggerContext(""))
	assert.NoError(t, ValidateTriggerContext("blind install quote"))
	assert.Error(t, ValidateTriggerContext(strings.Repeat("a", 513)))
}
