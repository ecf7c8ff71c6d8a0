package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormRules(t *testing.T) {
	tests := []struct {
		name  string
		check func(string) error
		value string
		msg   string
	}{
		{"empty username", CheckUsername, "", "username must not be empty"},
		{"username symbols", CheckUsername, "bad_name", "username may only contain letters and digits"},
		{"short username", CheckUsername, "abc", "username length must be between 5 and 30"},
		{"good username", CheckUsername, "student", ""},
		{"empty password", CheckPassword, "", "password must not be empty"},
		{"non ascii password", CheckPassword, "pässwörd", "password may only contain printable ASCII characters and spaces"},
		{"long password", CheckPassword, "123456789012345678901", "password length must be between 6 and 20"},
		{"good password", CheckPassword, "123456 ok", ""},
		{"empty email", CheckEmail, "", "email must not be empty"},
		{"bad email", CheckEmail, "not-an-email", "email format is invalid"},
		{"good email", CheckEmail, "user@example.com", ""},
		{"key with slash", CheckProjectKey, "a/b", "project key may only contain letters, digits, '_' and '-'"},
		{"good key", CheckProjectKey, "bug-tracker_2", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check(tt.value)
			if tt.msg == "" {
				assert.NoError(t, err)
				return
			}
			var ruleErr *RuleError
			if assert.ErrorAs(t, err, &ruleErr) {
				assert.Equal(t, tt.msg, ruleErr.Msg)
			}
		})
	}
}
