package models

import "regexp"

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	passwordPattern = regexp.MustCompile(`^[\x20-\x7E]+$`)
	keyPattern      = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// RuleError is a violated form rule; Msg is meant for the end user.
type RuleError struct {
	Field string
	Msg   string
}

func (e *RuleError) Error() string {
	return e.Msg
}

func CheckUsername(v string) error {
	switch {
	case len(v) == 0:
		return &RuleError{Field: "username", Msg: "username must not be empty"}
	case !usernamePattern.MatchString(v):
		return &RuleError{Field: "username", Msg: "username may only contain letters and digits"}
	case len(v) < 5 || len(v) > 30:
		return &RuleError{Field: "username", Msg: "username length must be between 5 and 30"}
	}
	return nil
}

func CheckPassword(v string) error {
	switch {
	case len(v) == 0:
		return &RuleError{Field: "password", Msg: "password must not be empty"}
	case !passwordPattern.MatchString(v):
		return &RuleError{Field: "password", Msg: "password may only contain printable ASCII characters and spaces"}
	case len(v) < 6 || len(v) > 20:
		return &RuleError{Field: "password", Msg: "password length must be between 6 and 20"}
	}
	return nil
}

func CheckEmail(v string) error {
	if len(v) == 0 {
		return &RuleError{Field: "email", Msg: "email must not be empty"}
	}
	if err := validate.Var(v, "email"); err != nil {
		return &RuleError{Field: "email", Msg: "email format is invalid"}
	}
	return nil
}

// CheckProjectKey keeps keys safe to embed in URL paths.
func CheckProjectKey(v string) error {
	if !keyPattern.MatchString(v) {
		return &RuleError{Field: "key", Msg: "project key may only contain letters, digits, '_' and '-'"}
	}
	return nil
}
