package models

import (
	"fmt"
	"net/url"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type UserInfo struct {
	Username string `json:"username" bson:"username" yaml:"username" validate:"required"`
	FullName string `json:"fullName" bson:"fullName" yaml:"fullName"`
	Role     Role   `json:"role" bson:"role" yaml:"role" validate:"required,oneof=admin user"`
	Email    string `json:"email" bson:"email" yaml:"email" validate:"required"`
}

// Account is a stored user: the public info plus the bcrypt hash.
type Account struct {
	UserInfo     `bson:",inline" yaml:",inline"`
	PasswordHash string `json:"-" bson:"passwordHash" yaml:"passwordHash"`
}

type ChangePasswordReq struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type RegisterReq struct {
	Info     UserInfo `json:"info" validate:"required"`
	Password string   `json:"password" validate:"required"`
}

type SearchUserRes struct {
	Users []UserInfo `json:"users" validate:"dive"`
}

// SearchUserReq filters users. Empty fields match everything.
type SearchUserReq struct {
	Username string `json:"username,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     Role   `json:"role,omitempty" validate:"omitempty,oneof=admin user"`
}

// Values encodes the non-empty filters as query parameters.
func (r SearchUserReq) Values() url.Values {
	q := url.Values{}
	setIf(q, "username", r.Username)
	setIf(q, "fullName", r.FullName)
	setIf(q, "email", r.Email)
	setIf(q, "role", string(r.Role))
	return q
}

// ParseSearchUserReq reads filters from query parameters.
func ParseSearchUserReq(q url.Values) (SearchUserReq, error) {
	var req SearchUserReq
	for key := range q {
		value := q.Get(key)
		switch key {
		case "username":
			req.Username = value
		case "fullName":
			req.FullName = value
		case "email":
			req.Email = value
		case "role":
			req.Role = Role(value)
		default:
			return SearchUserReq{}, fmt.Errorf("%w: unsupported search field %q", ErrInvalidPayload, key)
		}
	}
	if err := Validate(req); err != nil {
		return SearchUserReq{}, err
	}
	return req, nil
}

// PrivilegeName is the display name of a role; nil means not logged in.
func PrivilegeName(role *Role) string {
	if role == nil {
		return "Not logged in"
	}
	if *role == RoleAdmin {
		return "Administrator"
	}
	return "User"
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
