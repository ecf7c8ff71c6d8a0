package models

import "time"

// TokenPair is an access/refresh token bundle. ExpireAt is the access
// token expiry in Unix milliseconds.
type TokenPair struct {
	AccessToken  string `json:"accessToken" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
	ExpireAt     int64  `json:"expireAt" validate:"required"`
}

// ExpiresWithin reports whether the access token expires before now+d.
func (t TokenPair) ExpiresWithin(d time.Duration, now time.Time) bool {
	return t.ExpireAt < now.Add(d).UnixMilli()
}

type LoginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginRes struct {
	Role  Role      `json:"role" validate:"required,oneof=admin user"`
	Token TokenPair `json:"token" validate:"required"`
}

type RefreshReq struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// AccountStorage is the persisted client session.
type AccountStorage struct {
	Username string    `json:"username" validate:"required"`
	Role     Role      `json:"role" validate:"required,oneof=admin user"`
	Token    TokenPair `json:"token" validate:"required"`
}
