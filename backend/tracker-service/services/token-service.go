package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/repositories"
	"github.com/yyhhenry/sdu--neu-bug/models"
)

const (
	kindAccess  = "access"
	kindRefresh = "refresh"
	issuer      = "tracker-service"
)

type Claims struct {
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	Kind     string      `json:"kind"`
	jwt.RegisteredClaims
}

// TokenService signs HS256 access/refresh pairs. Refresh tokens are single
// use: redeeming one records its id in the TokenStore.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	store      repositories.TokenStore
	now        func() time.Time
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration, store repositories.TokenStore) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		store:      store,
		now:        time.Now,
	}
}

func (s *TokenService) sign(username string, role models.Role, kind string, expires time.Time) (string, error) {
	now := s.now()
	claims := &Claims{
		Username: username,
		Role:     role,
		Kind:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Issue creates a fresh pair for the user.
func (s *TokenService) Issue(username string, role models.Role) (models.TokenPair, error) {
	now := s.now()
	accessExpires := now.Add(s.accessTTL).Truncate(time.Second)
	access, err := s.sign(username, role, kindAccess, accessExpires)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := s.sign(username, role, kindRefresh, now.Add(s.refreshTTL))
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return models.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpireAt:     accessExpires.UnixMilli(),
	}, nil
}

func (s *TokenService) parse(tokenStr, kind string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrInvalidToken, kind, claims.Kind)
	}
	return claims, nil
}

// ParseAccess validates an access token.
func (s *TokenService) ParseAccess(tokenStr string) (*Claims, error) {
	return s.parse(tokenStr, kindAccess)
}

// Redeem validates a refresh token and consumes it. A token can be redeemed
// once.
func (s *TokenService) Redeem(ctx context.Context, tokenStr string) (*Claims, error) {
	claims, err := s.parse(tokenStr, kindRefresh)
	if err != nil {
		return nil, err
	}
	fresh, err := s.store.Consume(ctx, claims.ID, claims.ExpiresAt.Time)
	if err != nil {
		return nil, err
	}
	if !fresh {
		return nil, fmt.Errorf("%w: refresh token already used", ErrInvalidToken)
	}
	return claims, nil
}

// PurgeUsed drops used-token records whose tokens have expired anyway.
func (s *TokenService) PurgeUsed(ctx context.Context) (int, error) {
	n, err := s.store.Purge(ctx, s.now())
	if err != nil {
		return n, fmt.Errorf("failed to purge used refresh tokens: %w", err)
	}
	return n, nil
}
