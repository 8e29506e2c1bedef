package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Token classes, embedded as the "typ" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenClaims represents the identity carried by a signed token.
type TokenClaims struct {
	UserID    string    `json:"user_id"` // UUID stored as string in token
	Email     string    `json:"email"`
	Type      string    `json:"typ"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// TokenService creates and validates tokens for a single key.
// Implementations include PasetoService (PASETO v4.local) and JWTService (HS256).
type TokenService interface {
	CreateToken(userID uuid.UUID, email, tokenType string, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// Tokens issues and verifies the access/refresh pair. Each class has its own
// TokenService built from its own secret, so neither can stand in for the other.
type Tokens struct {
	access          TokenService
	refresh         TokenService
	accessDuration  time.Duration
	refreshDuration time.Duration
}

func NewTokens(access, refresh TokenService, accessDuration, refreshDuration time.Duration) *Tokens {
	return &Tokens{
		access:          access,
		refresh:         refresh,
		accessDuration:  accessDuration,
		refreshDuration: refreshDuration,
	}
}

// NewTokensFromSecrets builds a Tokens for the named strategy ("jwt" or "paseto").
func NewTokensFromSecrets(strategy string, accessSecret, refreshSecret []byte, accessDuration, refreshDuration time.Duration) (*Tokens, error) {
	var access, refresh TokenService
	switch strategy {
	case "jwt":
		access = NewJWTService(accessSecret)
		refresh = NewJWTService(refreshSecret)
	case "paseto":
		var err error
		if access, err = NewPasetoService(accessSecret); err != nil {
			return nil, fmt.Errorf("failed to create access token service: %w", err)
		}
		if refresh, err = NewPasetoService(refreshSecret); err != nil {
			return nil, fmt.Errorf("failed to create refresh token service: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown token strategy %q", strategy)
	}
	return NewTokens(access, refresh, accessDuration, refreshDuration), nil
}

func (t *Tokens) IssueAccess(userID uuid.UUID, email string) (string, error) {
	return t.access.CreateToken(userID, email, TokenTypeAccess, t.accessDuration)
}

func (t *Tokens) IssueRefresh(userID uuid.UUID, email string) (string, error) {
	return t.refresh.CreateToken(userID, email, TokenTypeRefresh, t.refreshDuration)
}

func (t *Tokens) VerifyAccess(token string) (*TokenClaims, error) {
	return verifyAs(t.access, token, TokenTypeAccess)
}

func (t *Tokens) VerifyRefresh(token string) (*TokenClaims, error) {
	return verifyAs(t.refresh, token, TokenTypeRefresh)
}

func verifyAs(svc TokenService, token, tokenType string) (*TokenClaims, error) {
	claims, err := svc.VerifyToken(token)
	if err != nil {
		return nil, err
	}
	if claims.Type != tokenType {
		return nil, ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
