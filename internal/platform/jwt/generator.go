// Package jwtmw issues and verifies the signed bearer tokens used by the API,
// and provides the gin middleware that guards protected routes.
package jwtmw

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned for malformed tokens, bad signatures, unexpected algorithms or missing claims.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a correctly signed token is past its expiry.
	ErrExpiredToken = errors.New("token has expired")
)

// Claims is the token payload. Subject holds the user ID in decimal form and ID holds a unique token id (jti).
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uint, error) {
	n, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || n == 0 {
		return 0, ErrInvalidToken
	}
	return uint(n), nil
}

// Service signs and verifies HS256 tokens with a server-held secret.
// Tokens are self-contained; nothing is stored server-side.
type Service struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewService creates a token Service with the provided secret and token lifetime.
func NewService(secret string, expiration time.Duration) *Service {
	return &Service{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// GenerateToken creates a signed token for the given user.
func (s *Service) GenerateToken(userID uint, email string) (string, error) {
	now := s.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}
