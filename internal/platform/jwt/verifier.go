package jwtmw

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Verify checks the signature and expiry of tokenStr and returns its claims.
// It fails with ErrExpiredToken or ErrInvalidToken.
func (s *Service) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (any, error) {
			return s.secret, nil
		},
		// Only HMAC-SHA256 is accepted; this also rejects "none".
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: missing jti", ErrInvalidToken)
	}

	return claims, nil
}
