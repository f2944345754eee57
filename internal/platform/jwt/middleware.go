package jwtmw

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// ContextUserID is the gin context key holding the authenticated user's ID (uint).
	ContextUserID = "userID"
	// ContextClaims is the gin context key holding the verified *Claims.
	ContextClaims = "claims"
)

// TokenVerifier verifies bearer tokens.
type TokenVerifier interface {
	Verify(tokenStr string) (*Claims, error)
}

// RevocationChecker reports whether a token id has been revoked before its expiry.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthRequired returns a Gin middleware function that validates bearer tokens
// and restricts access to authenticated users only.
// revocations may be nil, in which case tokens are valid until they expire.
func AuthRequired(verifier TokenVerifier, revocations RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get Authorization header
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			unauthorized(c, "missing bearer token")
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if tokenStr == "" {
			unauthorized(c, "empty bearer token")
			return
		}

		// 2. Verify signature and expiry
		claims, err := verifier.Verify(tokenStr)
		if err != nil {
			unauthorized(c, err.Error())
			return
		}

		// 3. Check the denylist when one is configured
		if revocations != nil {
			revoked, err := revocations.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				slog.Error("token revocation check failed", "error", err, "remote_addr", c.ClientIP())
				c.Header("Retry-After", "1")
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable"})
				return
			}
			if revoked {
				unauthorized(c, "token revoked")
				return
			}
		}

		// 4. Expose the identity to downstream handlers
		userID, _ := claims.UserID()
		c.Set(ContextUserID, userID)
		c.Set(ContextClaims, claims)

		c.Next()
	}
}

// UserIDFrom returns the authenticated user's ID set by AuthRequired.
func UserIDFrom(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

// ClaimsFrom returns the verified claims set by AuthRequired.
func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

// unauthorized aborts with one response body for every failure reason.
// The reason is only logged.
func unauthorized(c *gin.Context, reason string) {
	slog.Warn("request rejected by auth guard", "reason", reason, "path", c.FullPath(), "remote_addr", c.ClientIP())
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}
