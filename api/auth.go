/*
auth.go - JWT authentication and role enforcement

PURPOSE:
  Verifies bearer tokens and enforces role-based access on the API:

  - mandataire: creates, edits and deletes operations on their campaigns
  - comptable:  approves or rejects operations across campaigns
  - candidat:   read-only dashboard access

  Token issuance belongs to the identity provider; this package only
  signs tokens in tests and verifies them in the middleware.

SEE ALSO:
  - server.go: Where the middleware is mounted per route group
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/quitus/campaign-ledger/campaign"
)

type ctxKey string

const (
	ctxUserID ctxKey = "user_id"
	ctxRole   ctxKey = "user_role"
)

// Claims is the token payload the API expects.
type Claims struct {
	UserID string        `json:"user_id"`
	Role   campaign.Role `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken signs a 24h token for the given user. Used by tests and
// by deployments without an external identity provider.
func GenerateToken(secret string, userID campaign.UserID, role campaign.Role) (string, error) {
	claims := &Claims{
		UserID: string(userID),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Authenticate verifies the bearer token and stores the caller's identity
// in the request context.
func Authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, "Missing Authorization header", nil)
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeError(w, http.StatusUnauthorized, "Authorization must be 'Bearer <token>'", nil)
				return
			}

			token, err := jwt.ParseWithClaims(parts[1], &Claims{}, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				writeError(w, http.StatusUnauthorized, "Invalid or expired token", nil)
				return
			}

			claims, ok := token.Claims.(*Claims)
			if !ok || !claims.Role.Valid() {
				writeError(w, http.StatusUnauthorized, "Malformed token claims", nil)
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserID, campaign.UserID(claims.UserID))
			ctx = context.WithValue(ctx, ctxRole, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route group to the given roles.
func RequireRole(roles ...campaign.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := r.Context().Value(ctxRole).(campaign.Role)
			if !ok {
				writeError(w, http.StatusUnauthorized, "Missing authentication", nil)
				return
			}
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "Insufficient role", nil)
		})
	}
}

// callerID returns the authenticated user id from the context.
func callerID(r *http.Request) campaign.UserID {
	id, _ := r.Context().Value(ctxUserID).(campaign.UserID)
	return id
}
