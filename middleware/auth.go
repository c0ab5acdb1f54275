package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/MichaelPain/FutHaxball-sub001/models"
)

type contextKey string

const userContextKey contextKey = "user"

// Authenticate verifies the HS256 bearer token and stores its claims in the request context.
func Authenticate(secret []byte) func(http.Handler) http.Handler {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenString == "" {
				writeError(w, http.StatusUnauthorized, "authorization header must be 'Bearer <token>'")
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc)
			if err != nil || !token.Valid {
				slog.DebugContext(r.Context(), "rejected access token", slog.Any("error", err))
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authorize lets the request through only for the given roles. It must run after Authenticate.
func Authorize(roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := GetUserRoleFromContext(r.Context())
			if err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}
			if !slices.Contains(roles, role) {
				writeError(w, http.StatusForbidden, "operation not allowed for the current user")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewToken signs an access token with the claims Authenticate expects.
func NewToken(secret []byte, userID string, role models.UserRole, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		jwtClaimUserID: userID,
		jwtClaimRole:   string(role),
		"exp":          time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
