package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fkhayef/library/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// UserIDKey is the context key for the authenticated account ID
	UserIDKey ContextKey = "user_id"
	// RoleKey is the context key for the authenticated account role
	RoleKey ContextKey = "role"
)

// Account roles
const (
	RoleAdmin     = "admin"
	RoleLibrarian = "librarian"
	RoleReader    = "reader"
)

// StaffRoles are the roles allowed to run desk operations
var StaffRoles = []string{RoleAdmin, RoleLibrarian}

// Claims is the JWT payload issued by the identity provider
type Claims struct {
	AccountID int64  `json:"account_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for the account. Used by tooling and tests;
// production tokens come from the identity provider.
func GenerateToken(secret []byte, accountID int64, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		AccountID: accountID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(accountID, 10),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken validates the token signature and expiry and returns its claims
func ParseToken(secret []byte, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.AccountID <= 0 {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// AuthMiddleware validates the bearer JWT and stores the account ID and role in the context
func AuthMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Authorization header required")
				return
			}

			// Extract token from "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := ParseToken(secret, parts[1])
			if err != nil {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), claims.AccountID, claims.Role)))
		})
	}
}

// TestUserMiddleware allows setting the account via X-Test-User-ID and X-Test-Role headers (DEV ONLY)
func TestUserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := int64(1)
		if userIDStr := r.Header.Get("X-Test-User-ID"); userIDStr != "" {
			if id, err := strconv.ParseInt(userIDStr, 10, 64); err == nil && id > 0 {
				userID = id
			}
		}
		role := r.Header.Get("X-Test-Role")
		if role == "" {
			role = RoleAdmin
		}
		next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), userID, role)))
	})
}

// RequireRole rejects requests whose authenticated role is not one of roles
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetRole(r.Context())
			if !ok {
				response.Unauthorized(w, "Authentication required")
				return
			}
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.Forbidden(w, "Insufficient role")
		})
	}
}

// WithAccount stores the authenticated account in ctx
func WithAccount(ctx context.Context, accountID int64, role string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, accountID)
	return context.WithValue(ctx, RoleKey, role)
}

// GetUserID extracts the account ID from the request context
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}

// GetRole extracts the account role from the request context
func GetRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}
