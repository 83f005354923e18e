package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func echoAccount(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetUserID(r.Context())
		require.True(t, ok)
		role, ok := GetRole(r.Context())
		require.True(t, ok)
		w.Header().Set("X-Account", role)
		w.WriteHeader(http.StatusOK)
		assert.Positive(t, id)
	})
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	token, err := GenerateToken(testSecret, 42, RoleLibrarian, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	AuthMiddleware(testSecret)(echoAccount(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, RoleLibrarian, rec.Header().Get("X-Account"))
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	expired, err := GenerateToken(testSecret, 42, RoleReader, -time.Minute)
	require.NoError(t, err)
	foreign, err := GenerateToken([]byte("other"), 42, RoleReader, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing_header", header: ""},
		{name: "wrong_scheme", header: "Basic abc"},
		{name: "expired_token", header: "Bearer " + expired},
		{name: "wrong_secret", header: "Bearer " + foreign},
		{name: "garbage", header: "Bearer not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			AuthMiddleware(testSecret)(echoAccount(t)).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(StaffRoles...)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name string
		role string
		want int
	}{
		{name: "admin_allowed", role: RoleAdmin, want: http.StatusNoContent},
		{name: "librarian_allowed", role: RoleLibrarian, want: http.StatusNoContent},
		{name: "reader_forbidden", role: RoleReader, want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(WithAccount(req.Context(), 5, tt.role))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}

	t.Run("unauthenticated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestTestUserMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Test-User-ID", "9")
	req.Header.Set("X-Test-Role", RoleReader)
	rec := httptest.NewRecorder()

	var gotID int64
	TestUserMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = GetUserID(r.Context())
		role, _ := GetRole(r.Context())
		w.Header().Set("X-Account", role)
	})).ServeHTTP(rec, req)

	assert.Equal(t, int64(9), gotID)
	assert.Equal(t, RoleReader, rec.Header().Get("X-Account"))
}
