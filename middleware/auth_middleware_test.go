package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studyhub/studyhub-backend/config"
	"github.com/studyhub/studyhub-backend/models"
	"github.com/studyhub/studyhub-backend/services/auth"
)

func newTestMiddleware(ttl time.Duration) (*AuthMiddleware, *auth.TokenManager) {
	manager := auth.NewTokenManager(config.AuthConfig{
		JWTSecret: "test-secret",
		TokenTTL:  ttl,
		Issuer:    "studyhub-test",
	})
	return NewAuthMiddleware(manager, zap.NewNop()), manager
}

func issueToken(t *testing.T, manager *auth.TokenManager, userID uuid.UUID) string {
	t.Helper()
	token, err := manager.Issue(&models.User{
		ID:    userID,
		Email: "dana@example.com",
		Name:  "Dana",
	})
	require.NoError(t, err)
	return token
}

func TestRequireAuth_ValidBearerToken(t *testing.T) {
	middleware, manager := newTestMiddleware(time.Hour)
	userID := uuid.New()
	token := issueToken(t, manager, userID)

	var gotUserID uuid.UUID
	var gotEmail string
	handler := middleware.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserIDFromContext(r.Context())
		gotEmail = GetUserEmailFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notes", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, gotUserID)
	assert.Equal(t, "dana@example.com", gotEmail)
}

func TestRequireAuth_CookieToken(t *testing.T) {
	middleware, manager := newTestMiddleware(time.Hour)
	userID := uuid.New()
	token := issueToken(t, manager, userID)

	var gotUserID uuid.UUID
	handler := middleware.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notes", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, gotUserID)
}

func TestRequireAuth_MissingToken(t *testing.T) {
	middleware, _ := newTestMiddleware(time.Hour)

	called := false
	handler := middleware.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notes", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	middleware, manager := newTestMiddleware(-time.Minute)
	token := issueToken(t, manager, uuid.New())

	called := false
	handler := middleware.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notes", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestRequireAuth_GarbageToken(t *testing.T) {
	middleware, _ := newTestMiddleware(time.Hour)

	handler := middleware.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notes", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExtractToken_PrefersCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: "cookie-token"})
	req.Header.Set("Authorization", "Bearer header-token")

	assert.Equal(t, "cookie-token", extractToken(req))
}
