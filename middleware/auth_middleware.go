package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/studyhub/studyhub-backend/services/auth"
	"github.com/studyhub/studyhub-backend/utils"
)

// TokenValidator validates an access token and returns its claims
type TokenValidator interface {
	Validate(tokenString string) (*auth.Claims, error)
}

// AuthMiddleware handles JWT authentication for protected routes
type AuthMiddleware struct {
	validator TokenValidator
	logger    *zap.Logger
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(validator TokenValidator, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		validator: validator,
		logger:    logger,
	}
}

// RequireAuth validates the bearer token and stores the user identity in the
// request context. Requests without a valid token get a 401.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			m.logger.Warn("missing authentication token",
				zap.String("path", r.URL.Path),
				zap.String("request_id", GetRequestIDFromContext(r.Context())),
			)
			utils.WriteUnauthorized(w, "Authentication required")
			return
		}

		claims, err := m.validator.Validate(token)
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("path", r.URL.Path),
				zap.String("request_id", GetRequestIDFromContext(r.Context())),
				zap.Error(err),
			)
			utils.WriteUnauthorized(w, "Invalid or expired token")
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			m.logger.Warn("token carries malformed subject",
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			utils.WriteUnauthorized(w, "Invalid or expired token")
			return
		}

		ctx := WithUserID(r.Context(), userID)
		ctx = WithUserEmail(ctx, claims.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken pulls the access token from the auth cookie or the
// Authorization header, in that order.
func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie("auth_token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
