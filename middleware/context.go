package middleware

import (
	"context"

	"github.com/google/uuid"
)

// Context key type to avoid collisions
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"

	// UserIDKey is the context key for the authenticated user ID
	UserIDKey contextKey = "user_id"

	// UserEmailKey is the context key for the authenticated user's email
	UserEmailKey contextKey = "user_email"
)

// GetRequestIDFromContext retrieves the request ID from context
func GetRequestIDFromContext(ctx context.Context) string {
	if val := ctx.Value(RequestIDKey); val != nil {
		if requestID, ok := val.(string); ok {
			return requestID
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetUserIDFromContext retrieves the authenticated user ID from context.
// Returns uuid.Nil when the request is unauthenticated.
func GetUserIDFromContext(ctx context.Context) uuid.UUID {
	if val := ctx.Value(UserIDKey); val != nil {
		if userID, ok := val.(uuid.UUID); ok {
			return userID
		}
	}
	return uuid.Nil
}

// WithUserID adds the authenticated user ID to the context
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserEmailFromContext retrieves the authenticated user's email
func GetUserEmailFromContext(ctx context.Context) string {
	if val := ctx.Value(UserEmailKey); val != nil {
		if email, ok := val.(string); ok {
			return email
		}
	}
	return ""
}

// WithUserEmail adds the authenticated user's email to the context
func WithUserEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, UserEmailKey, email)
}
