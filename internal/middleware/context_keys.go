package middleware

import (
	"context"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	"github.com/gin-gonic/gin"
)

const (
	userIDKey      = contextKey("userID")
	currentUserKey = contextKey("currentUser")
)

// GetUserIDFromContext retrieves the authenticated user ID from the request.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, ok := c.Request.Context().Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// GetCurrentUser returns the user loaded by LoadCurrentUser.
func GetCurrentUser(c *gin.Context) (*domain.User, bool) {
	return CurrentUserFromCtx(c.Request.Context())
}

// CurrentUserFromCtx returns the user stored by LoadCurrentUser.
func CurrentUserFromCtx(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(currentUserKey).(*domain.User)
	return user, ok && user != nil
}

// WithCurrentUser stores user in ctx. Handlers tests use it to skip the middleware chain.
func WithCurrentUser(ctx context.Context, user *domain.User) context.Context {
	ctx = context.WithValue(ctx, userIDKey, user.UserID)
	return context.WithValue(ctx, currentUserKey, user)
}
