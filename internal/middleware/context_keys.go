package middleware

import (
	"context"

	"github.com/SscSPs/voucher_engine/internal/core/domain"
	"github.com/gin-gonic/gin"
)

const (
	userIDKey = contextKey("userID")
	roleKey   = contextKey("role")
	originKey = contextKey("origin")
)

// WithActor returns a copy of ctx carrying the authenticated actor.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	ctx = context.WithValue(ctx, userIDKey, actor.UserID)
	return context.WithValue(ctx, roleKey, actor.Role)
}

// ActorFromCtx returns the actor stored by the auth middleware.
func ActorFromCtx(ctx context.Context) (domain.Actor, bool) {
	userID, _ := ctx.Value(userIDKey).(string)
	if userID == "" {
		return domain.Actor{}, false
	}
	role, _ := ctx.Value(roleKey).(string)
	return domain.Actor{UserID: userID, Role: role}, true
}

// GetUserIDFromContext retrieves the authenticated user ID from the Gin request context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	actor, ok := ActorFromCtx(c.Request.Context())
	return actor.UserID, ok
}

// WithOrigin returns a copy of ctx carrying the network origin of the request.
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originKey, origin)
}

// OriginFromCtx returns the origin recorded by OriginMiddleware, or "" outside a request.
func OriginFromCtx(ctx context.Context) string {
	origin, _ := ctx.Value(originKey).(string)
	return origin
}

// OriginMiddleware records the client IP so approval actions and audit entries can name where they came from.
func OriginMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(WithOrigin(c.Request.Context(), c.ClientIP()))
		c.Next()
	}
}
