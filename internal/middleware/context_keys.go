package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jamila-bank/backoffice-api/internal/core/domain"
)

// userIDKey and roleKey store the authenticated principal in the request context.
const (
	userIDKey = contextKey("userID")
	roleKey   = contextKey("role")
)

// GetCallerFromContext retrieves the authenticated caller from the Gin context.
// It returns the caller and a boolean indicating whether one was found.
func GetCallerFromContext(c *gin.Context) (domain.Caller, bool) {
	ctx := c.Request.Context()
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok || userID == "" {
		return domain.Caller{}, false
	}
	role, _ := ctx.Value(roleKey).(string)
	return domain.Caller{UserID: userID, Role: domain.Role(role)}, true
}
