package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/waste-collection-api/internal/models"
	appErrors "github.com/noah-isme/waste-collection-api/pkg/errors"
	"github.com/noah-isme/waste-collection-api/pkg/response"
)

// RequireRoles admits callers whose verified role is one of roles. Ownership and
// driver binding checks happen in the services, so a route open to USER still
// rejects residents acting on someone else's request.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		value, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := value.(*models.JWTClaims)
		if !ok || claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// AnyRole admits every authenticated caller.
func AnyRole() gin.HandlerFunc {
	return RequireRoles(models.RoleAdmin, models.RoleUser, models.RoleDriver)
}
