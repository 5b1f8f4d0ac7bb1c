package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/xsantcastx/xsantcastx/internal/apperr"
	"github.com/xsantcastx/xsantcastx/internal/domain"
)

// RequireRole checks that the authenticated identity has one of the allowed roles.
func RequireRole(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := GetIdentity(c)
		if !ok {
			Fail(c, apperr.UnauthenticatedErr("Authentication required"))
			return
		}
		for _, a := range allowed {
			if id.Role == a {
				c.Next()
				return
			}
		}
		Fail(c, apperr.PermissionDeniedErr("Admin access required"))
	}
}

func AdminRequired() gin.HandlerFunc {
	return RequireRole(domain.RoleAdmin)
}
