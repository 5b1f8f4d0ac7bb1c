package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/xsantcastx/xsantcastx/internal/apperr"
	"github.com/xsantcastx/xsantcastx/internal/auth"
)

const HeaderAppCheck = "X-Firebase-AppCheck"

// AppCheck requires a valid App Check token. A nil verifier disables the check.
func AppCheck(v auth.AppCheckVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if v == nil {
			c.Next()
			return
		}
		token := c.GetHeader(HeaderAppCheck)
		if token == "" {
			Fail(c, apperr.UnauthenticatedErr("Missing App Check token"))
			return
		}
		if err := v.VerifyAppCheck(c.Request.Context(), token); err != nil {
			Fail(c, &apperr.Error{Kind: apperr.Unauthenticated, PublicMsg: "Invalid App Check token", Err: err})
			return
		}
		c.Next()
	}
}
