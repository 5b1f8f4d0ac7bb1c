package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xsantcastx/xsantcastx/internal/apperr"
	"github.com/xsantcastx/xsantcastx/internal/auth"
)

const CtxKeyIdentity = "identity"

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", true
	}
	return strings.TrimSpace(parts[1]), true
}

// attachIdentity verifies a bearer token if one is present. It returns false
// after failing the request when the token is present but invalid.
func attachIdentity(c *gin.Context, v auth.Verifier) bool {
	token, present := bearerToken(c)
	if !present {
		return true
	}
	if token == "" || v == nil {
		Fail(c, apperr.UnauthenticatedErr("Invalid authorization header"))
		return false
	}
	id, err := v.Verify(c.Request.Context(), token)
	if err != nil {
		Fail(c, &apperr.Error{Kind: apperr.Unauthenticated, PublicMsg: "Invalid or expired token", Err: err})
		return false
	}
	c.Set(CtxKeyIdentity, id)
	return true
}

// OptionalAuth attaches an identity when a bearer token is present. A token
// that is present but invalid is rejected rather than treated as anonymous.
func OptionalAuth(v auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if attachIdentity(c, v) {
			c.Next()
		}
	}
}

// AuthRequired rejects callers without a valid identity.
func AuthRequired(v auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetIdentity(c); !ok && !attachIdentity(c, v) {
			return
		}
		if _, ok := GetIdentity(c); !ok {
			Fail(c, apperr.UnauthenticatedErr("Authentication required"))
			return
		}
		c.Next()
	}
}

func GetIdentity(c *gin.Context) (*auth.Identity, bool) {
	v, ok := c.Get(CtxKeyIdentity)
	if !ok {
		return nil, false
	}
	id, ok := v.(*auth.Identity)
	return id, ok && id != nil
}

// GetUID returns the caller's uid, or "" for anonymous requests.
func GetUID(c *gin.Context) string {
	if id, ok := GetIdentity(c); ok {
		return id.UID
	}
	return ""
}
