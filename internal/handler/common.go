package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/xsantcastx/xsantcastx/internal/apperr"
	"github.com/xsantcastx/xsantcastx/internal/middleware"
	"github.com/xsantcastx/xsantcastx/internal/service"
)

// callerFrom collects the identity and request metadata stored with a donation.
func callerFrom(c *gin.Context) service.Caller {
	return service.Caller{
		UID:       middleware.GetUID(c),
		UserAgent: c.Request.UserAgent(),
		IP:        c.ClientIP(),
	}
}

// bindJSON decodes the body into req. An empty body leaves req zero so the
// service reports the missing fields.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		middleware.Fail(c, &apperr.Error{Kind: apperr.InvalidArgument, PublicMsg: "Invalid request body", Err: err})
		return false
	}
	return true
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
