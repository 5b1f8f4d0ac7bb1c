package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xsantcastx/xsantcastx/internal/apperr"
)

// Fail records err for ErrorHandler and stops the chain.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ErrorHandler renders the last error as {error, code, request_id}. Only the
// public message leaves the server; the cause is logged.
func ErrorHandler(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := apperr.HTTPStatus(err)
		rid := GetRequestID(c)

		fields := []zap.Field{
			zap.String("request_id", rid),
			zap.Int("status", status),
			zap.String("code", string(apperr.KindOf(err))),
			zap.Error(err),
		}
		if status >= 500 {
			log.Error("request_failed", fields...)
		} else {
			log.Info("request_rejected", fields...)
		}

		c.AbortWithStatusJSON(status, gin.H{
			"error":      apperr.PublicMessage(err),
			"code":       apperr.KindOf(err),
			"request_id": rid,
		})
	}
}

// Recovery turns a panic into an internal error response.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic_recovered",
			zap.String("request_id", GetRequestID(c)),
			zap.Any("panic", recovered),
			zap.Stack("stack"),
		)
		Fail(c, apperr.Wrap(fmt.Errorf("panic: %v", recovered), ""))
	})
}
