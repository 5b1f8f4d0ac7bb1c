package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xsantcastx/xsantcastx/internal/apperr"
	"github.com/xsantcastx/xsantcastx/internal/middleware"
)

// maxWebhookBody caps the raw event. Events carrying large metadata or line
// items exceed 64KB, so the ceiling sits well above that.
const maxWebhookBody = 1 << 20

type StripeWebhookProcessor interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type StripeWebhookHandler struct {
	webhooks StripeWebhookProcessor
}

func NewStripeWebhookHandler(webhooks StripeWebhookProcessor) *StripeWebhookHandler {
	return &StripeWebhookHandler{webhooks: webhooks}
}

// Handle verifies the Stripe-Signature header against the raw body before
// anything is decoded.
func (h *StripeWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.Fail(c, &apperr.Error{Kind: apperr.InvalidArgument, PublicMsg: "Webhook payload too large", Err: err})
			return
		}
		middleware.Fail(c, &apperr.Error{Kind: apperr.InvalidArgument, PublicMsg: "Invalid webhook payload", Err: err})
		return
	}
	if err := h.webhooks.HandleWebhook(c.Request.Context(), body, c.GetHeader("Stripe-Signature")); err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Webhook processed successfully"})
}
