package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xsantcastx/xsantcastx/internal/middleware"
	"github.com/xsantcastx/xsantcastx/internal/service"
)

const contactSentMessage = "Thank you! Your project brief has been sent. We will reply within 24 hours."

type ContactSender interface {
	Send(ctx context.Context, req service.ContactRequest) (string, error)
}

type ContactHandler struct {
	contact ContactSender
}

func NewContactHandler(contact ContactSender) *ContactHandler {
	return &ContactHandler{contact: contact}
}

// Send handles POST /contact/send.
func (h *ContactHandler) Send(c *gin.Context) {
	var req service.ContactRequest
	if !bindJSON(c, &req) {
		return
	}
	id, err := h.contact.Send(c.Request.Context(), req)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   contactSentMessage,
		"messageId": id,
	})
}
