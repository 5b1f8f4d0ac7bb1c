package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xsantcastx/xsantcastx/internal/middleware"
	"github.com/xsantcastx/xsantcastx/internal/service"
)

type PayPalProcessor interface {
	ProcessPayment(ctx context.Context, in service.ProcessPayPalInput) (*service.ProcessPayPalResult, error)
}

type PayPalHandler struct {
	paypal PayPalProcessor
}

func NewPayPalHandler(paypal PayPalProcessor) *PayPalHandler {
	return &PayPalHandler{paypal: paypal}
}

type processPayPalRequest struct {
	Amount  *float64 `json:"amount"`
	OrderID string   `json:"orderId"`
}

// ProcessPayment handles POST /paypal/processPayment.
func (h *PayPalHandler) ProcessPayment(c *gin.Context) {
	var req processPayPalRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.paypal.ProcessPayment(c.Request.Context(), service.ProcessPayPalInput{
		Amount:  floatOrZero(req.Amount),
		OrderID: req.OrderID,
		Caller:  callerFrom(c),
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"transactionId": res.TransactionID,
		"donationId":    res.DonationID,
		"message":       "Payment processed successfully",
	})
}
