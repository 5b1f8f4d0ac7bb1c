package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xsantcastx/xsantcastx/internal/middleware"
	"github.com/xsantcastx/xsantcastx/internal/service"
)

type StripePayments interface {
	CreatePaymentIntent(ctx context.Context, in service.AmountInput) (*service.PaymentIntentResult, error)
	ConfirmPayment(ctx context.Context, in service.ConfirmStripeInput) (*service.ConfirmStripeResult, error)
	CreateCheckoutSession(ctx context.Context, in service.AmountInput) (*service.CheckoutResult, error)
}

type StripeHandler struct {
	stripe StripePayments
}

func NewStripeHandler(stripe StripePayments) *StripeHandler {
	return &StripeHandler{stripe: stripe}
}

type amountRequest struct {
	Amount   *float64 `json:"amount"`
	Currency string   `json:"currency"`
}

func (r amountRequest) input(c *gin.Context) service.AmountInput {
	return service.AmountInput{Amount: floatOrZero(r.Amount), Currency: r.Currency, Caller: callerFrom(c)}
}

// CreatePaymentIntent handles POST /stripe/createPaymentIntent.
func (h *StripeHandler) CreatePaymentIntent(c *gin.Context) {
	var req amountRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.stripe.CreatePaymentIntent(c.Request.Context(), req.input(c))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"clientSecret":    res.ClientSecret,
		"paymentIntentId": res.PaymentIntentID,
	})
}

type confirmStripeRequest struct {
	PaymentIntentID string `json:"paymentIntentId"`
}

// ConfirmPayment handles POST /stripe/confirmPayment.
func (h *StripeHandler) ConfirmPayment(c *gin.Context) {
	var req confirmStripeRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.stripe.ConfirmPayment(c.Request.Context(), service.ConfirmStripeInput{
		PaymentIntentID: req.PaymentIntentID,
		Caller:          callerFrom(c),
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"donationId":    res.DonationID,
		"transactionId": res.TransactionID,
		"amount":        res.Amount,
		"currency":      res.Currency,
		"message":       "Payment confirmed and logged successfully",
	})
}

// CreateCheckoutSession handles POST /stripe/createCheckoutSession.
func (h *StripeHandler) CreateCheckoutSession(c *gin.Context) {
	var req amountRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.stripe.CreateCheckoutSession(c.Request.Context(), req.input(c))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"sessionId": res.SessionID,
		"url":       res.URL,
	})
}
