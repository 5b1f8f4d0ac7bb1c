package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/xsantcastx/xsantcastx/internal/apperr"
	"github.com/xsantcastx/xsantcastx/internal/domain"
	"github.com/xsantcastx/xsantcastx/internal/models"
	"github.com/xsantcastx/xsantcastx/pkg/payment"
)

type PayPalGateway interface {
	GetOrder(ctx context.Context, orderID string) (*payment.PayPalOrder, error)
}

type PayPalService struct {
	gateway   PayPalGateway
	donations *DonationService
	log       *zap.Logger
}

// NewPayPalService accepts a nil gateway; every call then fails as internal until credentials are set.
func NewPayPalService(gateway PayPalGateway, donations *DonationService, log *zap.Logger) *PayPalService {
	return &PayPalService{gateway: gateway, donations: donations, log: log}
}

type ProcessPayPalInput struct {
	Amount  float64
	OrderID string
	Caller  Caller
}

type ProcessPayPalResult struct {
	TransactionID string `json:"transactionId"`
	DonationID    string `json:"donationId"`
}

// ProcessPayment checks the order with PayPal and records the donation once
// the order is COMPLETED for the claimed amount.
func (s *PayPalService) ProcessPayment(ctx context.Context, in ProcessPayPalInput) (*ProcessPayPalResult, error) {
	in.OrderID = strings.TrimSpace(in.OrderID)
	if in.Amount == 0 || in.OrderID == "" {
		return nil, apperr.InvalidErr("Amount and orderId are required")
	}
	if in.Amount < domain.MinDonationAmount {
		return nil, apperr.InvalidErr("Minimum donation amount is $1")
	}
	if s.gateway == nil {
		return nil, apperr.Wrap(fmt.Errorf("paypal: %w", payment.ErrNotConfigured), "Payment processing failed")
	}

	s.log.Info("processing paypal payment", zap.Float64("amount", in.Amount), zap.String("order_id", in.OrderID))

	order, err := s.gateway.GetOrder(ctx, in.OrderID)
	if err != nil {
		return nil, apperr.Wrap(err, "Payment processing failed")
	}
	if order.Status != domain.PayPalOrderCompleted {
		return nil, apperr.PreconditionErr(fmt.Sprintf("Payment not completed. Status: %s", order.Status))
	}
	paid, err := order.PaidAmount()
	if err != nil {
		return nil, apperr.Wrap(err, "Payment processing failed")
	}
	if math.Abs(paid-in.Amount) > domain.AmountTolerance {
		s.log.Warn("paypal amount mismatch",
			zap.String("order_id", in.OrderID),
			zap.Float64("claimed", in.Amount),
			zap.Float64("paid", paid))
		return nil, apperr.PreconditionErr("Payment amount mismatch")
	}

	d := &models.Donation{
		Type:              domain.DonationTypePayPal,
		Amount:            in.Amount,
		Currency:          paypalCurrency(order),
		ProviderReference: in.OrderID,
		Donor: models.Donor{
			UID:   in.Caller.donorUID(),
			Name:  orDefault(order.PayerName(), domain.AnonymousDonor),
			Email: optionalString(order.PayerEmail()),
		},
		Request: models.RequestMetadata{UserAgent: in.Caller.UserAgent, IP: in.Caller.IP},
	}
	if err := s.donations.Record(ctx, d); err != nil {
		return nil, err
	}
	return &ProcessPayPalResult{TransactionID: in.OrderID, DonationID: d.ID}, nil
}

func paypalCurrency(o *payment.PayPalOrder) string {
	if len(o.PurchaseUnits) > 0 && o.PurchaseUnits[0].Amount.CurrencyCode != "" {
		return strings.ToUpper(o.PurchaseUnits[0].Amount.CurrencyCode)
	}
	return "USD"
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
