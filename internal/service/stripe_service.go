package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xsantcastx/xsantcastx/internal/apperr"
	"github.com/xsantcastx/xsantcastx/internal/domain"
	"github.com/xsantcastx/xsantcastx/internal/models"
	"github.com/xsantcastx/xsantcastx/pkg/payment"
)

type StripeGateway interface {
	CreatePaymentIntent(ctx context.Context, p payment.IntentParams) (*payment.Intent, error)
	GetPaymentIntent(ctx context.Context, id string) (*payment.Intent, error)
	GetPaymentMethod(ctx context.Context, id string) (*payment.PaymentMethodDetails, error)
	CreateCheckoutSession(ctx context.Context, p payment.CheckoutParams) (*payment.CheckoutSession, error)
}

type StripeOptions struct {
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	SiteName      string
}

type StripeService struct {
	gateway   StripeGateway
	opts      StripeOptions
	donations *DonationService
	log       *zap.Logger
	now       func() time.Time
}

// NewStripeService accepts a nil gateway. Webhooks still verify with only the signing secret.
func NewStripeService(gateway StripeGateway, opts StripeOptions, donations *DonationService, log *zap.Logger) *StripeService {
	return &StripeService{gateway: gateway, opts: opts, donations: donations, log: log, now: time.Now}
}

type AmountInput struct {
	Amount   float64
	Currency string
	Caller   Caller
}

func (in *AmountInput) normalize() error {
	if in.Amount < domain.MinDonationAmount {
		return apperr.InvalidErr("Valid amount is required (minimum $1)")
	}
	in.Currency = strings.ToLower(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = "usd"
	}
	return nil
}

type PaymentIntentResult struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

func (s *StripeService) CreatePaymentIntent(ctx context.Context, in AmountInput) (*PaymentIntentResult, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if s.gateway == nil {
		return nil, apperr.Wrap(fmt.Errorf("stripe: %w", payment.ErrNotConfigured), "Failed to create payment intent")
	}
	s.log.Info("creating stripe payment intent", zap.Float64("amount", in.Amount), zap.String("currency", in.Currency))

	intent, err := s.gateway.CreatePaymentIntent(ctx, payment.IntentParams{
		AmountCents: toCents(in.Amount),
		Currency:    in.Currency,
		Description: fmt.Sprintf("Donation to %s - $%s", s.opts.SiteName, strconv.FormatFloat(in.Amount, 'f', -1, 64)),
		Metadata: map[string]string{
			"donor_uid":     in.Caller.donorUID(),
			"donation_type": "website_donation",
			"created_at":    s.now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, stripeFailure(err, "Failed to create payment intent")
	}
	s.log.Info("stripe payment intent created", zap.String("payment_intent_id", intent.ID))
	return &PaymentIntentResult{ClientSecret: intent.ClientSecret, PaymentIntentID: intent.ID}, nil
}

type ConfirmStripeInput struct {
	PaymentIntentID string
	Caller          Caller
}

type ConfirmStripeResult struct {
	DonationID    string  `json:"donationId"`
	TransactionID string  `json:"transactionId"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
}

// ConfirmPayment records a donation for a succeeded payment intent. Amount and
// currency come from Stripe, never from the caller.
func (s *StripeService) ConfirmPayment(ctx context.Context, in ConfirmStripeInput) (*ConfirmStripeResult, error) {
	id := strings.TrimSpace(in.PaymentIntentID)
	if id == "" {
		return nil, apperr.InvalidErr("Payment Intent ID is required")
	}
	if s.gateway == nil {
		return nil, apperr.Wrap(fmt.Errorf("stripe: %w", payment.ErrNotConfigured), "Payment confirmation failed")
	}
	s.log.Info("confirming stripe payment", zap.String("payment_intent_id", id))

	intent, err := s.gateway.GetPaymentIntent(ctx, id)
	if err != nil {
		return nil, stripeFailure(err, "Payment confirmation failed")
	}
	if intent.Status != domain.StripeIntentSucceeded {
		return nil, apperr.PreconditionErr(fmt.Sprintf("Payment not completed. Status: %s", intent.Status))
	}

	d := &models.Donation{
		Type:              domain.DonationTypeStripe,
		Amount:            float64(intent.AmountCents) / 100,
		Currency:          strings.ToUpper(intent.Currency),
		ProviderReference: id,
		Donor: models.Donor{
			UID:   in.Caller.donorUID(),
			Name:  domain.AnonymousDonor,
			Email: optionalString(intent.ReceiptEmail),
		},
		Request: models.RequestMetadata{UserAgent: in.Caller.UserAgent, IP: in.Caller.IP},
	}
	if intent.Created > 0 {
		created := time.Unix(intent.Created, 0).UTC()
		d.ProviderCreatedAt = &created
	}
	if intent.PaymentMethodID != "" {
		pm, err := s.gateway.GetPaymentMethod(ctx, intent.PaymentMethodID)
		if err != nil {
			s.log.Warn("could not retrieve payment method details",
				zap.String("payment_intent_id", id), zap.Error(err))
		} else {
			d.PaymentMethod = models.PaymentMethod{
				Type:     pm.Type,
				Brand:    pm.Brand,
				Last4:    pm.Last4,
				ExpMonth: pm.ExpMonth,
				ExpYear:  pm.ExpYear,
			}
		}
	}

	if err := s.donations.Record(ctx, d); err != nil {
		return nil, err
	}
	return &ConfirmStripeResult{
		DonationID:    d.ID,
		TransactionID: id,
		Amount:        d.Amount,
		Currency:      d.Currency,
	}, nil
}

type CheckoutResult struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// CreateCheckoutSession starts a hosted checkout. Nothing is persisted here.
func (s *StripeService) CreateCheckoutSession(ctx context.Context, in AmountInput) (*CheckoutResult, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if s.gateway == nil {
		return nil, apperr.Wrap(fmt.Errorf("stripe: %w", payment.ErrNotConfigured), "Failed to create checkout session")
	}
	sess, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutParams{
		AmountCents: toCents(in.Amount),
		Currency:    in.Currency,
		ProductName: "Donation to " + s.opts.SiteName,
		SuccessURL:  s.opts.SuccessURL,
		CancelURL:   s.opts.CancelURL,
		Metadata: map[string]string{
			"donor_uid":     in.Caller.donorUID(),
			"donation_type": "website_donation",
		},
	})
	if err != nil {
		return nil, stripeFailure(err, "Failed to create checkout session")
	}
	s.log.Info("stripe checkout session created", zap.String("session_id", sess.ID))
	return &CheckoutResult{SessionID: sess.ID, URL: sess.URL}, nil
}

// HandleWebhook verifies a signed event and applies it. Only signature problems
// reach the caller as invalid-argument; a missing donation is logged and acknowledged.
func (s *StripeService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if signature == "" || s.opts.WebhookSecret == "" {
		return apperr.InvalidErr("Invalid webhook signature")
	}
	event, err := payment.ParseStripeWebhook(payload, signature, s.opts.WebhookSecret)
	if err != nil {
		s.log.Error("webhook verification failed", zap.Error(err))
		if errors.Is(err, payment.ErrInvalidSignature) {
			return apperr.InvalidErr("Invalid webhook signature")
		}
		return apperr.InvalidErr("Invalid webhook payload")
	}

	switch event.Type {
	case payment.EventPaymentIntentSucceeded:
		s.log.Info("payment succeeded via webhook", zap.String("payment_intent_id", event.PaymentIntentID))
		found, err := s.donations.ConfirmByWebhook(ctx, domain.DonationTypeStripe, event.PaymentIntentID)
		if err != nil {
			return apperr.Wrap(err, "Webhook processing failed")
		}
		if !found {
			s.log.Info("no donation recorded yet for webhook", zap.String("payment_intent_id", event.PaymentIntentID))
			return nil
		}
		s.log.Info("donation updated with webhook confirmation", zap.String("payment_intent_id", event.PaymentIntentID))
	case payment.EventPaymentIntentFailed:
		s.log.Warn("payment failed via webhook", zap.String("payment_intent_id", event.PaymentIntentID))
	default:
		s.log.Info("unhandled webhook event type", zap.String("type", event.Type), zap.String("event_id", event.ID))
	}
	return nil
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// stripeFailure maps provider refusals to invalid-argument and everything else to internal.
func stripeFailure(err error, publicMsg string) error {
	var rejected *payment.RejectedError
	if errors.As(err, &rejected) {
		return apperr.InvalidErr(rejected.Error())
	}
	return apperr.Wrap(err, publicMsg)
}
