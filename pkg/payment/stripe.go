package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Stripe event types the donation flow reacts to.
const (
	EventPaymentIntentSucceeded = "payment_intent.succeeded"
	EventPaymentIntentFailed    = "payment_intent.payment_failed"
)

// StripeClient is a thin adapter over stripe-go's per-key client.
type StripeClient struct {
	sc *stripe.Client
}

func NewStripeClient(secretKey string, opts ...stripe.ClientOption) *StripeClient {
	return &StripeClient{sc: stripe.NewClient(secretKey, opts...)}
}

type IntentParams struct {
	AmountCents int64
	Currency    string
	Description string
	Metadata    map[string]string
}

// Intent is the provider's view of a payment intent. Amount is in minor units
// and Created is unix seconds.
type Intent struct {
	ID              string
	Status          string
	AmountCents     int64
	Currency        string
	ClientSecret    string
	PaymentMethodID string
	ReceiptEmail    string
	Created         int64
}

type PaymentMethodDetails struct {
	Type     string
	Brand    string
	Last4    string
	ExpMonth int64
	ExpYear  int64
}

type CheckoutParams struct {
	AmountCents int64
	Currency    string
	ProductName string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// WebhookEvent is a verified Stripe event. PaymentIntentID is set for payment_intent.* events.
type WebhookEvent struct {
	ID              string
	Type            string
	PaymentIntentID string
}

func (c *StripeClient) CreatePaymentIntent(ctx context.Context, p IntentParams) (*Intent, error) {
	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(p.AmountCents),
		Currency: stripe.String(strings.ToLower(p.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if p.Description != "" {
		params.Description = stripe.String(p.Description)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	pi, err := c.sc.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		return nil, classifyStripeError(err)
	}
	return intentFromStripe(pi), nil
}

func (c *StripeClient) GetPaymentIntent(ctx context.Context, id string) (*Intent, error) {
	pi, err := c.sc.V1PaymentIntents.Retrieve(ctx, id, nil)
	if err != nil {
		return nil, classifyStripeError(err)
	}
	return intentFromStripe(pi), nil
}

func (c *StripeClient) GetPaymentMethod(ctx context.Context, id string) (*PaymentMethodDetails, error) {
	pm, err := c.sc.V1PaymentMethods.Retrieve(ctx, id, nil)
	if err != nil {
		return nil, classifyStripeError(err)
	}
	out := &PaymentMethodDetails{Type: string(pm.Type)}
	if pm.Card != nil {
		out.Brand = string(pm.Card.Brand)
		out.Last4 = pm.Card.Last4
		out.ExpMonth = pm.Card.ExpMonth
		out.ExpYear = pm.Card.ExpYear
	}
	return out, nil
}

func (c *StripeClient) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionCreateParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SubmitType: stripe.String(string(stripe.CheckoutSessionSubmitTypeDonate)),
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(p.Currency)),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String(p.ProductName),
					},
					UnitAmount: stripe.Int64(p.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	s, err := c.sc.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		return nil, classifyStripeError(err)
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// ParseStripeWebhook needs only the signing secret, so it works without an API key.
func ParseStripeWebhook(payload []byte, signature, secret string) (*WebhookEvent, error) {
	if signature == "" || secret == "" {
		return nil, ErrInvalidSignature
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	out := &WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if strings.HasPrefix(out.Type, "payment_intent.") && event.Data != nil {
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent from event %s: %w", event.ID, err)
		}
		out.PaymentIntentID = pi.ID
	}
	return out, nil
}

func intentFromStripe(pi *stripe.PaymentIntent) *Intent {
	out := &Intent{
		ID:           pi.ID,
		Status:       string(pi.Status),
		AmountCents:  pi.Amount,
		Currency:     string(pi.Currency),
		ClientSecret: pi.ClientSecret,
		ReceiptEmail: pi.ReceiptEmail,
		Created:      pi.Created,
	}
	if pi.PaymentMethod != nil {
		out.PaymentMethodID = pi.PaymentMethod.ID
	}
	return out
}

// classifyStripeError turns API refusals into RejectedError and leaves transport failures alone.
func classifyStripeError(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) && se.Msg != "" {
		return &RejectedError{Provider: "Stripe", Message: se.Msg}
	}
	return err
}
