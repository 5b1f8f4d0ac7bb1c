package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"

	"github.com/xsantcastx/xsantcastx/internal/apperr"
	"github.com/xsantcastx/xsantcastx/internal/auth"
	"github.com/xsantcastx/xsantcastx/internal/domain"
	"github.com/xsantcastx/xsantcastx/internal/middleware"
	"github.com/xsantcastx/xsantcastx/internal/models"
	"github.com/xsantcastx/xsantcastx/internal/repository"
	"github.com/xsantcastx/xsantcastx/internal/service"
	"github.com/xsantcastx/xsantcastx/pkg/mailer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockContact struct {
	SendFunc func(ctx context.Context, req service.ContactRequest) (string, error)
}

func (m *MockContact) Send(ctx context.Context, req service.ContactRequest) (string, error) {
	return m.SendFunc(ctx, req)
}

type MockPayPal struct {
	ProcessFunc func(ctx context.Context, in service.ProcessPayPalInput) (*service.ProcessPayPalResult, error)
}

func (m *MockPayPal) ProcessPayment(ctx context.Context, in service.ProcessPayPalInput) (*service.ProcessPayPalResult, error) {
	return m.ProcessFunc(ctx, in)
}

type MockStripe struct {
	CreateIntentFunc   func(ctx context.Context, in service.AmountInput) (*service.PaymentIntentResult, error)
	ConfirmFunc        func(ctx context.Context, in service.ConfirmStripeInput) (*service.ConfirmStripeResult, error)
	CreateCheckoutFunc func(ctx context.Context, in service.AmountInput) (*service.CheckoutResult, error)
}

func (m *MockStripe) CreatePaymentIntent(ctx context.Context, in service.AmountInput) (*service.PaymentIntentResult, error) {
	return m.CreateIntentFunc(ctx, in)
}

func (m *MockStripe) ConfirmPayment(ctx context.Context, in service.ConfirmStripeInput) (*service.ConfirmStripeResult, error) {
	return m.ConfirmFunc(ctx, in)
}

func (m *MockStripe) CreateCheckoutSession(ctx context.Context, in service.AmountInput) (*service.CheckoutResult, error) {
	return m.CreateCheckoutFunc(ctx, in)
}

type MockStats struct {
	StatsFunc func(ctx context.Context, donationType string) (*service.StatsResult, error)
}

func (m *MockStats) Stats(ctx context.Context, donationType string) (*service.StatsResult, error) {
	return m.StatsFunc(ctx, donationType)
}

type staticVerifier map[string]*auth.Identity

func (v staticVerifier) Verify(_ context.Context, token string) (*auth.Identity, error) {
	if id, ok := v[token]; ok {
		return id, nil
	}
	return nil, auth.ErrInvalidToken
}

func testEngine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorHandler(zap.NewNop()))
	return r
}

func postJSON(r http.Handler, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return m
}

func TestContactSend(t *testing.T) {
	sender := &mailer.Mock{MessageID: "<msg-1@example.com>"}
	contact := service.NewContactService(sender, service.ContactOptions{
		From:     mailer.Address{Email: "noreply@example.com"},
		To:       mailer.Address{Email: "owner@example.com"},
		SiteName: "Example",
	}, zap.NewNop())
	r := testEngine()
	r.POST("/contact/send", NewContactHandler(contact).Send)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"valid", `{"name":"Ada","email":"ada@example.com","message":"Build me a site","budget":"5k"}`, http.StatusOK, ""},
		{"missing message", `{"name":"Ada","email":"ada@example.com"}`, http.StatusBadRequest, "invalid-argument"},
		{"bad email", `{"name":"Ada","email":"ada@example","message":"hi"}`, http.StatusBadRequest, "invalid-argument"},
		{"empty body", ``, http.StatusBadRequest, "invalid-argument"},
		{"malformed json", `{"name":`, http.StatusBadRequest, "invalid-argument"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(r, "/contact/send", tt.body, nil)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			body := decode(t, w)
			if tt.wantCode != "" {
				if body["code"] != tt.wantCode {
					t.Errorf("code = %v", body["code"])
				}
				return
			}
			if body["success"] != true || body["messageId"] != "<msg-1@example.com>" || body["message"] != contactSentMessage {
				t.Errorf("body = %v", body)
			}
		})
	}
	if sender.Count() != 1 {
		t.Fatalf("sent %d emails, want 1", sender.Count())
	}
	if got := sender.Sent[0].To[0].Email; got != "owner@example.com" {
		t.Errorf("destination = %q", got)
	}
}

func TestContactSendIgnoresClientDestination(t *testing.T) {
	sender := &mailer.Mock{MessageID: "<msg-2@example.com>"}
	contact := service.NewContactService(sender, service.ContactOptions{
		From:     mailer.Address{Email: "noreply@example.com"},
		To:       mailer.Address{Email: "owner@example.com"},
		SiteName: "Example",
	}, zap.NewNop())
	r := testEngine()
	r.POST("/contact/send", NewContactHandler(contact).Send)

	w := postJSON(r, "/contact/send", `{"name":"Ada","email":"ada@example.com","message":"hi","to":"evil@x.com"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if sender.Count() != 1 {
		t.Fatalf("sent %d emails, want 1", sender.Count())
	}
	sent := sender.Sent[0]
	if len(sent.To) != 1 || sent.To[0].Email != "owner@example.com" {
		t.Errorf("recipients = %+v", sent.To)
	}
	if sent.ReplyTo == nil || sent.ReplyTo.Email != "ada@example.com" {
		t.Errorf("reply-to = %+v", sent.ReplyTo)
	}
}

func TestContactSendProviderFailureIsGeneric(t *testing.T) {
	contact := &MockContact{SendFunc: func(context.Context, service.ContactRequest) (string, error) {
		return "", apperr.Wrap(errors.New("brevo: 401 key revoked"), "Failed to send email")
	}}
	r := testEngine()
	r.POST("/contact/send", NewContactHandler(contact).Send)

	w := postJSON(r, "/contact/send", `{"name":"a","email":"a@b.co","message":"m"}`, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if body := decode(t, w); body["error"] != "Failed to send email" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestPayPalProcessPayment(t *testing.T) {
	var got service.ProcessPayPalInput
	paypal := &MockPayPal{ProcessFunc: func(_ context.Context, in service.ProcessPayPalInput) (*service.ProcessPayPalResult, error) {
		got = in
		return &service.ProcessPayPalResult{TransactionID: in.OrderID, DonationID: "don-1"}, nil
	}}
	r := testEngine()
	r.POST("/paypal/processPayment", middleware.OptionalAuth(staticVerifier{"tok": {UID: "user-9"}}), NewPayPalHandler(paypal).ProcessPayment)

	w := postJSON(r, "/paypal/processPayment", `{"amount":25,"orderId":"PAY-1"}`, map[string]string{
		"Authorization": "Bearer tok",
		"User-Agent":    "test-agent",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["transactionId"] != "PAY-1" || body["donationId"] != "don-1" || body["message"] != "Payment processed successfully" {
		t.Errorf("body = %v", body)
	}
	if got.Amount != 25 || got.Caller.UID != "user-9" || got.Caller.UserAgent != "test-agent" {
		t.Errorf("input = %+v", got)
	}
}

func TestPayPalProcessPaymentMissingAmount(t *testing.T) {
	var got service.ProcessPayPalInput
	paypal := &MockPayPal{ProcessFunc: func(_ context.Context, in service.ProcessPayPalInput) (*service.ProcessPayPalResult, error) {
		got = in
		return nil, apperr.InvalidErr("Amount and orderId are required")
	}}
	r := testEngine()
	r.POST("/paypal/processPayment", NewPayPalHandler(paypal).ProcessPayment)

	w := postJSON(r, "/paypal/processPayment", `{"orderId":"PAY-1"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if got.Amount != 0 || got.Caller.UID != "" {
		t.Errorf("input = %+v", got)
	}
}

func TestStripeHandlers(t *testing.T) {
	stripe := &MockStripe{
		CreateIntentFunc: func(_ context.Context, in service.AmountInput) (*service.PaymentIntentResult, error) {
			if in.Amount != 10 || in.Currency != "eur" {
				t.Errorf("intent input = %+v", in)
			}
			return &service.PaymentIntentResult{ClientSecret: "pi_1_secret", PaymentIntentID: "pi_1"}, nil
		},
		ConfirmFunc: func(_ context.Context, in service.ConfirmStripeInput) (*service.ConfirmStripeResult, error) {
			if in.PaymentIntentID == "pi_pending" {
				return nil, apperr.PreconditionErr("Payment not completed. Status: requires_payment_method")
			}
			return &service.ConfirmStripeResult{DonationID: "don-2", TransactionID: in.PaymentIntentID, Amount: 10, Currency: "EUR"}, nil
		},
		CreateCheckoutFunc: func(_ context.Context, in service.AmountInput) (*service.CheckoutResult, error) {
			return &service.CheckoutResult{SessionID: "cs_1", URL: "https://checkout.stripe.com/c/cs_1"}, nil
		},
	}
	h := NewStripeHandler(stripe)
	r := testEngine()
	r.POST("/stripe/createPaymentIntent", h.CreatePaymentIntent)
	r.POST("/stripe/confirmPayment", h.ConfirmPayment)
	r.POST("/stripe/createCheckoutSession", h.CreateCheckoutSession)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		want       map[string]any
	}{
		{"intent", "/stripe/createPaymentIntent", `{"amount":10,"currency":"eur"}`, http.StatusOK,
			map[string]any{"success": true, "clientSecret": "pi_1_secret", "paymentIntentId": "pi_1"}},
		{"confirm", "/stripe/confirmPayment", `{"paymentIntentId":"pi_1"}`, http.StatusOK,
			map[string]any{"donationId": "don-2", "transactionId": "pi_1", "amount": 10.0, "currency": "EUR", "message": "Payment confirmed and logged successfully"}},
		{"confirm pending", "/stripe/confirmPayment", `{"paymentIntentId":"pi_pending"}`, http.StatusBadRequest,
			map[string]any{"code": "failed-precondition", "error": "Payment not completed. Status: requires_payment_method"}},
		{"checkout", "/stripe/createCheckoutSession", `{"amount":5}`, http.StatusOK,
			map[string]any{"sessionId": "cs_1", "url": "https://checkout.stripe.com/c/cs_1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(r, tt.path, tt.body, nil)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			body := decode(t, w)
			for k, v := range tt.want {
				if body[k] != v {
					t.Errorf("%s = %v, want %v", k, body[k], v)
				}
			}
		})
	}
}

func TestStripeWebhookMarksDonation(t *testing.T) {
	const secret = "whsec_handler_test"
	store := repository.NewMemoryDonationRepository()
	donations := service.NewDonationService(store, nil, false, zap.NewNop())
	svc := service.NewStripeService(nil, service.StripeOptions{WebhookSecret: secret}, donations, zap.NewNop())
	ctx := context.Background()
	if err := donations.Record(ctx, &models.Donation{Type: domain.DonationTypeStripe, Amount: 10, Currency: "USD", ProviderReference: "pi_777"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	r := testEngine()
	r.POST("/stripe/handleWebhook", NewStripeWebhookHandler(svc).Handle)

	payload := `{"id":"evt_9","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_777","object":"payment_intent","status":"succeeded"}}}`
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
	})

	w := postJSON(r, "/stripe/handleWebhook", string(signed.Payload), map[string]string{"Stripe-Signature": signed.Header})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if body := decode(t, w); body["message"] != "Webhook processed successfully" {
		t.Errorf("body = %v", body)
	}
	d, err := store.FindByProviderReference(ctx, domain.DonationTypeStripe, "pi_777")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !d.WebhookConfirmed {
		t.Error("donation not marked webhook-confirmed")
	}

	w = postJSON(r, "/stripe/handleWebhook", payload, map[string]string{"Stripe-Signature": "t=1,v1=deadbeef"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad signature status = %d", w.Code)
	}
	if body := decode(t, w); body["error"] != "Invalid webhook signature" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestStripeWebhookLargeEvent(t *testing.T) {
	const secret = "whsec_handler_test"
	store := repository.NewMemoryDonationRepository()
	donations := service.NewDonationService(store, nil, false, zap.NewNop())
	svc := service.NewStripeService(nil, service.StripeOptions{WebhookSecret: secret}, donations, zap.NewNop())
	ctx := context.Background()
	if err := donations.Record(ctx, &models.Donation{Type: domain.DonationTypeStripe, Amount: 10, Currency: "USD", ProviderReference: "pi_big"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	r := testEngine()
	r.POST("/stripe/handleWebhook", NewStripeWebhookHandler(svc).Handle)

	note := strings.Repeat("x", 70<<10)
	payload := `{"id":"evt_big","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_big","object":"payment_intent","status":"succeeded","description":"` + note + `"}}}`
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
	})

	w := postJSON(r, "/stripe/handleWebhook", string(signed.Payload), map[string]string{"Stripe-Signature": signed.Header})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	d, err := store.FindByProviderReference(ctx, domain.DonationTypeStripe, "pi_big")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !d.WebhookConfirmed {
		t.Error("donation not marked webhook-confirmed")
	}
}

func TestStripeWebhookTooLarge(t *testing.T) {
	svc := service.NewStripeService(nil, service.StripeOptions{WebhookSecret: "whsec_handler_test"},
		service.NewDonationService(repository.NewMemoryDonationRepository(), nil, false, zap.NewNop()), zap.NewNop())
	r := testEngine()
	r.POST("/stripe/handleWebhook", NewStripeWebhookHandler(svc).Handle)

	w := postJSON(r, "/stripe/handleWebhook", `{"pad":"`+strings.Repeat("x", maxWebhookBody)+`"}`, map[string]string{"Stripe-Signature": "t=1,v1=deadbeef"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	body := decode(t, w)
	if body["error"] != "Webhook payload too large" || body["code"] != "invalid-argument" {
		t.Errorf("body = %v", body)
	}
}

func TestStatsHandler(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stats := &MockStats{StatsFunc: func(_ context.Context, donationType string) (*service.StatsResult, error) {
		if donationType != domain.DonationTypePayPal {
			return nil, apperr.Wrap(errors.New("unexpected type"), "Failed to retrieve donation statistics")
		}
		return &service.StatsResult{
			Stats:           models.DonationStats{TotalAmount: 35, TotalCount: 2, AverageAmount: 17.5},
			RecentDonations: []models.RecentDonation{{ID: "d2", Amount: 25, Currency: "USD", Timestamp: ts, Donor: "Ada", ProviderReference: "PAY-2"}},
		}, nil
	}}
	r := testEngine()
	r.GET("/paypal/getStats", NewStatsHandler(stats, domain.DonationTypePayPal).Get)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/paypal/getStats", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		Success         bool                    `json:"success"`
		Stats           models.DonationStats    `json:"stats"`
		RecentDonations []models.RecentDonation `json:"recentDonations"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body.Success || body.Stats.TotalCount != 2 || body.Stats.AverageAmount != 17.5 {
		t.Errorf("body = %+v", body)
	}
	if len(body.RecentDonations) != 1 || body.RecentDonations[0].Donor != "Ada" {
		t.Errorf("recent = %+v", body.RecentDonations)
	}
}

func TestHealth(t *testing.T) {
	r := testEngine()
	r.GET("/healthz", Health)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	body := decode(t, w)
	if w.Code != http.StatusOK || body["status"] != "ok" || body["timestamp"] == "" {
		t.Fatalf("status = %d body = %v", w.Code, body)
	}
}
