package service

import (
	"context"
	"sync"

	"github.com/xsantcastx/xsantcastx/internal/models"
	"github.com/xsantcastx/xsantcastx/pkg/payment"
)

type fakePayPal struct {
	calls    int
	getOrder func(ctx context.Context, orderID string) (*payment.PayPalOrder, error)
}

func (f *fakePayPal) GetOrder(ctx context.Context, orderID string) (*payment.PayPalOrder, error) {
	f.calls++
	return f.getOrder(ctx, orderID)
}

type fakeStripe struct {
	createIntent   func(ctx context.Context, p payment.IntentParams) (*payment.Intent, error)
	getIntent      func(ctx context.Context, id string) (*payment.Intent, error)
	getMethod      func(ctx context.Context, id string) (*payment.PaymentMethodDetails, error)
	createCheckout func(ctx context.Context, p payment.CheckoutParams) (*payment.CheckoutSession, error)
}

func (f *fakeStripe) CreatePaymentIntent(ctx context.Context, p payment.IntentParams) (*payment.Intent, error) {
	return f.createIntent(ctx, p)
}

func (f *fakeStripe) GetPaymentIntent(ctx context.Context, id string) (*payment.Intent, error) {
	return f.getIntent(ctx, id)
}

func (f *fakeStripe) GetPaymentMethod(ctx context.Context, id string) (*payment.PaymentMethodDetails, error) {
	return f.getMethod(ctx, id)
}

func (f *fakeStripe) CreateCheckoutSession(ctx context.Context, p payment.CheckoutParams) (*payment.CheckoutSession, error) {
	return f.createCheckout(ctx, p)
}

type recordingPublisher struct {
	mu        sync.Mutex
	donations []models.Donation
}

func (p *recordingPublisher) PublishDonation(d models.Donation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.donations = append(p.donations, d)
}

func completedOrder(id, value string) *payment.PayPalOrder {
	return &payment.PayPalOrder{
		ID:            id,
		Status:        "COMPLETED",
		PurchaseUnits: []payment.PayPalPurchaseUnit{{Amount: payment.PayPalMoney{Value: value, CurrencyCode: "USD"}}},
	}
}
