package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/plutov/paypal/v4"
)

// PayPalClient verifies checkout orders with the PayPal REST API. The access
// token is fetched on first use and refreshed by the SDK before it expires.
type PayPalClient struct {
	api *paypal.Client

	mu          sync.Mutex
	haveToken   bool
	clientSetup error
}

// NewPayPalClient builds a client against baseURL (sandbox or live host).
// httpClient, when non-nil, is used for both token and API calls.
func NewPayPalClient(baseURL, clientID, clientSecret string, httpClient *http.Client) *PayPalClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	api, err := paypal.NewClient(clientID, clientSecret, strings.TrimRight(baseURL, "/"))
	if err == nil {
		api.SetHTTPClient(httpClient)
	}
	return &PayPalClient{api: api, clientSetup: err}
}

type PayPalMoney struct {
	Value        string
	CurrencyCode string
}

type PayPalPurchaseUnit struct {
	Amount PayPalMoney
}

type PayPalName struct {
	GivenName string
	Surname   string
}

type PayPalPayer struct {
	Name         *PayPalName
	EmailAddress string
}

// PayPalOrder is the subset of /v2/checkout/orders/{id} the donation flow reads.
type PayPalOrder struct {
	ID            string
	Status        string
	PurchaseUnits []PayPalPurchaseUnit
	Payer         *PayPalPayer
}

// PaidAmount parses the first purchase unit's amount.
func (o *PayPalOrder) PaidAmount() (float64, error) {
	if len(o.PurchaseUnits) == 0 {
		return 0, errors.New("paypal order has no purchase units")
	}
	v, err := strconv.ParseFloat(o.PurchaseUnits[0].Amount.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("paypal order amount %q: %w", o.PurchaseUnits[0].Amount.Value, err)
	}
	return v, nil
}

// PayerName joins given name and surname; empty when PayPal sent no name.
func (o *PayPalOrder) PayerName() string {
	if o.Payer == nil || o.Payer.Name == nil {
		return ""
	}
	return strings.TrimSpace(o.Payer.Name.GivenName + " " + o.Payer.Name.Surname)
}

func (o *PayPalOrder) PayerEmail() string {
	if o.Payer == nil {
		return ""
	}
	return o.Payer.EmailAddress
}

// ensureToken fetches the first access token. Later refreshes happen inside
// the SDK once a token is present.
func (p *PayPalClient) ensureToken(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.haveToken {
		return nil
	}
	if _, err := p.api.GetAccessToken(ctx); err != nil {
		return fmt.Errorf("paypal token error: %s", describePayPalError(err))
	}
	p.haveToken = true
	return nil
}

// GetOrder fetches an order by id.
func (p *PayPalClient) GetOrder(ctx context.Context, orderID string) (*PayPalOrder, error) {
	if p.clientSetup != nil {
		return nil, fmt.Errorf("paypal client: %w", p.clientSetup)
	}
	if err := p.ensureToken(ctx); err != nil {
		return nil, err
	}
	o, err := p.api.GetOrder(ctx, url.PathEscape(orderID))
	if err != nil {
		var apiErr *paypal.ErrorResponse
		if errors.As(err, &apiErr) && apiErr.Response != nil {
			return nil, fmt.Errorf("paypal verification error: %s (status %d)", describePayPalError(err), apiErr.Response.StatusCode)
		}
		return nil, fmt.Errorf("paypal get order: %w", err)
	}
	return fromPayPalOrder(o), nil
}

func describePayPalError(err error) string {
	var apiErr *paypal.ErrorResponse
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	if apiErr.Response != nil {
		return fmt.Sprintf("status %d", apiErr.Response.StatusCode)
	}
	return "Unknown error"
}

func fromPayPalOrder(o *paypal.Order) *PayPalOrder {
	out := &PayPalOrder{ID: o.ID, Status: o.Status}
	for _, pu := range o.PurchaseUnits {
		var unit PayPalPurchaseUnit
		if pu.Amount != nil {
			unit.Amount = PayPalMoney{Value: pu.Amount.Value, CurrencyCode: pu.Amount.Currency}
		}
		out.PurchaseUnits = append(out.PurchaseUnits, unit)
	}
	if o.Payer != nil {
		out.Payer = &PayPalPayer{EmailAddress: o.Payer.EmailAddress}
		if o.Payer.Name != nil {
			out.Payer.Name = &PayPalName{GivenName: o.Payer.Name.GivenName, Surname: o.Payer.Name.Surname}
		}
	}
	return out
}
