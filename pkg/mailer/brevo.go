package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	brevo "github.com/getbrevo/brevo-go/lib"
)

const DefaultBrevoURL = "https://api.brevo.com/v3"

// BrevoSender delivers through Brevo's transactional email API.
type BrevoSender struct {
	apiKey string
	api    *brevo.APIClient
}

func NewBrevoSender(apiURL, apiKey string, client *http.Client) *BrevoSender {
	if apiURL == "" {
		apiURL = DefaultBrevoURL
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	cfg := brevo.NewConfiguration()
	cfg.BasePath = strings.TrimRight(apiURL, "/")
	cfg.HTTPClient = client
	cfg.AddDefaultHeader("api-key", apiKey)
	return &BrevoSender{apiKey: apiKey, api: brevo.NewAPIClient(cfg)}
}

// APIError is a non-2xx answer from the provider. Body is for server logs only.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("brevo API error: %d: %s", e.Status, e.Body)
}

func (b *BrevoSender) Send(ctx context.Context, e Email) (string, error) {
	if b.apiKey == "" {
		return "", ErrNotConfigured
	}
	if err := e.validate(); err != nil {
		return "", err
	}
	msg := brevo.SendSmtpEmail{
		Sender:      &brevo.SendSmtpEmailSender{Email: e.From.Email, Name: e.From.Name},
		Subject:     e.Subject,
		HtmlContent: e.HTMLBody,
		TextContent: e.TextBody,
	}
	for _, to := range e.To {
		msg.To = append(msg.To, brevo.SendSmtpEmailTo{Email: to.Email, Name: to.Name})
	}
	if e.ReplyTo != nil {
		msg.ReplyTo = &brevo.SendSmtpEmailReplyTo{Email: e.ReplyTo.Email, Name: e.ReplyTo.Name}
	}

	out, res, err := b.api.TransactionalEmailsApi.SendTransacEmail(ctx, msg)
	if err != nil {
		var apiErr brevo.GenericSwaggerError
		if res != nil && res.StatusCode >= 300 && errors.As(err, &apiErr) {
			return "", &APIError{Status: res.StatusCode, Body: string(apiErr.Body())}
		}
		return "", fmt.Errorf("brevo send: %w", err)
	}
	return out.MessageId, nil
}
