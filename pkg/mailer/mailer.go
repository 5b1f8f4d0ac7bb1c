// Package mailer delivers transactional email through Brevo's HTTP API or plain SMTP.
package mailer

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by senders that lack credentials or a host.
var ErrNotConfigured = errors.New("mailer: not configured")

type Sender interface {
	// Send delivers e and returns the provider's message id.
	Send(ctx context.Context, e Email) (string, error)
}

type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type Email struct {
	From    Address
	To      []Address
	ReplyTo *Address

	Subject string

	TextBody string
	HTMLBody string
}

func (e Email) validate() error {
	if len(e.To) == 0 {
		return errors.New("mailer: at least one recipient required")
	}
	if e.From.Email == "" {
		return errors.New("mailer: from address required")
	}
	if e.Subject == "" {
		return errors.New("mailer: subject required")
	}
	if e.TextBody == "" && e.HTMLBody == "" {
		return errors.New("mailer: textBody or htmlBody required")
	}
	return nil
}
