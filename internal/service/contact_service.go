package service

import (
	"bytes"
	"context"
	"embed"
	"errors"
	htmltemplate "html/template"
	"text/template"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/xsantcastx/xsantcastx/internal/apperr"
	"github.com/xsantcastx/xsantcastx/internal/validation"
	"github.com/xsantcastx/xsantcastx/pkg/mailer"
)

//go:embed templates/contact.html.tmpl templates/contact.txt.tmpl
var contactTemplates embed.FS

var (
	contactHTML = htmltemplate.Must(htmltemplate.ParseFS(contactTemplates, "templates/contact.html.tmpl"))
	contactText = template.Must(template.ParseFS(contactTemplates, "templates/contact.txt.tmpl"))
)

// ContactRequest is the contact form payload. It carries no destination field.
type ContactRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,contactemail"`
	Message     string `json:"message" validate:"required"`
	ProjectType string `json:"projectType,omitempty"`
	Budget      string `json:"budget,omitempty"`
}

type ContactOptions struct {
	From     mailer.Address
	To       mailer.Address
	SiteName string
}

type ContactService struct {
	sender   mailer.Sender
	opts     ContactOptions
	validate *validator.Validate
	log      *zap.Logger
	now      func() time.Time
}

// NewContactService accepts a nil sender; Send then reports a configuration error.
func NewContactService(sender mailer.Sender, opts ContactOptions, log *zap.Logger) *ContactService {
	return &ContactService{
		sender:   sender,
		opts:     opts,
		validate: validation.New(),
		log:      log,
		now:      time.Now,
	}
}

type contactView struct {
	ContactRequest
	SiteName string
	SentAt   string
}

// Send validates req and mails it to the configured owner address with the
// submitter as reply-to.
func (s *ContactService) Send(ctx context.Context, req ContactRequest) (messageID string, err error) {
	if fields := validation.FromError(s.validate.Struct(req)); len(fields) > 0 {
		if fields.HasTag("required") {
			return "", apperr.InvalidErr("Missing required fields: name, email, and message are required")
		}
		return "", apperr.InvalidErr("Invalid email format")
	}
	if s.sender == nil {
		s.log.Error("email provider not configured")
		return "", apperr.Wrap(mailer.ErrNotConfigured, "Email service configuration error")
	}

	email, err := s.render(req)
	if err != nil {
		return "", apperr.Wrap(err, "")
	}
	id, err := s.sender.Send(ctx, email)
	if errors.Is(err, mailer.ErrNotConfigured) {
		s.log.Error("email provider not configured")
		return "", apperr.Wrap(err, "Email service configuration error")
	}
	if err != nil {
		s.log.Error("contact email failed", zap.Error(err))
		return "", apperr.Wrap(err, "Failed to send email")
	}
	s.log.Info("contact email sent", zap.String("message_id", id))
	return id, nil
}

func (s *ContactService) render(req ContactRequest) (mailer.Email, error) {
	view := contactView{
		ContactRequest: req,
		SiteName:       s.opts.SiteName,
		SentAt:         s.now().UTC().Format(time.RFC1123),
	}
	var html, text bytes.Buffer
	if err := contactHTML.Execute(&html, view); err != nil {
		return mailer.Email{}, err
	}
	if err := contactText.Execute(&text, view); err != nil {
		return mailer.Email{}, err
	}
	return mailer.Email{
		From:     s.opts.From,
		To:       []mailer.Address{s.opts.To},
		ReplyTo:  &mailer.Address{Email: req.Email, Name: req.Name},
		Subject:  "New Project Inquiry from " + req.Name + " - " + s.opts.SiteName,
		HTMLBody: html.String(),
		TextBody: text.String(),
	}, nil
}
