package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	TLSMode  string // "", "starttls" or "tls"
}

type SMTPSender struct {
	cfg          SMTPConfig
	dialTimeout  time.Duration
	writeTimeout time.Duration
	now          func() time.Time
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{
		cfg:          cfg,
		dialTimeout:  5 * time.Second,
		writeTimeout: 10 * time.Second,
		now:          time.Now,
	}
}

func (m *SMTPSender) Send(ctx context.Context, e Email) (string, error) {
	if m.cfg.Host == "" {
		return "", ErrNotConfigured
	}
	raw, messageID, err := buildMIMEMessage(e, m.cfg.Host, m.now())
	if err != nil {
		return "", err
	}

	dialer := &net.Dialer{Timeout: m.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(m.cfg.Host, m.cfg.Port))
	if err != nil {
		return "", fmt.Errorf("smtp dial failed: %w", err)
	}
	defer conn.Close()

	tlsCfg := &tls.Config{ServerName: m.cfg.Host}
	if strings.EqualFold(m.cfg.TLSMode, "tls") {
		tlsConn := tls.Client(conn, tlsCfg)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			return "", fmt.Errorf("smtp tls handshake failed: %w", err)
		}
		conn = tlsConn
	}

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return "", fmt.Errorf("smtp new client failed: %w", err)
	}
	defer c.Quit()

	if strings.EqualFold(m.cfg.TLSMode, "starttls") {
		if ok, _ := c.Extension("STARTTLS"); !ok {
			return "", fmt.Errorf("smtp starttls not supported by server")
		}
		if err := c.StartTLS(tlsCfg); err != nil {
			return "", fmt.Errorf("smtp starttls failed: %w", err)
		}
	}

	if m.cfg.User != "" && m.cfg.Password != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)); err != nil {
				return "", fmt.Errorf("smtp auth failed: %w", err)
			}
		}
	}

	if err := c.Mail(e.From.Email); err != nil {
		return "", fmt.Errorf("smtp mail from failed: %w", err)
	}
	for _, rcpt := range e.To {
		if err := c.Rcpt(rcpt.Email); err != nil {
			return "", fmt.Errorf("smtp rcpt failed (%s): %w", rcpt.Email, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return "", fmt.Errorf("smtp data failed: %w", err)
	}
	_ = conn.SetWriteDeadline(time.Now().Add(m.writeTimeout))
	if _, err := w.Write([]byte(raw)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("smtp write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("smtp data close failed: %w", err)
	}
	return messageID, nil
}
