package mailer

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"mime"
	"strings"
	"time"
)

func formatAddress(a Address) string {
	if a.Name == "" {
		return a.Email
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", a.Name), a.Email)
}

func formatAddressList(list []Address) string {
	parts := make([]string, len(list))
	for i, a := range list {
		parts[i] = formatAddress(a)
	}
	return strings.Join(parts, ", ")
}

func newMessageID(domain string) string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return fmt.Sprintf("<%s@%s>", hex.EncodeToString(b), domain)
}

func randomBoundary() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return "alt-" + hex.EncodeToString(b)
}

// buildMIMEMessage renders e as an RFC 5322 message and returns it with its Message-ID.
func buildMIMEMessage(e Email, messageIDDomain string, now time.Time) (raw, messageID string, err error) {
	if err := e.validate(); err != nil {
		return "", "", err
	}
	messageID = newMessageID(messageIDDomain)

	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Message-ID: %s\r\n", messageID)
	fmt.Fprintf(&b, "From: %s\r\n", formatAddress(e.From))
	fmt.Fprintf(&b, "To: %s\r\n", formatAddressList(e.To))
	if e.ReplyTo != nil && e.ReplyTo.Email != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", formatAddress(*e.ReplyTo))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", e.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")

	if e.TextBody != "" && e.HTMLBody != "" {
		boundary := randomBoundary()
		fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		writePart(&b, "text/plain", e.TextBody)
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		writePart(&b, "text/html", e.HTMLBody)
		fmt.Fprintf(&b, "--%s--\r\n", boundary)
		return b.String(), messageID, nil
	}
	if e.HTMLBody != "" {
		writePart(&b, "text/html", e.HTMLBody)
	} else {
		writePart(&b, "text/plain", e.TextBody)
	}
	return b.String(), messageID, nil
}

func writePart(b *strings.Builder, contentType, body string) {
	fmt.Fprintf(b, "Content-Type: %s; charset=UTF-8\r\n", contentType)
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\r\n")
	}
}
