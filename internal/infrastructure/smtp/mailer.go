package smtp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/go-otp-auth/internal/config"
	"github.com/go-otp-auth/internal/pkg/id"
)

var ErrNoRecipient = errors.New("no recipient provided")

// Message is a single outbound email. At least one of TextBody or HTMLBody is set.
type Message struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer sends emails and returns the Message-ID it stamped on them.
type Mailer interface {
	SendEmail(ctx context.Context, msg Message) (string, error)
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
	send     sendFunc
	now      func() time.Time
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		send:     smtp.SendMail,
		now:      time.Now,
	}
}

func (m *mailer) SendEmail(ctx context.Context, msg Message) (string, error) {
	if msg.To == "" {
		return "", ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	messageID := fmt.Sprintf("<%s@%s>", id.New(), m.domain())
	raw := m.build(msg, messageID)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	addr := net.JoinHostPort(m.host, m.port)
	if err := m.send(addr, auth, m.from, []string{msg.To}, []byte(raw)); err != nil {
		return "", fmt.Errorf("smtp send: %w", err)
	}
	return messageID, nil
}

func (m *mailer) domain() string {
	if _, d, ok := strings.Cut(m.from, "@"); ok && d != "" {
		return strings.TrimSuffix(d, ">")
	}
	return m.host
}

func (m *mailer) build(msg Message, messageID string) string {
	body, contentType := buildBody(msg, strings.Trim(messageID, "<>"))
	headers := []string{
		"From: " + m.from,
		"To: " + msg.To,
		"Subject: " + msg.Subject,
		"Date: " + m.now().Format(time.RFC1123Z),
		"Message-ID: " + messageID,
		"MIME-Version: 1.0",
		"Content-Type: " + contentType,
	}
	return strings.Join(headers, "\r\n") + "\r\n\r\n" + body
}

func buildBody(msg Message, boundarySeed string) (body, contentType string) {
	if msg.HTMLBody != "" && msg.TextBody != "" {
		boundary := "otp-" + strings.NewReplacer("@", "-", ".", "-").Replace(boundarySeed)
		var sb strings.Builder
		fmt.Fprintf(&sb, "--%s\r\n", boundary)
		sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		sb.WriteString(msg.TextBody)
		fmt.Fprintf(&sb, "\r\n--%s\r\n", boundary)
		sb.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		sb.WriteString(msg.HTMLBody)
		fmt.Fprintf(&sb, "\r\n--%s--", boundary)
		return sb.String(), "multipart/alternative; boundary=" + boundary
	}
	if msg.HTMLBody != "" {
		return msg.HTMLBody, "text/html; charset=UTF-8"
	}
	return msg.TextBody, "text/plain; charset=UTF-8"
}
