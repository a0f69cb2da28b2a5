package smtp

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capture struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
	raw  string
	err  error
}

func (c *capture) send(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	c.addr, c.auth, c.from, c.to, c.raw = addr, a, from, to, string(msg)
	return c.err
}

func newTestMailer(c *capture) *mailer {
	return &mailer{
		host: "mail.local",
		port: "1025",
		from: "noreply@example.com",
		send: c.send,
		now:  func() time.Time { return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestSendEmail_Multipart(t *testing.T) {
	c := &capture{}
	m := newTestMailer(c)

	messageID, err := m.SendEmail(context.Background(), Message{
		To:       "a@x.com",
		Subject:  "Your login OTP",
		TextBody: "code 483920",
		HTMLBody: "<b>483920</b>",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(messageID, "<"))
	assert.True(t, strings.HasSuffix(messageID, "@example.com>"))
	assert.Equal(t, "mail.local:1025", c.addr)
	assert.Nil(t, c.auth)
	assert.Equal(t, []string{"a@x.com"}, c.to)
	assert.Contains(t, c.raw, "Message-ID: "+messageID+"\r\n")
	assert.Contains(t, c.raw, "Subject: Your login OTP\r\n")
	assert.Contains(t, c.raw, "Content-Type: multipart/alternative; boundary=otp-")
	assert.Contains(t, c.raw, "Content-Type: text/plain; charset=UTF-8\r\n\r\ncode 483920")
	assert.Contains(t, c.raw, "Content-Type: text/html; charset=UTF-8\r\n\r\n<b>483920</b>")
}

func TestSendEmail_PlainOnly(t *testing.T) {
	c := &capture{}
	_, err := newTestMailer(c).SendEmail(context.Background(), Message{To: "a@x.com", TextBody: "hi"})
	require.NoError(t, err)
	assert.Contains(t, c.raw, "Content-Type: text/plain; charset=UTF-8\r\n\r\nhi")
}

func TestSendEmail_Failure(t *testing.T) {
	c := &capture{err: errors.New("connection refused")}
	messageID, err := newTestMailer(c).SendEmail(context.Background(), Message{To: "a@x.com", TextBody: "hi"})
	assert.Error(t, err)
	assert.Empty(t, messageID)
}

func TestSendEmail_NoRecipient(t *testing.T) {
	_, err := newTestMailer(&capture{}).SendEmail(context.Background(), Message{TextBody: "hi"})
	assert.ErrorIs(t, err, ErrNoRecipient)
}

func TestSendEmail_CanceledContext(t *testing.T) {
	c := &capture{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestMailer(c).SendEmail(ctx, Message{To: "a@x.com", TextBody: "hi"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, c.raw)
}
