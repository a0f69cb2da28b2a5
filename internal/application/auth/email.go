package auth

import (
	htmltemplate "html/template"
	"strings"
	"text/template"
	"time"

	"github.com/go-otp-auth/internal/infrastructure/smtp"
)

const emailSubject = "Your login OTP"

// emailParams is the data passed to both body templates.
type emailParams struct {
	SiteName   string
	Code       string
	Expiration time.Duration
}

var (
	textBody = template.Must(template.New("text").Parse(
		`Your {{.SiteName}} OTP is {{.Code}}. It expires in {{printf "%.f" .Expiration.Minutes}} minute(s).

If you did not request this code, you can ignore this email.
`))

	htmlBody = htmltemplate.Must(htmltemplate.New("html").Parse(
		`<p>Your {{.SiteName}} OTP is <strong>{{.Code}}</strong>. It expires in {{printf "%.f" .Expiration.Minutes}} minute(s).</p>
<p>If you did not request this code, you can ignore this email.</p>
`))
)

func renderLoginEmail(to string, p emailParams) (smtp.Message, error) {
	var text, html strings.Builder
	if err := textBody.Execute(&text, p); err != nil {
		return smtp.Message{}, err
	}
	if err := htmlBody.Execute(&html, p); err != nil {
		return smtp.Message{}, err
	}
	return smtp.Message{
		To:       to,
		Subject:  emailSubject,
		TextBody: text.String(),
		HTMLBody: html.String(),
	}, nil
}
