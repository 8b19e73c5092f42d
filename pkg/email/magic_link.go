package email

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/abg-ub/better-auth/pkg/magiclink"
)

// magicLinkTemplate is intentionally minimal: one button, one fallback URL.
// The token itself never appears in the body, only inside the link.
var magicLinkTemplate = template.Must(template.New("magic_link").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">
  <h2>Sign in to {{.AppName}}</h2>
  <p>Click the button below to sign in. This link can be used once and expires shortly.</p>
  <p style="margin: 32px 0;">
    <a href="{{.URL}}" style="background: #1a1a1a; color: #ffffff; padding: 12px 24px; text-decoration: none; border-radius: 6px;">Sign in</a>
  </p>
  <p>Or copy this link into your browser:</p>
  <p><a href="{{.URL}}">{{.URL}}</a></p>
  <p style="color: #888888; font-size: 12px;">If you did not request this email, you can safely ignore it.</p>
</body>
</html>
`))

// MagicLinkMailer renders and delivers magic link sign-in emails. Implements
// magiclink.LinkSender.
type MagicLinkMailer struct {
	sender  EmailSender
	appName string
}

// NewMagicLinkMailer creates a mailer on top of any EmailSender.
func NewMagicLinkMailer(sender EmailSender, appName string) *MagicLinkMailer {
	if appName == "" {
		appName = "your account"
	}
	return &MagicLinkMailer{sender: sender, appName: appName}
}

func (m *MagicLinkMailer) SendMagicLink(ctx context.Context, msg magiclink.LinkMessage) error {
	var body strings.Builder
	err := magicLinkTemplate.Execute(&body, struct {
		AppName string
		URL     string
	}{
		AppName: m.appName,
		URL:     msg.URL,
	})
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}

	return m.sender.SendEmail(ctx, SendEmailParams{
		SendTo:   msg.Email,
		Subject:  fmt.Sprintf("Sign in to %s", m.appName),
		BodyHTML: body.String(),
		Tag:      "magic-link",
	})
}
