package email_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abg-ub/better-auth/pkg/email"
	"github.com/abg-ub/better-auth/pkg/magiclink"
)

type recordingSender struct {
	params email.SendEmailParams
	err    error
}

func (s *recordingSender) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	s.params = params
	return s.err
}

func TestMagicLinkMailer(t *testing.T) {
	t.Parallel()

	t.Run("renders link into the body", func(t *testing.T) {
		t.Parallel()

		sender := &recordingSender{}
		mailer := email.NewMagicLinkMailer(sender, "Acme")

		err := mailer.SendMagicLink(context.Background(), magiclink.LinkMessage{
			Email: "user@example.com",
			URL:   "https://app.example.com/magic-link/verify?token=abc&callbackURL=%2F",
			Token: "abc",
		})
		require.NoError(t, err)

		assert.Equal(t, "user@example.com", sender.params.SendTo)
		assert.Equal(t, "Sign in to Acme", sender.params.Subject)
		assert.Equal(t, "magic-link", sender.params.Tag)
		assert.Contains(t, sender.params.BodyHTML, "https://app.example.com/magic-link/verify?token=abc")
	})

	t.Run("escapes the URL for HTML", func(t *testing.T) {
		t.Parallel()

		sender := &recordingSender{}
		mailer := email.NewMagicLinkMailer(sender, "Acme")

		err := mailer.SendMagicLink(context.Background(), magiclink.LinkMessage{
			Email: "user@example.com",
			URL:   `https://app.example.com/verify?a=1&b=2`,
			Token: "abc",
		})
		require.NoError(t, err)
		assert.Contains(t, sender.params.BodyHTML, "a=1&amp;b=2")
	})
}

func TestSendEmailParams_Validate(t *testing.T) {
	t.Parallel()

	valid := email.SendEmailParams{
		SendTo:   "user@example.com",
		Subject:  "Hello",
		BodyHTML: "<p>hi</p>",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*email.SendEmailParams)
	}{
		{"missing recipient", func(p *email.SendEmailParams) { p.SendTo = "" }},
		{"invalid recipient", func(p *email.SendEmailParams) { p.SendTo = "not-an-email" }},
		{"missing subject", func(p *email.SendEmailParams) { p.Subject = "" }},
		{"missing body", func(p *email.SendEmailParams) { p.BodyHTML = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := valid
			tt.mutate(&p)
			assert.ErrorIs(t, p.Validate(), email.ErrInvalidParams)
		})
	}
}
