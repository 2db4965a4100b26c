// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

package mail

import (
	"context"
	"strings"
	"text/template"

	"github.com/samber/oops"

	"github.com/emberhost/emberhost/internal/auth"
)

// Subjects for the three transactional messages.
const (
	welcomeSubject      = "Welcome to Emberhost"
	verificationSubject = "Verify your email address"
	resetSubject        = "Reset your password"
)

var welcomeTmpl = template.Must(template.New("welcome").Parse(
	`Welcome to Emberhost!

Your account has been created. You can manage your servers at
{{.BaseURL}}/account once your email address is verified.

If you did not create this account, you can ignore this email.
`))

var verificationTmpl = template.Must(template.New("verification").Parse(
	`Verify your email address to finish setting up your account:

{{.BaseURL}}/verify-email?code={{.Code}}

This link expires in 15 minutes. If you did not create an account,
you can ignore this email.
`))

var resetTmpl = template.Must(template.New("reset").Parse(
	`A password reset was requested for your account. To choose a new
password, open:

{{.BaseURL}}/reset-password?code={{.Code}}

This link expires in 15 minutes. If you did not request a reset, you
can ignore this email; your password is unchanged.
`))

// templateData feeds the message templates.
type templateData struct {
	BaseURL string
	Code    string
}

// Mailer renders the transactional messages and hands them to a
// Sender. It implements auth.Mailer.
type Mailer struct {
	sender  Sender
	baseURL string
}

// NewMailer creates a Mailer. baseURL is the public site origin used
// to build links, without a trailing slash.
func NewMailer(sender Sender, baseURL string) (*Mailer, error) {
	if sender == nil {
		return nil, oops.Code("MAIL_INVALID_CONFIG").Errorf("sender is required")
	}
	if baseURL == "" {
		return nil, oops.Code("MAIL_INVALID_CONFIG").Errorf("base URL is required")
	}
	return &Mailer{
		sender:  sender,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// SendWelcome sends the post-registration welcome message.
func (m *Mailer) SendWelcome(ctx context.Context, to string) error {
	return m.send(ctx, to, welcomeSubject, welcomeTmpl, templateData{BaseURL: m.baseURL})
}

// SendVerification sends the email verification message with the
// plaintext one-time code embedded in the link.
func (m *Mailer) SendVerification(ctx context.Context, to, code string) error {
	return m.send(ctx, to, verificationSubject, verificationTmpl, templateData{BaseURL: m.baseURL, Code: code})
}

// SendPasswordReset sends the password reset message.
func (m *Mailer) SendPasswordReset(ctx context.Context, to, code string) error {
	return m.send(ctx, to, resetSubject, resetTmpl, templateData{BaseURL: m.baseURL, Code: code})
}

func (m *Mailer) send(ctx context.Context, to, subject string, tmpl *template.Template, data templateData) error {
	var body strings.Builder
	if err := tmpl.Execute(&body, data); err != nil {
		return oops.Code("MAIL_RENDER_FAILED").
			With("template", tmpl.Name()).
			Wrap(err)
	}

	if err := m.sender.Send(ctx, to, subject, body.String()); err != nil {
		return oops.Code("MAIL_SEND_FAILED").
			With("template", tmpl.Name()).
			Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ auth.Mailer = (*Mailer)(nil)
