// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberhost/emberhost/pkg/errutil"
)

// recordingSender captures sent messages for assertions.
type recordingSender struct {
	to      []string
	subject []string
	body    []string
	err     error
}

func (s *recordingSender) Send(_ context.Context, to, subject, body string) error {
	if s.err != nil {
		return s.err
	}
	s.to = append(s.to, to)
	s.subject = append(s.subject, subject)
	s.body = append(s.body, body)
	return nil
}

func TestNewMailer(t *testing.T) {
	t.Run("requires a sender", func(t *testing.T) {
		_, err := NewMailer(nil, "https://emberhost.example")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MAIL_INVALID_CONFIG")
	})

	t.Run("requires a base URL", func(t *testing.T) {
		_, err := NewMailer(&recordingSender{}, "")
		require.Error(t, err)
	})

	t.Run("strips trailing slash from base URL", func(t *testing.T) {
		sender := &recordingSender{}
		m, err := NewMailer(sender, "https://emberhost.example/")
		require.NoError(t, err)

		require.NoError(t, m.SendVerification(context.Background(), "a@example.com", "abc123"))
		assert.Contains(t, sender.body[0], "https://emberhost.example/verify-email?code=abc123")
		assert.NotContains(t, sender.body[0], "example//")
	})
}

func TestMailer_SendWelcome(t *testing.T) {
	sender := &recordingSender{}
	m, err := NewMailer(sender, "https://emberhost.example")
	require.NoError(t, err)

	require.NoError(t, m.SendWelcome(context.Background(), "a@example.com"))
	require.Len(t, sender.to, 1)
	assert.Equal(t, "a@example.com", sender.to[0])
	assert.Equal(t, welcomeSubject, sender.subject[0])
	assert.Contains(t, sender.body[0], "https://emberhost.example/account")
}

func TestMailer_SendVerification(t *testing.T) {
	sender := &recordingSender{}
	m, err := NewMailer(sender, "https://emberhost.example")
	require.NoError(t, err)

	require.NoError(t, m.SendVerification(context.Background(), "a@example.com", "deadbeef"))
	assert.Equal(t, verificationSubject, sender.subject[0])
	assert.Contains(t, sender.body[0], "/verify-email?code=deadbeef")
}

func TestMailer_SendPasswordReset(t *testing.T) {
	sender := &recordingSender{}
	m, err := NewMailer(sender, "https://emberhost.example")
	require.NoError(t, err)

	require.NoError(t, m.SendPasswordReset(context.Background(), "a@example.com", "deadbeef"))
	assert.Equal(t, resetSubject, sender.subject[0])
	assert.Contains(t, sender.body[0], "/reset-password?code=deadbeef")
}

func TestMailer_SenderFailurePropagates(t *testing.T) {
	sender := &recordingSender{err: errors.New("connection reset")}
	m, err := NewMailer(sender, "https://emberhost.example")
	require.NoError(t, err)

	err = m.SendWelcome(context.Background(), "a@example.com")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MAIL_SEND_FAILED")
}

func TestNewSMTPSender(t *testing.T) {
	t.Run("validates config", func(t *testing.T) {
		_, err := NewSMTPSender(SMTPConfig{Port: 587, From: "noreply@emberhost.example"})
		require.Error(t, err)

		_, err = NewSMTPSender(SMTPConfig{Host: "smtp.example.com", From: "noreply@emberhost.example"})
		require.Error(t, err)

		_, err = NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 587})
		require.Error(t, err)
	})

	t.Run("accepts valid config", func(t *testing.T) {
		s, err := NewSMTPSender(SMTPConfig{
			Host: "smtp.example.com",
			Port: 587,
			From: "noreply@emberhost.example",
		})
		require.NoError(t, err)
		assert.NotNil(t, s)
	})
}

func TestSMTPSender_CanceledContext(t *testing.T) {
	s, err := NewSMTPSender(SMTPConfig{
		Host: "smtp.example.com",
		Port: 587,
		From: "noreply@emberhost.example",
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = s.Send(ctx, "a@example.com", "subject", "body")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MAIL_SEND_FAILED")
}

func TestLogSender(t *testing.T) {
	s := NewLogSender(nil)
	assert.NoError(t, s.Send(context.Background(), "a@example.com", "subject", "body"))
}
