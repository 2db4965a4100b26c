// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

// Package mail renders and dispatches transactional email.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"

	"github.com/samber/oops"
)

// Sender delivers a single rendered message.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPConfig holds SMTP transport settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers mail over SMTP with optional PLAIN auth.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender creates an SMTPSender.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, oops.Code("MAIL_INVALID_CONFIG").Errorf("smtp host is required")
	}
	if cfg.Port <= 0 {
		return nil, oops.Code("MAIL_INVALID_CONFIG").Errorf("smtp port must be positive, got %d", cfg.Port)
	}
	if cfg.From == "" {
		return nil, oops.Code("MAIL_INVALID_CONFIG").Errorf("from address is required")
	}
	return &SMTPSender{cfg: cfg}, nil
}

// Send delivers one message. The context is honored up to the point
// smtp.SendMail starts; the net/smtp dialogue itself is not cancelable.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return oops.Code("MAIL_SEND_FAILED").
			With("operation", "check context").
			Wrap(err)
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		s.cfg.From, to, subject, body)

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg)); err != nil {
		return oops.Code("MAIL_SEND_FAILED").
			With("operation", "smtp send").
			With("host", s.cfg.Host).
			Wrap(err)
	}
	return nil
}

// LogSender writes messages to the log instead of delivering them.
// Used in development and tests.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// Send logs the message instead of sending it.
func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	s.logger.InfoContext(ctx, "mail not sent (log sender)",
		"to", to,
		"subject", subject,
		"body_length", len(body))
	return nil
}

// Compile-time interface checks.
var (
	_ Sender = (*SMTPSender)(nil)
	_ Sender = (*LogSender)(nil)
)
