// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

// Package web exposes the account flows over HTTP. It owns form
// parsing, cookies and status mapping; all business decisions live in
// the auth package.
package web

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/emberhost/emberhost/internal/auth"
)

// SessionCookie is the name of the session cookie.
const SessionCookie = "emberhost_session"

// AuthService is the subset of the auth flow the web layer drives.
// *auth.Flow satisfies it.
type AuthService interface {
	Register(ctx context.Context, req auth.RegisterRequest) (auth.Outcome, error)
	Login(ctx context.Context, req auth.LoginRequest) (auth.Outcome, error)
	VerifyEmail(ctx context.Context, accountID ulid.ULID, code, userAgent, remoteIP string) (auth.Outcome, error)
	SendResetPasswordEmail(ctx context.Context, req auth.ResetRequest) (auth.Outcome, error)
	CompleteResetPassword(ctx context.Context, req auth.CompleteResetRequest) (auth.Outcome, error)
	ValidateSession(ctx context.Context, token string) (*auth.Session, error)
	Logout(ctx context.Context, sessionID ulid.ULID) error
}

// Server is the public HTTP server for the account endpoints.
type Server struct {
	addr          string
	flow          AuthService
	logger        *slog.Logger
	secureCookies bool

	router     chi.Router
	listener   net.Listener
	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithInsecureCookies disables the Secure cookie attribute. Local
// development only.
func WithInsecureCookies() Option {
	return func(s *Server) { s.secureCookies = false }
}

// NewServer creates the web server.
func NewServer(addr string, flow AuthService, opts ...Option) (*Server, error) {
	if flow == nil {
		return nil, oops.Code("WEB_INVALID_DEPS").Errorf("auth service is required")
	}

	s := &Server{
		addr:          addr,
		flow:          flow,
		logger:        slog.Default(),
		secureCookies: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/reset-password", s.handleSendReset)
		r.Post("/reset-password/complete", s.handleCompleteReset)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)
			r.Post("/verify-email", s.handleVerifyEmail)
			r.Post("/logout", s.handleLogout)
			r.Get("/session", s.handleSession)
		})
	})

	s.router = r
	return s, nil
}

// Handler returns the HTTP handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving. It returns an error channel that receives any
// error from the HTTP server after it starts; the channel is closed on
// graceful stop.
func (s *Server) Start() (<-chan error, error) {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, oops.Code("WEB_LISTEN_FAILED").With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("web server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("web server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return oops.With("operation", "shutdown web server").Wrap(err)
	}
	s.logger.Info("web server stopped")
	return nil
}

// Addr returns the address the server is listening on, or "" if not
// running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
