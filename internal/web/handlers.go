// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

package web

import (
	"encoding/json"
	"net/http"
	"net/netip"
	"time"

	"github.com/emberhost/emberhost/internal/auth"
	"github.com/emberhost/emberhost/pkg/errutil"
)

// Form field names match the public site's submissions.
const (
	fieldEmail     = "email"
	fieldPassword  = "password"
	fieldCode      = "code"
	fieldChallenge = "cf-turnstile-response"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	out, err := s.flow.Register(r.Context(), auth.RegisterRequest{
		Email:          r.PostFormValue(fieldEmail),
		Password:       r.PostFormValue(fieldPassword),
		ChallengeToken: r.PostFormValue(fieldChallenge),
		RemoteIP:       remoteIP(r),
		UserAgent:      r.UserAgent(),
	})
	s.writeOutcome(w, r, out, err)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	out, err := s.flow.Login(r.Context(), auth.LoginRequest{
		Email:          r.PostFormValue(fieldEmail),
		Password:       r.PostFormValue(fieldPassword),
		ChallengeToken: r.PostFormValue(fieldChallenge),
		RemoteIP:       remoteIP(r),
		UserAgent:      r.UserAgent(),
	})
	s.writeOutcome(w, r, out, err)
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	session := sessionFrom(r.Context())
	out, err := s.flow.VerifyEmail(r.Context(), session.AccountID,
		r.PostFormValue(fieldCode), r.UserAgent(), remoteIP(r))
	s.writeOutcome(w, r, out, err)
}

func (s *Server) handleSendReset(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	out, err := s.flow.SendResetPasswordEmail(r.Context(), auth.ResetRequest{
		Email:          r.PostFormValue(fieldEmail),
		ChallengeToken: r.PostFormValue(fieldChallenge),
		RemoteIP:       remoteIP(r),
	})
	s.writeOutcome(w, r, out, err)
}

func (s *Server) handleCompleteReset(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	out, err := s.flow.CompleteResetPassword(r.Context(), auth.CompleteResetRequest{
		Email:       r.PostFormValue(fieldEmail),
		Code:        r.PostFormValue(fieldCode),
		NewPassword: r.PostFormValue(fieldPassword),
	})
	s.writeOutcome(w, r, out, err)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	if err := s.flow.Logout(r.Context(), session.ID); err != nil {
		s.writeError(w, err)
		return
	}
	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"success": "Logged out"})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"account_id": session.AccountID.String(),
		"expires_at": session.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// writeOutcome maps a flow result to an HTTP response. A session token
// becomes a cookie first, then a redirect wins over a message.
func (s *Server) writeOutcome(w http.ResponseWriter, r *http.Request, out auth.Outcome, err error) {
	if err != nil {
		s.writeError(w, err)
		return
	}
	if out.SessionToken != "" {
		s.setSessionCookie(w, out.SessionToken)
	}
	if out.RedirectTo != "" {
		http.Redirect(w, r, out.RedirectTo, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"success": out.Message})
}

// writeError renders a business failure as a 4xx with the user-facing
// message. Anything else is logged and hidden behind a plain 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	if fe, ok := auth.AsFlowError(err); ok {
		writeJSON(w, statusFor(fe.Kind), map[string]string{"error": fe.UserMessage()})
		return
	}
	errutil.LogError(s.logger, "request failed", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
}

func statusFor(kind auth.ErrorKind) int {
	switch kind {
	case auth.KindInvalidCredentials:
		return http.StatusUnauthorized
	case auth.KindAccountExists:
		return http.StatusConflict
	case auth.KindAccountLocked:
		return http.StatusLocked
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionTokenExpiry / time.Second),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Malformed form data"})
		return false
	}
	return true
}

// remoteIP prefers the CF-Connecting-IP header the Cloudflare proxy
// sets, falling back to the connection address.
func remoteIP(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		if _, err := netip.ParseAddr(ip); err == nil {
			return ip
		}
	}
	if addrPort, err := netip.ParseAddrPort(r.RemoteAddr); err == nil {
		return addrPort.Addr().String()
	}
	return r.RemoteAddr
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
