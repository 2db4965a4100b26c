// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// ChallengeVerifier checks a client-submitted proof-of-humanity token
// against a remote bot-mitigation service.
type ChallengeVerifier interface {
	// Verify returns whether the service accepted the token. A network
	// or decode failure is returned as an error, not a rejection.
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// Mailer dispatches transactional emails. Rendering and transport are
// the implementation's concern; the flow only states intent.
type Mailer interface {
	SendWelcome(ctx context.Context, to string) error
	SendVerification(ctx context.Context, to, code string) error
	SendPasswordReset(ctx context.Context, to, code string) error
}

// Outcome is the success side of a flow result. Exactly one of
// RedirectTo and Message is set. SessionToken, when non-empty, is a
// fresh plaintext session token the transport layer must attach to the
// response (cookie).
type Outcome struct {
	RedirectTo   string
	Message      string
	SessionToken string
}

// AccountRedirect is where register, login and verify-email land on success.
const AccountRedirect = "/account"

// ResetSentMessage is returned by SendResetPasswordEmail on both the
// found and not-found branches. The two responses must stay
// byte-identical so the endpoint cannot be used to enumerate accounts.
const ResetSentMessage = "If an account with that email exists, a reset email has been sent"

// PasswordChangedMessage is returned after a completed password reset.
const PasswordChangedMessage = "Your password has been changed"

// dummyPasswordHash is used when a login targets a missing or
// external-only account, so password verification still runs and
// response time stays constant. This is NOT a real credential.
//
//nolint:gosec // G101: intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Flow coordinates the account lifecycle operations: register, login,
// email verification and password reset. Each operation validates
// input, invokes the external capabilities in a fixed order, and
// produces either an Outcome or an error. Business failures come back
// as *FlowError; infrastructure failures propagate oops-wrapped to the
// transport boundary and are never retried here.
type Flow struct {
	accounts AccountRepository
	codes    CodeRepository
	sessions SessionRepository
	links    ExternalAccountRepository
	hasher   PasswordHasher
	captcha  ChallengeVerifier
	mailer   Mailer
	logger   *slog.Logger
}

// NewFlow creates a new Flow with a no-op default logger.
func NewFlow(
	accounts AccountRepository,
	codes CodeRepository,
	sessions SessionRepository,
	links ExternalAccountRepository,
	hasher PasswordHasher,
	captcha ChallengeVerifier,
	mailer Mailer,
) (*Flow, error) {
	return NewFlowWithLogger(accounts, codes, sessions, links, hasher, captcha, mailer, slog.Default())
}

// NewFlowWithLogger creates a new Flow logging through the given logger.
func NewFlowWithLogger(
	accounts AccountRepository,
	codes CodeRepository,
	sessions SessionRepository,
	links ExternalAccountRepository,
	hasher PasswordHasher,
	captcha ChallengeVerifier,
	mailer Mailer,
	logger *slog.Logger,
) (*Flow, error) {
	switch {
	case accounts == nil:
		return nil, oops.Code("FLOW_INVALID_DEPS").Errorf("accounts repository is required")
	case codes == nil:
		return nil, oops.Code("FLOW_INVALID_DEPS").Errorf("codes repository is required")
	case sessions == nil:
		return nil, oops.Code("FLOW_INVALID_DEPS").Errorf("sessions repository is required")
	case links == nil:
		return nil, oops.Code("FLOW_INVALID_DEPS").Errorf("external accounts repository is required")
	case hasher == nil:
		return nil, oops.Code("FLOW_INVALID_DEPS").Errorf("password hasher is required")
	case captcha == nil:
		return nil, oops.Code("FLOW_INVALID_DEPS").Errorf("challenge verifier is required")
	case mailer == nil:
		return nil, oops.Code("FLOW_INVALID_DEPS").Errorf("mailer is required")
	case logger == nil:
		return nil, oops.Code("FLOW_INVALID_DEPS").Errorf("logger is required")
	}

	return &Flow{
		accounts: accounts,
		codes:    codes,
		sessions: sessions,
		links:    links,
		hasher:   hasher,
		captcha:  captcha,
		mailer:   mailer,
		logger:   logger,
	}, nil
}

// RegisterRequest carries the fields of a registration form submission.
type RegisterRequest struct {
	Email          string
	Password       string
	ChallengeToken string
	RemoteIP       string
	UserAgent      string
	Identity       *ExternalIdentity
}

// LoginRequest carries the fields of a login form submission.
type LoginRequest struct {
	Email          string
	Password       string
	ChallengeToken string
	RemoteIP       string
	UserAgent      string
	Identity       *ExternalIdentity
}

// ResetRequest carries the fields of a password-reset request form.
type ResetRequest struct {
	Email          string
	ChallengeToken string
	RemoteIP       string
}

// CompleteResetRequest carries the fields of a password-reset completion form.
type CompleteResetRequest struct {
	Email       string
	Code        string
	NewPassword string
}

// Register creates a new unverified account, issues an email
// verification code, sends the welcome and verification emails in that
// order, links any external identity from the request, and starts a
// session. Email dispatch failures abort the remaining steps without
// rolling back the created account; the verification code can be
// re-requested later.
func (f *Flow) Register(ctx context.Context, req RegisterRequest) (out Outcome, err error) {
	start := time.Now()
	defer func() { observeFlow("register", time.Since(start).Seconds(), err) }()

	ok, err := f.captcha.Verify(ctx, req.ChallengeToken, req.RemoteIP)
	if err != nil {
		return Outcome{}, oops.Code("REGISTER_FAILED").
			With("operation", "verify challenge").
			Wrap(err)
	}
	if !ok {
		return Outcome{}, flowErr(KindInvalidCaptcha)
	}

	if !IsValidInput(req.Email, req.Password) {
		return Outcome{}, flowErr(KindInvalidCredentials)
	}

	passwordHash, err := f.hasher.Hash(req.Password)
	if err != nil {
		return Outcome{}, oops.Code("REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	// Fast-path duplicate check. The accounts table enforces
	// UNIQUE(email) as the authoritative guard; a concurrent insert
	// racing past this check is caught below as ErrDuplicate.
	_, err = f.accounts.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return Outcome{}, flowErr(KindAccountExists)
	case !errors.Is(err, ErrNotFound):
		return Outcome{}, oops.Code("REGISTER_FAILED").
			With("operation", "get account by email").
			Wrap(err)
	}

	account, err := NewAccount(req.Email, PasswordCredential{Hash: passwordHash})
	if err != nil {
		return Outcome{}, flowErr(KindInvalidCredentials)
	}

	if err = f.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return Outcome{}, flowErr(KindAccountExists)
		}
		return Outcome{}, oops.Code("REGISTER_FAILED").
			With("operation", "create account").
			Wrap(err)
	}

	code, err := f.GenerateEmailVerificationCode(ctx, account.ID)
	if err != nil {
		return Outcome{}, err
	}

	// Welcome first, then verification; both awaited, neither caught.
	if err = f.mailer.SendWelcome(ctx, account.Email); err != nil {
		return Outcome{}, oops.Code("REGISTER_FAILED").
			With("operation", "send welcome email").
			Wrap(err)
	}
	EmailsSent.WithLabelValues("welcome").Inc()

	if err = f.mailer.SendVerification(ctx, account.Email, code); err != nil {
		return Outcome{}, oops.Code("REGISTER_FAILED").
			With("operation", "send verification email").
			Wrap(err)
	}
	EmailsSent.WithLabelValues("verification").Inc()

	if err = f.linkIdentity(ctx, account.ID, req.Identity); err != nil {
		return Outcome{}, err
	}

	token, err := f.startSession(ctx, account.ID, req.UserAgent, req.RemoteIP)
	if err != nil {
		return Outcome{}, err
	}

	f.logger.InfoContext(ctx, "account registered",
		"account_id", account.ID.String(),
		"state", account.State.String())

	return Outcome{RedirectTo: AccountRedirect, SessionToken: token}, nil
}

// Login authenticates an account by email and password and starts a
// session. A missing account, a wrong password and an external-only
// account are indistinguishable to the caller; argon2 verification
// runs in every case so response time stays constant.
func (f *Flow) Login(ctx context.Context, req LoginRequest) (out Outcome, err error) {
	start := time.Now()
	defer func() { observeFlow("login", time.Since(start).Seconds(), err) }()

	ok, err := f.captcha.Verify(ctx, req.ChallengeToken, req.RemoteIP)
	if err != nil {
		return Outcome{}, oops.Code("LOGIN_FAILED").
			With("operation", "verify challenge").
			Wrap(err)
	}
	if !ok {
		return Outcome{}, flowErr(KindInvalidCaptcha)
	}

	if !IsValidInput(req.Email, req.Password) {
		return Outcome{}, flowErr(KindInvalidCredentials)
	}

	account, lookupErr := f.accounts.GetByEmail(ctx, req.Email)

	targetHash := dummyPasswordHash
	accountUsable := false

	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return Outcome{}, oops.Code("LOGIN_FAILED").
				With("operation", "get account by email").
				Wrap(lookupErr)
		}
	} else if hash, hasPassword := account.PasswordHash(); hasPassword {
		targetHash = hash
		accountUsable = true
	}
	// External-only accounts fall through with the dummy hash: the
	// password path cannot authenticate them, but verification still
	// runs to keep timing uniform.

	valid, verifyErr := f.hasher.Verify(req.Password, targetHash)
	if verifyErr != nil {
		if !accountUsable {
			return Outcome{}, flowErr(KindInvalidCredentials)
		}
		return Outcome{}, oops.Code("LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if !accountUsable || !valid {
		if account != nil {
			account.RecordFailure()
			_ = f.accounts.Update(ctx, account) //nolint:errcheck // Best effort
		}
		return Outcome{}, flowErr(KindInvalidCredentials)
	}

	// Lockout is checked after password verification to keep timing constant.
	if account.IsLocked() {
		return Outcome{}, flowErr(KindAccountLocked)
	}

	account.RecordSuccess()
	_ = f.accounts.Update(ctx, account) //nolint:errcheck // Best effort, login succeeds regardless

	if err = f.linkIdentity(ctx, account.ID, req.Identity); err != nil {
		return Outcome{}, err
	}

	token, err := f.startSession(ctx, account.ID, req.UserAgent, req.RemoteIP)
	if err != nil {
		return Outcome{}, err
	}

	f.logger.InfoContext(ctx, "account logged in",
		"account_id", account.ID.String())

	return Outcome{RedirectTo: AccountRedirect, SessionToken: token}, nil
}

// VerifyEmail redeems an email verification code for the current
// account. On success the code (and every other pending verification
// code for the account) is deleted, the account flips to verified, all
// existing sessions are invalidated, and a fresh session is started.
func (f *Flow) VerifyEmail(ctx context.Context, accountID ulid.ULID, code, userAgent, remoteIP string) (out Outcome, err error) {
	start := time.Now()
	defer func() { observeFlow("verify_email", time.Since(start).Seconds(), err) }()

	if code == "" {
		return Outcome{}, flowErr(KindInvalidCode)
	}

	_, err = f.codes.GetValid(ctx, PurposeEmailVerification, accountID, HashCode(code))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Outcome{}, flowErr(KindInvalidCode)
		}
		return Outcome{}, oops.Code("VERIFY_EMAIL_FAILED").
			With("operation", "get verification code").
			Wrap(err)
	}

	if err = f.codes.DeleteByAccount(ctx, PurposeEmailVerification, accountID); err != nil {
		return Outcome{}, oops.Code("VERIFY_EMAIL_FAILED").
			With("operation", "delete verification codes").
			Wrap(err)
	}

	account, err := f.accounts.GetByID(ctx, accountID)
	if err != nil {
		return Outcome{}, oops.Code("VERIFY_EMAIL_FAILED").
			With("operation", "get account").
			Wrap(err)
	}

	account.MarkVerified()
	if err = f.accounts.Update(ctx, account); err != nil {
		return Outcome{}, oops.Code("VERIFY_EMAIL_FAILED").
			With("operation", "mark account verified").
			Wrap(err)
	}

	// Force re-authentication: the pre-verification sessions die and a
	// fresh verified session takes their place.
	if err = f.sessions.DeleteByAccount(ctx, accountID); err != nil {
		return Outcome{}, oops.Code("VERIFY_EMAIL_FAILED").
			With("operation", "invalidate sessions").
			Wrap(err)
	}

	token, err := f.startSession(ctx, accountID, userAgent, remoteIP)
	if err != nil {
		return Outcome{}, err
	}

	f.logger.InfoContext(ctx, "email verified",
		"account_id", accountID.String())

	return Outcome{RedirectTo: AccountRedirect, SessionToken: token}, nil
}

// SendResetPasswordEmail issues a password-reset code and emails it to
// the account, if one exists. The response is byte-identical whether
// or not the email is registered.
func (f *Flow) SendResetPasswordEmail(ctx context.Context, req ResetRequest) (out Outcome, err error) {
	start := time.Now()
	defer func() { observeFlow("send_reset_email", time.Since(start).Seconds(), err) }()

	ok, err := f.captcha.Verify(ctx, req.ChallengeToken, req.RemoteIP)
	if err != nil {
		return Outcome{}, oops.Code("RESET_REQUEST_FAILED").
			With("operation", "verify challenge").
			Wrap(err)
	}
	if !ok {
		return Outcome{}, flowErr(KindInvalidCaptcha)
	}

	if req.Email == "" {
		return Outcome{}, flowErr(KindInvalidEmail)
	}

	account, err := f.accounts.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Anti-enumeration: same message as the found branch.
			return Outcome{Message: ResetSentMessage}, nil
		}
		return Outcome{}, oops.Code("RESET_REQUEST_FAILED").
			With("operation", "get account by email").
			Wrap(err)
	}

	code, err := f.GeneratePasswordResetCode(ctx, account.ID)
	if err != nil {
		return Outcome{}, err
	}

	if err = f.mailer.SendPasswordReset(ctx, account.Email, code); err != nil {
		return Outcome{}, oops.Code("RESET_REQUEST_FAILED").
			With("operation", "send reset email").
			Wrap(err)
	}
	EmailsSent.WithLabelValues("password_reset").Inc()

	return Outcome{Message: ResetSentMessage}, nil
}

// CompleteResetPassword redeems a password-reset code and installs a
// new password. All reset codes and all sessions for the account are
// invalidated. An unknown email reports InvalidCode so the completion
// endpoint reveals no more than the request endpoint does.
func (f *Flow) CompleteResetPassword(ctx context.Context, req CompleteResetRequest) (out Outcome, err error) {
	start := time.Now()
	defer func() { observeFlow("complete_reset", time.Since(start).Seconds(), err) }()

	if req.Code == "" {
		return Outcome{}, flowErr(KindInvalidCode)
	}
	if !IsValidInput(req.Email, req.NewPassword) {
		return Outcome{}, flowErr(KindInvalidCredentials)
	}

	account, err := f.accounts.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Outcome{}, flowErr(KindInvalidCode)
		}
		return Outcome{}, oops.Code("RESET_COMPLETE_FAILED").
			With("operation", "get account by email").
			Wrap(err)
	}

	_, err = f.codes.GetValid(ctx, PurposePasswordReset, account.ID, HashCode(req.Code))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Outcome{}, flowErr(KindInvalidCode)
		}
		return Outcome{}, oops.Code("RESET_COMPLETE_FAILED").
			With("operation", "get reset code").
			Wrap(err)
	}

	passwordHash, err := f.hasher.Hash(req.NewPassword)
	if err != nil {
		return Outcome{}, oops.Code("RESET_COMPLETE_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	if err = f.accounts.UpdatePassword(ctx, account.ID, passwordHash); err != nil {
		return Outcome{}, oops.Code("RESET_COMPLETE_FAILED").
			With("operation", "update password").
			Wrap(err)
	}

	if err = f.codes.DeleteByAccount(ctx, PurposePasswordReset, account.ID); err != nil {
		return Outcome{}, oops.Code("RESET_COMPLETE_FAILED").
			With("operation", "delete reset codes").
			Wrap(err)
	}

	// Any session issued before the reset is no longer trusted.
	if err = f.sessions.DeleteByAccount(ctx, account.ID); err != nil {
		return Outcome{}, oops.Code("RESET_COMPLETE_FAILED").
			With("operation", "invalidate sessions").
			Wrap(err)
	}

	f.logger.InfoContext(ctx, "password reset completed",
		"account_id", account.ID.String())

	return Outcome{Message: PasswordChangedMessage}, nil
}

// GenerateEmailVerificationCode deletes any pending verification codes
// for the account, persists a fresh one and returns its plaintext.
func (f *Flow) GenerateEmailVerificationCode(ctx context.Context, accountID ulid.ULID) (string, error) {
	return f.issueCode(ctx, PurposeEmailVerification, accountID)
}

// GeneratePasswordResetCode deletes any pending reset codes for the
// account, persists a fresh one and returns its plaintext.
func (f *Flow) GeneratePasswordResetCode(ctx context.Context, accountID ulid.ULID) (string, error) {
	return f.issueCode(ctx, PurposePasswordReset, accountID)
}

// issueCode is the shared one-time-code issuer. Delete-then-create is
// two independent store calls; a crash in between leaves a stale
// unexpired code alongside the new one, which is tolerated.
func (f *Flow) issueCode(ctx context.Context, purpose CodePurpose, accountID ulid.ULID) (string, error) {
	if err := f.codes.DeleteByAccount(ctx, purpose, accountID); err != nil {
		return "", oops.Code("CODE_ISSUE_FAILED").
			With("operation", "delete old codes").
			With("purpose", purpose.String()).
			Wrap(err)
	}

	code, hash, err := GenerateCode()
	if err != nil {
		return "", oops.Code("CODE_ISSUE_FAILED").
			With("operation", "generate code").
			With("purpose", purpose.String()).
			Wrap(err)
	}

	otc, err := NewOneTimeCode(accountID, hash, time.Now().Add(CodeExpiry))
	if err != nil {
		return "", oops.Code("CODE_ISSUE_FAILED").
			With("operation", "build code").
			With("purpose", purpose.String()).
			Wrap(err)
	}

	if err := f.codes.Create(ctx, purpose, otc); err != nil {
		return "", oops.Code("CODE_ISSUE_FAILED").
			With("operation", "persist code").
			With("purpose", purpose.String()).
			Wrap(err)
	}

	return code, nil
}

// ValidateSession validates a session token and returns the session if
// valid. Also updates the LastSeenAt timestamp, best effort.
func (f *Flow) ValidateSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, oops.Code("SESSION_TOKEN_EMPTY").Errorf("session token cannot be empty")
	}

	session, err := f.sessions.GetByTokenHash(ctx, HashSessionToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("SESSION_INVALID").Errorf("invalid session token")
		}
		return nil, oops.Code("SESSION_VALIDATE_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}

	if session.IsExpired() {
		return nil, oops.Code("SESSION_EXPIRED").Errorf("session has expired")
	}

	_ = f.sessions.UpdateLastSeen(ctx, session.ID, time.Now()) //nolint:errcheck // Best effort, validation succeeds regardless

	return session, nil
}

// Logout invalidates a session.
func (f *Flow) Logout(ctx context.Context, sessionID ulid.ULID) error {
	err := f.sessions.Delete(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("SESSION_NOT_FOUND").
				With("session_id", sessionID.String()).
				Wrap(err)
		}
		return oops.Code("LOGOUT_FAILED").
			With("operation", "delete session").
			With("session_id", sessionID.String()).
			Wrap(err)
	}
	return nil
}

// startSession generates a token, persists the session and returns the
// plaintext token for the transport layer to attach to the response.
func (f *Flow) startSession(ctx context.Context, accountID ulid.ULID, userAgent, remoteIP string) (string, error) {
	token, tokenHash, err := GenerateSessionToken()
	if err != nil {
		return "", oops.Code("SESSION_START_FAILED").
			With("operation", "generate session token").
			Wrap(err)
	}

	session, err := NewSession(accountID, tokenHash, userAgent, remoteIP, time.Now().Add(SessionTokenExpiry))
	if err != nil {
		return "", oops.Code("SESSION_START_FAILED").
			With("operation", "build session").
			Wrap(err)
	}

	if err := f.sessions.Create(ctx, session); err != nil {
		return "", oops.Code("SESSION_START_FAILED").
			With("operation", "persist session").
			Wrap(err)
	}

	return token, nil
}

// linkIdentity is the idempotent link-or-create step for external
// identities carried by a register or login request.
func (f *Flow) linkIdentity(ctx context.Context, accountID ulid.ULID, identity *ExternalIdentity) error {
	if identity == nil {
		return nil
	}

	link, err := NewExternalAccount(accountID, *identity)
	if err != nil {
		return oops.Code("LINK_IDENTITY_FAILED").
			With("provider", identity.Provider).
			Wrap(err)
	}

	if err := f.links.LinkOrCreate(ctx, link); err != nil {
		return oops.Code("LINK_IDENTITY_FAILED").
			With("operation", "link or create").
			With("provider", identity.Provider).
			Wrap(err)
	}
	return nil
}
