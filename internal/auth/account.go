// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

package auth

import (
	"context"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// emailRegex matches addresses of the form local@domain.tld. It is
// deliberately loose about the local part; it only rejects input with
// no "@", no domain, or embedded whitespace.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthState tags whether an account has proven control of its email.
type AuthState int

const (
	// StateUnverified is the state of a freshly registered account.
	StateUnverified AuthState = iota

	// StateVerified means the account redeemed an email verification code.
	StateVerified
)

// String returns the state name for logging.
func (s AuthState) String() string {
	if s == StateVerified {
		return "verified"
	}
	return "unverified"
}

// Credential describes how an account authenticates. It is a closed
// set: either a local password hash exists, or the account belongs
// exclusively to a linked external identity provider. The password
// login path is unrepresentable for external-only accounts.
type Credential interface {
	credential()
}

// PasswordCredential is a local argon2id password hash.
type PasswordCredential struct {
	Hash string
}

func (PasswordCredential) credential() {}

// ExternalOnlyCredential marks an account with no local password.
type ExternalOnlyCredential struct{}

func (ExternalOnlyCredential) credential() {}

// Account represents a customer account.
type Account struct {
	ID             ulid.ULID
	Email          string
	Credential     Credential
	State          AuthState
	FailedAttempts int
	LockedUntil    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewAccount creates a validated Account in the unverified state.
func NewAccount(email string, credential Credential) (*Account, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if credential == nil {
		return nil, oops.Code("ACCOUNT_INVALID_CREDENTIAL").Errorf("credential cannot be nil")
	}

	now := time.Now()
	return &Account{
		ID:         ulid.Make(),
		Email:      email,
		Credential: credential,
		State:      StateUnverified,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// PasswordHash returns the local password hash, or false for
// external-only accounts.
func (a *Account) PasswordHash() (string, bool) {
	if c, ok := a.Credential.(PasswordCredential); ok {
		return c.Hash, true
	}
	return "", false
}

// IsLocked returns true if the account is currently locked out.
func (a *Account) IsLocked() bool {
	return IsLockedOut(a.LockedUntil)
}

// RecordFailure increments the failure counter and sets lockout if the
// threshold is reached.
func (a *Account) RecordFailure() {
	a.FailedAttempts++
	a.LockedUntil = ComputeLockoutTime(a.FailedAttempts)
	a.UpdatedAt = time.Now()
}

// RecordSuccess resets the failure counter and lockout.
func (a *Account) RecordSuccess() {
	a.FailedAttempts = 0
	a.LockedUntil = nil
	a.UpdatedAt = time.Now()
}

// MarkVerified transitions the account to the verified state.
func (a *Account) MarkVerified() {
	a.State = StateVerified
	a.UpdatedAt = time.Now()
}

// ValidateEmail checks that the address is well formed.
func ValidateEmail(email string) error {
	if email == "" {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email is not a valid address")
	}
	return nil
}

// IsValidInput reports whether a submitted email/password pair is
// acceptable for registration or login. Pure; no store access.
func IsValidInput(email, password string) bool {
	if email == "" || password == "" {
		return false
	}
	return ValidateEmail(email) == nil
}

// AccountRepository manages account persistence.
type AccountRepository interface {
	// Create stores a new account. Returns an error wrapping
	// ErrDuplicate if the email is already taken.
	Create(ctx context.Context, account *Account) error

	// GetByID retrieves an account by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Account, error)

	// GetByEmail retrieves an account by email, matched exactly as
	// stored. Returns ErrNotFound if no account has the given email.
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// Update updates an existing account.
	Update(ctx context.Context, account *Account) error

	// UpdatePassword replaces only the password hash for an account.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error
}
