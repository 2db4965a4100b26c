// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// One-time code configuration.
const (
	// CodeBytes is the random length of a code: 16 bytes = 128 bits
	// of entropy, rendered as 32 hex chars.
	CodeBytes = 16

	// CodeExpiry is how long a code stays redeemable.
	CodeExpiry = 15 * time.Minute
)

// CodePurpose selects which logical table a one-time code lives in.
// A code issued for one purpose can never satisfy a lookup for the
// other; the repository routes each purpose to its own table.
type CodePurpose int

const (
	// PurposeEmailVerification codes prove control of a new account's email.
	PurposeEmailVerification CodePurpose = iota

	// PurposePasswordReset codes authorize a password reset.
	PurposePasswordReset
)

// String returns the purpose name for logging.
func (p CodePurpose) String() string {
	if p == PurposePasswordReset {
		return "password_reset"
	}
	return "email_verification"
}

// OneTimeCode is a short-lived, single-use random value bound to one
// account. Only the SHA256 of the code is persisted; the plaintext
// exists just long enough to be embedded in an outgoing email.
type OneTimeCode struct {
	ID        ulid.ULID
	AccountID ulid.ULID
	CodeHash  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewOneTimeCode creates a validated OneTimeCode instance.
func NewOneTimeCode(accountID ulid.ULID, codeHash string, expiresAt time.Time) (*OneTimeCode, error) {
	if accountID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("CODE_INVALID_ACCOUNT").Errorf("account ID cannot be zero")
	}
	if codeHash == "" {
		return nil, oops.Code("CODE_INVALID_HASH").Errorf("code hash cannot be empty")
	}
	if expiresAt.IsZero() {
		return nil, oops.Code("CODE_INVALID_EXPIRY").Errorf("expiry time cannot be zero")
	}

	return &OneTimeCode{
		ID:        ulid.Make(),
		AccountID: accountID,
		CodeHash:  codeHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// IsExpired returns true if the code has expired.
func (c *OneTimeCode) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// GenerateCode creates a secure random code and its hash.
// Returns (plaintext_code, sha256_hash, error). The plaintext goes to
// the user by email; only the hash is stored.
func GenerateCode() (code, hash string, err error) {
	codeBytes := make([]byte, CodeBytes)
	if _, err = rand.Read(codeBytes); err != nil {
		return "", "", oops.Code("CODE_GENERATE_FAILED").Wrap(err)
	}

	code = hex.EncodeToString(codeBytes)
	hash = HashCode(code)

	return code, hash, nil
}

// HashCode computes the SHA256 hash of a code.
func HashCode(code string) string {
	h := sha256.Sum256([]byte(code))
	return hex.EncodeToString(h[:])
}

// VerifyCode checks if the plaintext code matches the stored hash.
// Uses constant-time comparison to prevent timing attacks.
func VerifyCode(code, hash string) bool {
	if code == "" || hash == "" {
		return false
	}
	computed := HashCode(code)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}

// CodeRepository manages one-time code persistence. Every operation
// takes a purpose; implementations must keep the two purposes in
// separate tables so a wrong-purpose lookup never matches.
type CodeRepository interface {
	// Create stores a new code.
	Create(ctx context.Context, purpose CodePurpose, code *OneTimeCode) error

	// GetValid retrieves a non-expired code matching account and hash.
	// Returns ErrNotFound if no such code exists or it has expired.
	GetValid(ctx context.Context, purpose CodePurpose, accountID ulid.ULID, codeHash string) (*OneTimeCode, error)

	// DeleteByAccount removes all codes of the purpose for an account.
	DeleteByAccount(ctx context.Context, purpose CodePurpose, accountID ulid.ULID) error

	// DeleteExpired removes all expired codes of the purpose and
	// returns the count of deleted records.
	DeleteExpired(ctx context.Context, purpose CodePurpose) (int64, error)
}
