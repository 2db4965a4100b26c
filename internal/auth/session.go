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

// Session token configuration.
const (
	SessionTokenBytes  = 32            // 32 bytes = 64 hex chars
	SessionTokenExpiry = 24 * time.Hour
)

// Session represents an authenticated browser session.
type Session struct {
	ID         ulid.ULID
	AccountID  ulid.ULID
	TokenHash  string
	UserAgent  string
	IPAddress  string
	ExpiresAt  time.Time
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// NewSession creates a validated Session instance.
// UserAgent and IPAddress are optional and may be empty.
func NewSession(accountID ulid.ULID, tokenHash, userAgent, ipAddress string, expiresAt time.Time) (*Session, error) {
	if accountID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("SESSION_INVALID_ACCOUNT").Errorf("account ID cannot be zero")
	}
	if tokenHash == "" {
		return nil, oops.Code("SESSION_INVALID_HASH").Errorf("token hash cannot be empty")
	}
	if expiresAt.IsZero() {
		return nil, oops.Code("SESSION_INVALID_EXPIRY").Errorf("expiry time cannot be zero")
	}

	now := time.Now()
	return &Session{
		ID:         ulid.Make(),
		AccountID:  accountID,
		TokenHash:  tokenHash,
		UserAgent:  userAgent,
		IPAddress:  ipAddress,
		ExpiresAt:  expiresAt,
		CreatedAt:  now,
		LastSeenAt: now,
	}, nil
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsExpiredAt returns true if the session would be expired at the given time.
// Useful for testing with deterministic time values.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return t.After(s.ExpiresAt)
}

// GenerateSessionToken creates a secure random token and its hash.
// Returns (plaintext_token, sha256_hash, error).
// The plaintext token is sent to the client; the hash is stored in the database.
func GenerateSessionToken() (token, hash string, err error) {
	tokenBytes := make([]byte, SessionTokenBytes)
	if _, err = rand.Read(tokenBytes); err != nil {
		return "", "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", SessionTokenBytes).
			Wrap(err)
	}

	token = hex.EncodeToString(tokenBytes)
	hash = HashSessionToken(token)

	return token, hash, nil
}

// HashSessionToken computes the SHA256 hash of a session token.
func HashSessionToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// VerifySessionToken checks if the plaintext token matches the stored hash.
// Uses constant-time comparison to prevent timing attacks.
func VerifySessionToken(token, hash string) (bool, error) {
	if token == "" {
		return false, oops.Code("SESSION_TOKEN_EMPTY").Errorf("session token cannot be empty")
	}
	if hash == "" {
		return false, oops.Code("SESSION_HASH_EMPTY").Errorf("stored hash cannot be empty")
	}
	computed := HashSessionToken(token)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1, nil
}

// SessionRepository manages session persistence.
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// GetByTokenHash retrieves a session by its token hash.
	GetByTokenHash(ctx context.Context, tokenHash string) (*Session, error)

	// GetByAccount retrieves all sessions for an account.
	GetByAccount(ctx context.Context, accountID ulid.ULID) ([]*Session, error)

	// UpdateLastSeen updates the LastSeenAt timestamp for a session.
	UpdateLastSeen(ctx context.Context, id ulid.ULID, lastSeen time.Time) error

	// Delete removes a session by ID.
	Delete(ctx context.Context, id ulid.ULID) error

	// DeleteByAccount removes all sessions for an account.
	DeleteByAccount(ctx context.Context, accountID ulid.ULID) error

	// DeleteExpired removes all expired sessions and returns the count
	// of deleted records.
	DeleteExpired(ctx context.Context) (int64, error)
}
