// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/emberhost/emberhost/internal/auth"
)

// AccountRepository implements auth.AccountRepository using PostgreSQL.
type AccountRepository struct {
	pool Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create stores a new account. The UNIQUE(email) constraint is the
// authoritative duplicate guard; a violation surfaces as ErrDuplicate.
func (r *AccountRepository) Create(ctx context.Context, account *auth.Account) error {
	hash := marshalCredential(account.Credential)

	_, err := r.pool.Exec(ctx, `
		INSERT INTO accounts (
			id, email, password_hash, email_verified,
			failed_attempts, locked_until, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		account.ID.String(),
		account.Email,
		hash,
		account.State == auth.StateVerified,
		account.FailedAttempts,
		account.LockedUntil,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("ACCOUNT_DUPLICATE").
				With("email", account.Email).
				Wrap(auth.ErrDuplicate)
		}
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "insert account").
			Wrap(err)
	}
	return nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, email_verified,
		       failed_attempts, locked_until, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`, id.String())

	account, err := r.scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_ID_FAILED").
			With("operation", "get account by id").
			With("id", id.String()).
			Wrap(err)
	}
	return account, nil
}

// GetByEmail retrieves an account by email, matched exactly as stored.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, email_verified,
		       failed_attempts, locked_until, created_at, updated_at
		FROM accounts
		WHERE email = $1
	`, email)

	account, err := r.scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("email", email).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_EMAIL_FAILED").
			With("operation", "get account by email").
			Wrap(err)
	}
	return account, nil
}

// Update updates an existing account.
func (r *AccountRepository) Update(ctx context.Context, account *auth.Account) error {
	hash := marshalCredential(account.Credential)

	result, err := r.pool.Exec(ctx, `
		UPDATE accounts SET
			email = $2,
			password_hash = $3,
			email_verified = $4,
			failed_attempts = $5,
			locked_until = $6,
			updated_at = $7
		WHERE id = $1
	`,
		account.ID.String(),
		account.Email,
		hash,
		account.State == auth.StateVerified,
		account.FailedAttempts,
		account.LockedUntil,
		account.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("ACCOUNT_DUPLICATE").
				With("email", account.Email).
				Wrap(auth.ErrDuplicate)
		}
		return oops.Code("ACCOUNT_UPDATE_FAILED").
			With("operation", "update account").
			With("id", account.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("id", account.ID.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// UpdatePassword replaces only the password hash for an account.
func (r *AccountRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE accounts SET password_hash = $2, updated_at = $3
		WHERE id = $1
	`, id.String(), passwordHash, time.Now())
	if err != nil {
		return oops.Code("ACCOUNT_UPDATE_PASSWORD_FAILED").
			With("operation", "update password").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// scanAccount scans a single row into an Account.
// Callers are responsible for handling pgx.ErrNoRows.
func (r *AccountRepository) scanAccount(row pgx.Row) (*auth.Account, error) {
	var (
		idStr          string
		email          string
		passwordHash   *string
		emailVerified  bool
		failedAttempts int
		lockedUntil    *time.Time
		createdAt      time.Time
		updatedAt      time.Time
	)

	err := row.Scan(
		&idStr,
		&email,
		&passwordHash,
		&emailVerified,
		&failedAttempts,
		&lockedUntil,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("ACCOUNT_SCAN_FAILED").
			With("operation", "scan account").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("ACCOUNT_INVALID_ID").
			With("operation", "parse account id").
			With("id", idStr).
			Wrap(err)
	}

	// A NULL password_hash marks an external-only account.
	var credential auth.Credential = auth.ExternalOnlyCredential{}
	if passwordHash != nil {
		credential = auth.PasswordCredential{Hash: *passwordHash}
	}

	state := auth.StateUnverified
	if emailVerified {
		state = auth.StateVerified
	}

	return &auth.Account{
		ID:             id,
		Email:          email,
		Credential:     credential,
		State:          state,
		FailedAttempts: failedAttempts,
		LockedUntil:    lockedUntil,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}

// marshalCredential maps a Credential to its password_hash column
// value. External-only accounts store NULL.
func marshalCredential(c auth.Credential) *string {
	if pc, ok := c.(auth.PasswordCredential); ok {
		return &pc.Hash
	}
	return nil
}

// isUniqueViolation reports whether the error is a PostgreSQL
// unique-constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// Compile-time interface check.
var _ auth.AccountRepository = (*AccountRepository)(nil)
