// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/emberhost/emberhost/internal/auth"
)

// CodeRepository implements auth.CodeRepository using PostgreSQL.
// Each purpose lives in its own table, so a code issued for one purpose
// can never satisfy a lookup for the other.
type CodeRepository struct {
	pool Pool
}

// NewCodeRepository creates a new CodeRepository.
func NewCodeRepository(pool Pool) *CodeRepository {
	return &CodeRepository{pool: pool}
}

// codeTable routes a purpose to its table. Table names are from a fixed
// set, never user input.
func codeTable(purpose auth.CodePurpose) string {
	if purpose == auth.PurposePasswordReset {
		return "password_reset_codes"
	}
	return "email_verification_codes"
}

// Create stores a new code.
func (r *CodeRepository) Create(ctx context.Context, purpose auth.CodePurpose, code *auth.OneTimeCode) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO `+codeTable(purpose)+` (
			id, account_id, code_hash, expires_at, created_at
		) VALUES ($1, $2, $3, $4, $5)
	`,
		code.ID.String(),
		code.AccountID.String(),
		code.CodeHash,
		code.ExpiresAt,
		code.CreatedAt,
	)
	if err != nil {
		return oops.Code("CODE_CREATE_FAILED").
			With("operation", "insert code").
			With("purpose", purpose.String()).
			Wrap(err)
	}
	return nil
}

// GetValid retrieves a non-expired code matching account and hash.
func (r *CodeRepository) GetValid(ctx context.Context, purpose auth.CodePurpose, accountID ulid.ULID, codeHash string) (*auth.OneTimeCode, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, account_id, code_hash, expires_at, created_at
		FROM `+codeTable(purpose)+`
		WHERE account_id = $1 AND code_hash = $2 AND expires_at > $3
	`, accountID.String(), codeHash, time.Now())

	code, err := r.scanCode(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("CODE_NOT_FOUND").
			With("purpose", purpose.String()).
			With("account_id", accountID.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("CODE_GET_FAILED").
			With("operation", "get valid code").
			With("purpose", purpose.String()).
			Wrap(err)
	}
	return code, nil
}

// DeleteByAccount removes all codes of the purpose for an account.
// Deleting zero rows is not an error; issuing a fresh code always
// clears first.
func (r *CodeRepository) DeleteByAccount(ctx context.Context, purpose auth.CodePurpose, accountID ulid.ULID) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM `+codeTable(purpose)+` WHERE account_id = $1
	`, accountID.String())
	if err != nil {
		return oops.Code("CODE_DELETE_FAILED").
			With("operation", "delete codes by account").
			With("purpose", purpose.String()).
			With("account_id", accountID.String()).
			Wrap(err)
	}
	return nil
}

// DeleteExpired removes all expired codes of the purpose.
func (r *CodeRepository) DeleteExpired(ctx context.Context, purpose auth.CodePurpose) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM `+codeTable(purpose)+` WHERE expires_at <= $1
	`, time.Now())
	if err != nil {
		return 0, oops.Code("CODE_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired codes").
			With("purpose", purpose.String()).
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// scanCode scans a single row into a OneTimeCode.
// Callers are responsible for handling pgx.ErrNoRows.
func (r *CodeRepository) scanCode(row pgx.Row) (*auth.OneTimeCode, error) {
	var (
		idStr        string
		accountIDStr string
		codeHash     string
		expiresAt    time.Time
		createdAt    time.Time
	)

	err := row.Scan(&idStr, &accountIDStr, &codeHash, &expiresAt, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("CODE_SCAN_FAILED").
			With("operation", "scan code").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("CODE_INVALID_ID").
			With("operation", "parse code id").
			With("id", idStr).
			Wrap(err)
	}

	accountID, err := ulid.Parse(accountIDStr)
	if err != nil {
		return nil, oops.Code("CODE_INVALID_ACCOUNT_ID").
			With("operation", "parse account id").
			With("account_id", accountIDStr).
			Wrap(err)
	}

	return &auth.OneTimeCode{
		ID:        id,
		AccountID: accountID,
		CodeHash:  codeHash,
		ExpiresAt: expiresAt,
		CreatedAt: createdAt,
	}, nil
}

// Compile-time interface check.
var _ auth.CodeRepository = (*CodeRepository)(nil)
