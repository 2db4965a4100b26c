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

// ExternalAccountRepository implements auth.ExternalAccountRepository
// using PostgreSQL.
type ExternalAccountRepository struct {
	pool Pool
}

// NewExternalAccountRepository creates a new ExternalAccountRepository.
func NewExternalAccountRepository(pool Pool) *ExternalAccountRepository {
	return &ExternalAccountRepository{pool: pool}
}

// LinkOrCreate stores the link unless one already exists for the same
// (provider, subject) pair. ON CONFLICT DO NOTHING makes repeat calls
// a no-op, so concurrent logins through the same provider are safe.
func (r *ExternalAccountRepository) LinkOrCreate(ctx context.Context, link *auth.ExternalAccount) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO external_accounts (
			id, account_id, provider, provider_subject, created_at
		) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (provider, provider_subject) DO NOTHING
	`,
		link.ID.String(),
		link.AccountID.String(),
		link.Provider,
		link.Subject,
		link.CreatedAt,
	)
	if err != nil {
		return oops.Code("EXTERNAL_LINK_FAILED").
			With("operation", "insert external account").
			With("provider", link.Provider).
			Wrap(err)
	}
	return nil
}

// GetByIdentity retrieves a link by provider and subject.
func (r *ExternalAccountRepository) GetByIdentity(ctx context.Context, provider, subject string) (*auth.ExternalAccount, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, account_id, provider, provider_subject, created_at
		FROM external_accounts
		WHERE provider = $1 AND provider_subject = $2
	`, provider, subject)

	link, err := r.scanLink(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("EXTERNAL_NOT_FOUND").
			With("provider", provider).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("EXTERNAL_GET_BY_IDENTITY_FAILED").
			With("operation", "get external account by identity").
			With("provider", provider).
			Wrap(err)
	}
	return link, nil
}

// GetByAccount retrieves all links for an account.
func (r *ExternalAccountRepository) GetByAccount(ctx context.Context, accountID ulid.ULID) ([]*auth.ExternalAccount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, provider, provider_subject, created_at
		FROM external_accounts
		WHERE account_id = $1
		ORDER BY created_at
	`, accountID.String())
	if err != nil {
		return nil, oops.Code("EXTERNAL_GET_BY_ACCOUNT_FAILED").
			With("operation", "query external accounts").
			With("account_id", accountID.String()).
			Wrap(err)
	}
	defer rows.Close()

	var links []*auth.ExternalAccount
	for rows.Next() {
		link, err := r.scanLink(rows)
		if err != nil {
			return nil, oops.Code("EXTERNAL_GET_BY_ACCOUNT_FAILED").
				With("operation", "scan external account row").
				Wrap(err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("EXTERNAL_GET_BY_ACCOUNT_FAILED").
			With("operation", "iterate external account rows").
			Wrap(err)
	}
	return links, nil
}

// scanLink scans a single row into an ExternalAccount.
// Callers are responsible for handling pgx.ErrNoRows.
func (r *ExternalAccountRepository) scanLink(row pgx.Row) (*auth.ExternalAccount, error) {
	var (
		idStr        string
		accountIDStr string
		provider     string
		subject      string
		createdAt    time.Time
	)

	err := row.Scan(&idStr, &accountIDStr, &provider, &subject, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("EXTERNAL_SCAN_FAILED").
			With("operation", "scan external account").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("EXTERNAL_INVALID_ID").
			With("operation", "parse external account id").
			With("id", idStr).
			Wrap(err)
	}

	accountID, err := ulid.Parse(accountIDStr)
	if err != nil {
		return nil, oops.Code("EXTERNAL_INVALID_ACCOUNT_ID").
			With("operation", "parse account id").
			With("account_id", accountIDStr).
			Wrap(err)
	}

	return &auth.ExternalAccount{
		ID:        id,
		AccountID: accountID,
		Provider:  provider,
		Subject:   subject,
		CreatedAt: createdAt,
	}, nil
}

// Compile-time interface check.
var _ auth.ExternalAccountRepository = (*ExternalAccountRepository)(nil)
