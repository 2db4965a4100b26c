// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// ExternalIdentity names an identity at a third-party provider, as
// presented by an incoming request (e.g. after an OAuth callback).
type ExternalIdentity struct {
	Provider string
	Subject  string
}

// ExternalAccount links an account to an external identity provider.
// At most one link exists per (provider, subject) pair.
type ExternalAccount struct {
	ID        ulid.ULID
	AccountID ulid.ULID
	Provider  string
	Subject   string
	CreatedAt time.Time
}

// NewExternalAccount creates a validated ExternalAccount instance.
func NewExternalAccount(accountID ulid.ULID, identity ExternalIdentity) (*ExternalAccount, error) {
	if accountID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("EXTERNAL_INVALID_ACCOUNT").Errorf("account ID cannot be zero")
	}
	if identity.Provider == "" {
		return nil, oops.Code("EXTERNAL_INVALID_PROVIDER").Errorf("provider cannot be empty")
	}
	if identity.Subject == "" {
		return nil, oops.Code("EXTERNAL_INVALID_SUBJECT").Errorf("subject cannot be empty")
	}

	return &ExternalAccount{
		ID:        ulid.Make(),
		AccountID: accountID,
		Provider:  identity.Provider,
		Subject:   identity.Subject,
		CreatedAt: time.Now(),
	}, nil
}

// ExternalAccountRepository manages provider-link persistence.
type ExternalAccountRepository interface {
	// LinkOrCreate stores the link if no link exists yet for the same
	// (provider, subject) pair. Idempotent: calling it again for an
	// already-linked identity is a no-op.
	LinkOrCreate(ctx context.Context, link *ExternalAccount) error

	// GetByIdentity retrieves a link by provider and subject.
	// Returns ErrNotFound if the identity has never been linked.
	GetByIdentity(ctx context.Context, provider, subject string) (*ExternalAccount, error)

	// GetByAccount retrieves all links for an account.
	GetByAccount(ctx context.Context, accountID ulid.ULID) ([]*ExternalAccount, error)
}
