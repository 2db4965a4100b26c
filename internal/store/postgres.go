// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

// Package store provides database connectivity and schema management.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Connection retry configuration. The database often comes up a moment
// after the service in containerized deployments.
const (
	connectBaseDelay  = 500 * time.Millisecond
	connectMaxRetries = 6
)

// Connect opens a pgx connection pool and verifies it with a ping.
// The ping is retried with exponential backoff so the service survives
// a database that is still starting.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, oops.Code("STORE_CONFIG_INVALID").
			With("operation", "parse database url").
			Wrap(err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, oops.Code("STORE_CONNECT_FAILED").
			With("operation", "create pool").
			Wrap(err)
	}

	backoff := retry.WithMaxRetries(connectMaxRetries, retry.NewExponential(connectBaseDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if pingErr := pool.Ping(ctx); pingErr != nil {
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("STORE_CONNECT_FAILED").
			With("operation", "ping database").
			Wrap(err)
	}

	return pool, nil
}
