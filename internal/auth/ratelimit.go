// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

package auth

import (
	"time"
)

// Lockout configuration.
const (
	// LockoutDuration is the time an account stays locked after too
	// many consecutive failures.
	LockoutDuration = 15 * time.Minute

	// LockoutThreshold is the number of failures that triggers a lockout.
	LockoutThreshold = 7
)

// IsLockedOut returns true if the lockout time is in the future.
func IsLockedOut(lockedUntil *time.Time) bool {
	return lockedUntil != nil && lockedUntil.After(time.Now())
}

// ComputeLockoutTime returns the lockout timestamp for the given
// failure count, or nil if the threshold has not been reached.
func ComputeLockoutTime(failures int) *time.Time {
	if failures < LockoutThreshold {
		return nil
	}
	t := time.Now().Add(LockoutDuration)
	return &t
}
