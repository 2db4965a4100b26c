// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

// Package auth implements the account lifecycle for Emberhost.
//
// # Domain Types
//
// Domain types (Account, Session, OneTimeCode, ExternalAccount) should
// be created using their respective constructors:
//   - NewAccount - creates an unverified Account with a validated email
//   - NewSession - creates a Session with validated account and expiry
//   - NewOneTimeCode - creates a OneTimeCode with validated account and expiry
//   - NewExternalAccount - creates a provider link with validated identity
//
// Direct struct initialization bypasses validation and may create
// invalid state. Repository implementations receive pre-validated
// types from these constructors.
//
// # Flow
//
// Flow is the coordinator for the four lifecycle operations: Register,
// Login, VerifyEmail and SendResetPasswordEmail (plus the reset
// completion). It is constructed with explicit dependencies via
// NewFlow / NewFlowWithLogger; there are no package-level client
// singletons. Business failures surface as *FlowError with a stable
// user message; infrastructure failures propagate to the HTTP boundary.
package auth
