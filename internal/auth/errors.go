// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate")

// ErrorKind classifies a business-rule failure in an auth flow.
type ErrorKind int

// Flow error kinds. These are the only failures an auth flow converts
// into a user-facing result; everything else propagates to the caller.
const (
	KindInvalidCaptcha ErrorKind = iota
	KindInvalidCredentials
	KindAccountExists
	KindInvalidCode
	KindInvalidEmail
	KindAccountLocked
)

// userMessages maps each kind to the exact string shown to the user.
// Login failures share one message so the caller cannot tell which
// field was wrong.
var userMessages = map[ErrorKind]string{
	KindInvalidCaptcha:     "Invalid captcha",
	KindInvalidCredentials: "Invalid email or password",
	KindAccountExists:      "An account with that email already exists",
	KindInvalidCode:        "Invalid code",
	KindInvalidEmail:       "Invalid email",
	KindAccountLocked:      "Account is temporarily locked",
}

// FlowError is a business-rule failure surfaced to the user as a short
// message. It halts the flow that produced it; nothing is retried.
type FlowError struct {
	Kind ErrorKind
}

// Error implements the error interface.
func (e *FlowError) Error() string {
	return e.UserMessage()
}

// UserMessage returns the user-facing message for this failure.
func (e *FlowError) UserMessage() string {
	if msg, ok := userMessages[e.Kind]; ok {
		return msg
	}
	return "Something went wrong"
}

// flowErr constructs a FlowError of the given kind.
func flowErr(kind ErrorKind) *FlowError {
	return &FlowError{Kind: kind}
}

// AsFlowError unwraps err into a FlowError if it is one.
func AsFlowError(err error) (*FlowError, bool) {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
