// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

// Package captcha verifies proof-of-humanity challenge tokens against
// Cloudflare Turnstile.
package captcha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/oops"
)

// DefaultEndpoint is the Turnstile siteverify API.
const DefaultEndpoint = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// TurnstileVerifier implements auth.ChallengeVerifier against the
// Turnstile siteverify endpoint.
type TurnstileVerifier struct {
	secret   string
	endpoint string
	client   *http.Client
}

// Option configures a TurnstileVerifier.
type Option func(*TurnstileVerifier)

// WithEndpoint overrides the siteverify URL. Used in tests.
func WithEndpoint(endpoint string) Option {
	return func(v *TurnstileVerifier) { v.endpoint = endpoint }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(v *TurnstileVerifier) { v.client = client }
}

// NewTurnstileVerifier creates a verifier using the given site secret.
func NewTurnstileVerifier(secret string, opts ...Option) (*TurnstileVerifier, error) {
	if secret == "" {
		return nil, oops.Code("CAPTCHA_INVALID_CONFIG").Errorf("turnstile secret is required")
	}

	v := &TurnstileVerifier{
		secret:   secret,
		endpoint: DefaultEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// siteverifyResponse is the subset of the Turnstile response we use.
type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify submits the token to siteverify. A false return with nil
// error means the service rejected the token; transport and decode
// failures are errors so callers can tell outage from rejection.
func (v *TurnstileVerifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if token == "" {
		return false, nil
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false, oops.Code("CAPTCHA_REQUEST_FAILED").
			With("operation", "build request").
			Wrap(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, oops.Code("CAPTCHA_REQUEST_FAILED").
			With("operation", "post siteverify").
			Wrap(err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only body

	if resp.StatusCode != http.StatusOK {
		return false, oops.Code("CAPTCHA_REQUEST_FAILED").
			With("status", resp.StatusCode).
			Errorf("siteverify returned status %d", resp.StatusCode)
	}

	var result siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, oops.Code("CAPTCHA_DECODE_FAILED").
			With("operation", "decode siteverify response").
			Wrap(err)
	}

	return result.Success, nil
}
