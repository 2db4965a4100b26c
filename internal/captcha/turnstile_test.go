// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

package captcha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberhost/emberhost/pkg/errutil"
)

func TestNewTurnstileVerifier(t *testing.T) {
	t.Run("requires a secret", func(t *testing.T) {
		_, err := NewTurnstileVerifier("")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "CAPTCHA_INVALID_CONFIG")
	})

	t.Run("defaults to the public endpoint", func(t *testing.T) {
		v, err := NewTurnstileVerifier("secret")
		require.NoError(t, err)
		assert.Equal(t, DefaultEndpoint, v.endpoint)
	})
}

func TestTurnstileVerifier_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("accepted token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "my-secret", r.PostForm.Get("secret"))
			assert.Equal(t, "client-token", r.PostForm.Get("response"))
			assert.Equal(t, "203.0.113.7", r.PostForm.Get("remoteip"))
			_, _ = w.Write([]byte(`{"success":true}`))
		}))
		defer srv.Close()

		v, err := NewTurnstileVerifier("my-secret", WithEndpoint(srv.URL))
		require.NoError(t, err)

		ok, err := v.Verify(ctx, "client-token", "203.0.113.7")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rejected token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
		}))
		defer srv.Close()

		v, err := NewTurnstileVerifier("my-secret", WithEndpoint(srv.URL))
		require.NoError(t, err)

		ok, err := v.Verify(ctx, "bad-token", "")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("empty token is rejected without a network call", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Error("siteverify should not be called for an empty token")
		}))
		defer srv.Close()

		v, err := NewTurnstileVerifier("my-secret", WithEndpoint(srv.URL))
		require.NoError(t, err)

		ok, err := v.Verify(ctx, "", "")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("non-200 status is an error, not a rejection", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		v, err := NewTurnstileVerifier("my-secret", WithEndpoint(srv.URL))
		require.NoError(t, err)

		_, err = v.Verify(ctx, "client-token", "")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "CAPTCHA_REQUEST_FAILED")
	})

	t.Run("malformed body is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		v, err := NewTurnstileVerifier("my-secret", WithEndpoint(srv.URL))
		require.NoError(t, err)

		_, err = v.Verify(ctx, "client-token", "")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "CAPTCHA_DECODE_FAILED")
	})

	t.Run("unreachable endpoint is an error", func(t *testing.T) {
		v, err := NewTurnstileVerifier("my-secret", WithEndpoint("http://127.0.0.1:1"))
		require.NoError(t, err)

		_, err = v.Verify(ctx, "client-token", "")
		require.Error(t, err)
	})
}
