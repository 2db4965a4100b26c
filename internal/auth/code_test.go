// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

package auth_test

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberhost/emberhost/internal/auth"
)

func TestGenerateCode(t *testing.T) {
	t.Run("generates 128-bit hex code", func(t *testing.T) {
		code, hash, err := auth.GenerateCode()
		require.NoError(t, err)
		assert.Len(t, code, 32) // 16 bytes hex-encoded
		assert.Len(t, hash, 64) // SHA256 hex-encoded
		assert.NotEqual(t, code, hash)
	})

	t.Run("generates unique codes", func(t *testing.T) {
		code1, _, err := auth.GenerateCode()
		require.NoError(t, err)
		code2, _, err := auth.GenerateCode()
		require.NoError(t, err)
		assert.NotEqual(t, code1, code2)
	})

	t.Run("hash matches HashCode", func(t *testing.T) {
		code, hash, err := auth.GenerateCode()
		require.NoError(t, err)
		assert.Equal(t, hash, auth.HashCode(code))
	})
}

func TestVerifyCode(t *testing.T) {
	t.Run("matching code verifies", func(t *testing.T) {
		code, hash, err := auth.GenerateCode()
		require.NoError(t, err)
		assert.True(t, auth.VerifyCode(code, hash))
	})

	t.Run("wrong code fails", func(t *testing.T) {
		_, hash, err := auth.GenerateCode()
		require.NoError(t, err)
		assert.False(t, auth.VerifyCode("deadbeef", hash))
	})

	t.Run("empty inputs fail", func(t *testing.T) {
		assert.False(t, auth.VerifyCode("", "hash"))
		assert.False(t, auth.VerifyCode("code", ""))
	})
}

func TestNewOneTimeCode(t *testing.T) {
	accountID := ulid.Make()

	t.Run("creates valid code", func(t *testing.T) {
		otc, err := auth.NewOneTimeCode(accountID, "somehash", time.Now().Add(auth.CodeExpiry))
		require.NoError(t, err)
		assert.Equal(t, accountID, otc.AccountID)
		assert.NotZero(t, otc.ID)
		assert.False(t, otc.IsExpired())
	})

	t.Run("rejects zero account ID", func(t *testing.T) {
		_, err := auth.NewOneTimeCode(ulid.ULID{}, "somehash", time.Now().Add(time.Minute))
		assert.Error(t, err)
	})

	t.Run("rejects empty hash", func(t *testing.T) {
		_, err := auth.NewOneTimeCode(accountID, "", time.Now().Add(time.Minute))
		assert.Error(t, err)
	})

	t.Run("rejects zero expiry", func(t *testing.T) {
		_, err := auth.NewOneTimeCode(accountID, "somehash", time.Time{})
		assert.Error(t, err)
	})
}

func TestOneTimeCode_IsExpired(t *testing.T) {
	accountID := ulid.Make()

	t.Run("future expiry is not expired", func(t *testing.T) {
		otc, err := auth.NewOneTimeCode(accountID, "hash", time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, otc.IsExpired())
	})

	t.Run("past expiry is expired", func(t *testing.T) {
		otc, err := auth.NewOneTimeCode(accountID, "hash", time.Now().Add(-time.Second))
		require.NoError(t, err)
		assert.True(t, otc.IsExpired())
	})
}

func TestCodePurpose_String(t *testing.T) {
	assert.Equal(t, "email_verification", auth.PurposeEmailVerification.String())
	assert.Equal(t, "password_reset", auth.PurposePasswordReset.String())
}
