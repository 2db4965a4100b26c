// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

package web_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberhost/emberhost/internal/auth"
	"github.com/emberhost/emberhost/internal/web"
)

func TestServer_StartStop(t *testing.T) {
	flow := &stubFlow{err: &auth.FlowError{Kind: auth.KindInvalidCaptcha}}
	srv, err := web.NewServer("127.0.0.1:0", flow, web.WithInsecureCookies())
	require.NoError(t, err)

	errCh, err := srv.Start()
	require.NoError(t, err)
	require.NotEmpty(t, srv.Addr())

	resp, err := http.Post(
		fmt.Sprintf("http://%s/auth/register", srv.Addr()),
		"application/x-www-form-urlencoded", nil)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "Invalid captcha")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))

	select {
	case serveErr, ok := <-errCh:
		if ok {
			t.Fatalf("unexpected serve error: %v", serveErr)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("error channel not closed after stop")
	}
}

func TestServer_ListenFailure(t *testing.T) {
	srv, err := web.NewServer("256.256.256.256:0", &stubFlow{})
	require.NoError(t, err)

	_, err = srv.Start()
	require.Error(t, err)
}
