// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberhost/emberhost/pkg/errutil"
)

func TestParseForceVersion(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantVersion int
		wantErr     bool
		wantErrCode string
	}{
		{
			name:        "valid integer",
			input:       "3",
			wantVersion: 3,
		},
		{
			name:        "zero is valid",
			input:       "0",
			wantVersion: 0,
		},
		{
			name:        "negative parses",
			input:       "-1",
			wantVersion: -1,
		},
		{
			name:        "non-numeric returns error",
			input:       "abc",
			wantErr:     true,
			wantErrCode: "INVALID_VERSION",
		},
		{
			name:        "empty string returns error",
			input:       "",
			wantErr:     true,
			wantErrCode: "INVALID_VERSION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, err := parseForceVersion(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, tt.wantErrCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVersion, version)
		})
	}
}

func TestMigrateCommand_Properties(t *testing.T) {
	cmd := NewMigrateCmd()

	assert.Equal(t, "migrate", cmd.Use)
	assert.Contains(t, cmd.Short, "migration")
	assert.Contains(t, cmd.Long, "PostgreSQL")

	var subUses []string
	for _, sub := range cmd.Commands() {
		subUses = append(subUses, sub.Use)
	}
	assert.Contains(t, subUses, "down")
	assert.Contains(t, subUses, "version")
	assert.Contains(t, subUses, "force <version>")
}

func TestMigrateCommand_MissingConfiguration(t *testing.T) {
	// No config file, no environment: the required database URL is
	// absent and loading must fail before any connection attempt.
	configFile = ""

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"migrate", "version"})

	require.Error(t, cmd.Execute())
}

func TestMigrateForce_RejectsNonNumeric(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"migrate", "force", "abc"})

	err := cmd.Execute()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "INVALID_VERSION")
}
