// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

package store

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberhost/emberhost/pkg/errutil"
)

func TestNewMigrator_InvalidURL(t *testing.T) {
	_, err := NewMigrator("invalid://url")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")
}

// The postgresql:// scheme must be converted to pgx5:// before it
// reaches golang-migrate, otherwise the driver lookup fails.
func TestNewMigrator_PostgresqlScheme(t *testing.T) {
	_, err := NewMigrator("postgresql://localhost:5432/testdb")
	require.Error(t, err, "should fail due to connection, not URL scheme")
	errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")
	assert.NotContains(t, err.Error(), "unknown driver")
}

// mockMigrate implements migrateIface for testing.
type mockMigrate struct {
	upErr          error
	downErr        error
	stepsErr       error
	versionVal     uint
	versionErr     error
	dirty          bool
	forceErr       error
	closeSourceErr error
	closeDbErr     error
}

func (m *mockMigrate) Up() error                    { return m.upErr }
func (m *mockMigrate) Down() error                  { return m.downErr }
func (m *mockMigrate) Steps(_ int) error            { return m.stepsErr }
func (m *mockMigrate) Version() (uint, bool, error) { return m.versionVal, m.dirty, m.versionErr }
func (m *mockMigrate) Force(_ int) error            { return m.forceErr }
func (m *mockMigrate) Close() (error, error)        { return m.closeSourceErr, m.closeDbErr }

func TestMigrator_Up(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{}}
		require.NoError(t, m.Up())
	})

	t.Run("no change is success", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{upErr: migrate.ErrNoChange}}
		require.NoError(t, m.Up())
	})

	t.Run("error", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{upErr: errors.New("database locked")}}
		err := m.Up()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_UP_FAILED")
	})
}

func TestMigrator_Down(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{}}
		require.NoError(t, m.Down())
	})

	t.Run("no change is success", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{downErr: migrate.ErrNoChange}}
		require.NoError(t, m.Down())
	})

	t.Run("error", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{downErr: errors.New("constraint violation")}}
		err := m.Down()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_DOWN_FAILED")
	})
}

func TestMigrator_Steps(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{}}
		require.NoError(t, m.Steps(2))
	})

	t.Run("error", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{stepsErr: errors.New("bad step")}}
		err := m.Steps(-1)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_STEPS_FAILED")
	})
}

func TestMigrator_Version(t *testing.T) {
	t.Run("returns version and dirty state", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{versionVal: 3, dirty: true}}
		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(3), version)
		assert.True(t, dirty)
	})

	t.Run("nil version maps to zero", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{versionErr: migrate.ErrNilVersion}}
		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(0), version)
		assert.False(t, dirty)
	})

	t.Run("error", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{versionErr: errors.New("db gone")}}
		_, _, err := m.Version()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_VERSION_FAILED")
	})
}

func TestMigrator_Force(t *testing.T) {
	t.Run("rejects negative version", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{}}
		err := m.Force(-1)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "INVALID_VERSION")
	})

	t.Run("success", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{}}
		require.NoError(t, m.Force(2))
	})
}

func TestMigrator_Close(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{}}
		require.NoError(t, m.Close())
	})

	t.Run("source error", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{closeSourceErr: errors.New("source broke")}}
		err := m.Close()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_CLOSE_FAILED")
	})

	t.Run("both errors are combined", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{
			closeSourceErr: errors.New("source broke"),
			closeDbErr:     errors.New("db broke"),
		}}
		err := m.Close()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "source broke")
		assert.Contains(t, err.Error(), "db broke")
	})
}

func TestMigrator_PendingMigrations(t *testing.T) {
	t.Run("all pending at version zero", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{versionErr: migrate.ErrNilVersion}}
		pending, err := m.PendingMigrations()
		require.NoError(t, err)
		all, err := AllVersions()
		require.NoError(t, err)
		assert.Equal(t, all, pending)
	})

	t.Run("none pending at latest version", func(t *testing.T) {
		all, err := AllVersions()
		require.NoError(t, err)
		require.NotEmpty(t, all)

		m := &Migrator{m: &mockMigrate{versionVal: all[len(all)-1]}}
		pending, err := m.PendingMigrations()
		require.NoError(t, err)
		assert.Empty(t, pending)
	})
}
