package rlsassets_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/db"
	"github.com/dmitrymomot/tenantkit/internal/rlsassets"
	"github.com/dmitrymomot/tenantkit/pkg/rls"
)

func TestManifest(t *testing.T) {
	t.Parallel()

	t.Run("missing file falls back to embedded", func(t *testing.T) {
		t.Parallel()
		m, source, err := rlsassets.Manifest(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, rlsassets.Embedded, source)
		assert.Contains(t, m.Tables, "projects")
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()
		_, source, err := rlsassets.Manifest("")
		require.NoError(t, err)
		assert.Equal(t, rlsassets.Embedded, source)
	})

	t.Run("file on disk wins", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "tables.yaml")
		require.NoError(t, os.WriteFile(path, []byte("schema: app\nprobe_table: tasks\ntables: [tasks]\n"), 0o600))

		m, source, err := rlsassets.Manifest(path)
		require.NoError(t, err)
		assert.Equal(t, path, source)
		assert.Equal(t, "app", m.Schema)
		assert.Equal(t, []string{"tasks"}, m.Tables)
	})

	t.Run("invalid file is an error", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "tables.yaml")
		require.NoError(t, os.WriteFile(path, []byte("tables: [\"bad name\"]\n"), 0o600))

		_, _, err := rlsassets.Manifest(path)
		assert.ErrorIs(t, err, rls.ErrManifestInvalid)
	})
}

func TestPolicies(t *testing.T) {
	t.Parallel()

	script, source, err := rlsassets.Policies(filepath.Join(t.TempDir(), "absent.sql"))
	require.NoError(t, err)
	assert.Equal(t, rlsassets.Embedded, source)
	assert.Equal(t, db.Policies(), script)

	path := filepath.Join(t.TempDir(), "policies.sql")
	require.NoError(t, os.WriteFile(path, []byte("SELECT 1;"), 0o600))
	script, source, err = rlsassets.Policies(path)
	require.NoError(t, err)
	assert.Equal(t, path, source)
	assert.Equal(t, "SELECT 1;", script)
}
