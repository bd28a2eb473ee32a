package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/amterp/cardman/internal/model"
	"github.com/amterp/cardman/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestConfigStore(t *testing.T) *FileConfigStore {
	t.Helper()
	t.Setenv("XDG_DATA_HOME", filepath.Join(t.TempDir(), "data"))
	return NewConfigStore(filepath.Join(t.TempDir(), "cardman", "config.toml"))
}

func TestFileConfigStore_MissingFileGivesDefaults(t *testing.T) {
	s := setupTestConfigStore(t)

	cfg, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, model.BackendFile, cfg.Backend)
	assert.Equal(t, model.DefaultStorageKey, cfg.StorageKey)
	assert.Equal(t, model.DefaultQuotaBytes, cfg.Quota())
	assert.Equal(t, filepath.Join(os.Getenv("XDG_DATA_HOME"), "cardman"), cfg.DataDir)
}

func TestFileConfigStore_SaveAndLoad(t *testing.T) {
	s := setupTestConfigStore(t)

	quota := int64(1024)
	require.NoError(t, s.Save(&model.Config{
		Backend:    model.BackendSQLite,
		DataDir:    "/srv/cards",
		QuotaBytes: &quota,
		Editor:     "nano",
	}))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), `cardman_schema = "config/1"`)

	cfg, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, model.BackendSQLite, cfg.Backend)
	assert.Equal(t, "/srv/cards", cfg.DataDir)
	assert.Equal(t, int64(1024), cfg.Quota())
	assert.Equal(t, "nano", cfg.Editor)
}

func TestFileConfigStore_EnvOverridesFile(t *testing.T) {
	s := setupTestConfigStore(t)
	require.NoError(t, s.Save(&model.Config{Backend: model.BackendSQLite, Port: 4000}))

	t.Setenv("CARDMAN_BACKEND", model.BackendMemory)
	t.Setenv("CARDMAN_STORAGE_KEY", "other-key")
	t.Setenv("CARDMAN_QUOTA_BYTES", "0")

	cfg, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, model.BackendMemory, cfg.Backend)
	assert.Equal(t, "other-key", cfg.StorageKey)
	assert.Equal(t, int64(0), cfg.Quota())
	assert.Equal(t, 4000, cfg.Port, "unset env leaves file value alone")
}

func TestFileConfigStore_BadEnvValue(t *testing.T) {
	s := setupTestConfigStore(t)
	t.Setenv("CARDMAN_PORT", "not-a-number")

	_, err := s.Load()
	assert.ErrorContains(t, err, "invalid environment override")
}

func TestFileConfigStore_RejectsFutureSchema(t *testing.T) {
	s := setupTestConfigStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0755))
	require.NoError(t, os.WriteFile(s.Path(), []byte(`cardman_schema = "config/9"`), 0644))

	_, err := s.Load()
	var sve *version.SchemaVersionError
	require.ErrorAs(t, err, &sve)
	assert.Equal(t, "config/9", sve.Found)
}

func TestFileConfigStore_AcceptsMissingSchema(t *testing.T) {
	s := setupTestConfigStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("backend = \"memory\"\n"), 0644))

	cfg, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, model.BackendMemory, cfg.Backend)
}

func TestFileConfigStore_MalformedTOML(t *testing.T) {
	s := setupTestConfigStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("backend = "), 0644))

	_, err := s.Load()
	assert.ErrorContains(t, err, "failed to parse")
}

func TestFileConfigStore_EnsureExists(t *testing.T) {
	s := setupTestConfigStore(t)

	require.NoError(t, s.EnsureExists())
	_, err := os.Stat(s.Path())
	require.NoError(t, err)

	// Second call leaves the existing file alone
	require.NoError(t, os.WriteFile(s.Path(), []byte("editor = \"ed\"\n"), 0644))
	require.NoError(t, s.EnsureExists())
	cfg, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "ed", cfg.Editor)
}
