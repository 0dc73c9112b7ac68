package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "describo.json", `{
		"server": {"port": 9090},
		"trust": {"humanThreshold": 60},
		"catalog": {"path": "/srv/products.yaml"}
	}`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 60, cfg.Trust.HumanThreshold)
	assert.Equal(t, 500, cfg.Trust.BotGapMillis)
	assert.Equal(t, "/srv/products.yaml", cfg.Catalog.Path)
	assert.True(t, cfg.Analytics.Enabled)
}

func TestLoadFrom_NotFound(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))

	var notFound *ConfigNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, err.Error(), "describo init")
	assert.Contains(t, err.Error(), "💡")
}

func TestLoadFrom_InvalidJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.json", `{"server": `)

	_, err := LoadFrom(path)
	var invalid *InvalidConfigError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, path, invalid.Path)
	assert.Contains(t, err.Error(), ".bak")
}

func TestLoadFrom_PermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	path := writeFile(t, t.TempDir(), "locked.json", `{}`)
	require.NoError(t, os.Chmod(path, 0o000))
	defer os.Chmod(path, 0o644)

	_, err := LoadFrom(path)
	var permErr *PermissionError
	require.ErrorAs(t, err, &permErr)
	assert.Equal(t, "read", permErr.Op)
	assert.Contains(t, err.Error(), "💡 Fix:")
}

func TestResolve_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, Default().Server, cfg.Server)
}

func TestResolve_ExplicitMissingFileFails(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "nope.json"))
	var notFound *ConfigNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestResolve_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "describo.json", `{"server": {"port": 9090}, "logging": {"level": "warn"}}`)
	t.Setenv("DESCRIBO_PORT", "7070")
	t.Setenv("DESCRIBO_HUMAN_THRESHOLD", "90")
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("DESCRIBO_ANALYTICS", "false")

	cfg, err := Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 90, cfg.Trust.HumanThreshold)
	assert.Equal(t, "gsk_test", cfg.Transcription.APIKey)
	assert.False(t, cfg.Analytics.Enabled)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestResolve_InvalidValuesRejected(t *testing.T) {
	path := writeFile(t, t.TempDir(), "describo.json", `{"trust": {"humanThreshold": 150}}`)

	_, err := Resolve(path)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "humanThreshold")
}

func TestApplyEnv_BadNumber(t *testing.T) {
	t.Setenv("DESCRIBO_PORT", "eighty")
	err := ApplyEnv(Default())
	var invalid *InvalidConfigError
	assert.ErrorAs(t, err, &invalid)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", "DESCRIBO_LOG_LEVEL=debug\nDESCRIBO_SEARCH_LIMIT=3\n")
	t.Setenv("DESCRIBO_SEARCH_LIMIT", "7")
	// Register for cleanup; LoadDotEnv sets it directly.
	t.Setenv("DESCRIBO_LOG_LEVEL", "")
	os.Unsetenv("DESCRIBO_LOG_LEVEL")

	require.NoError(t, LoadDotEnv(path))
	require.NoError(t, LoadDotEnv(filepath.Join(dir, "absent.env")))

	cfg := Default()
	require.NoError(t, ApplyEnv(cfg))
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Existing environment wins over the file.
	assert.Equal(t, 7, cfg.Search.Limit)
}
