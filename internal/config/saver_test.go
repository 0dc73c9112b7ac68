package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "config.json")
	data := []byte(`{"test": "data"}`)

	require.NoError(t, atomicWrite(path, data))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers, "temp file should be renamed away")
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".describo.json")
	cfg := Default()
	cfg.Server.Port = 9191
	cfg.Catalog.Path = "products.yaml"

	require.NoError(t, Save(cfg, path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSave_BacksUpPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".describo.json")

	first := Default()
	first.Server.Port = 1111
	require.NoError(t, Save(first, path))

	second := Default()
	second.Server.Port = 2222
	require.NoError(t, Save(second, path))

	bak, err := LoadFrom(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, 1111, bak.Server.Port)

	cur, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 2222, cur.Server.Port)
}

func TestSave_RejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".describo.json")
	cfg := Default()
	cfg.Server.Port = 0

	err := Save(cfg, path)
	var invalid *InvalidConfigError
	require.ErrorAs(t, err, &invalid)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSave_ReadOnlyDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o500))
	defer os.Chmod(dir, 0o755)

	err := Save(Default(), filepath.Join(dir, "config.json"))
	var permErr *PermissionError
	require.ErrorAs(t, err, &permErr)
	assert.Equal(t, "write", permErr.Op)
}

func TestSave_Concurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".describo.json")

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(port int) {
			defer wg.Done()
			cfg := Default()
			cfg.Server.Port = port
			_ = Save(cfg, path)
		}(8000 + i)
	}
	wg.Wait()

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cfg.Server.Port, 8000)
	assert.Less(t, cfg.Server.Port, 8005)
}
