package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MAGNIFY_DATA_DIR", dir)
	t.Setenv("MAGNIFY_INDEX_FILE", "")
	t.Setenv("MAGNIFY_PHOTOS_SUBDIR", "")
	t.Setenv("MAGNIFY_WINDOW_RADIUS", "")
	t.Setenv("MAGNIFY_MAX_LOG_MESSAGES", "")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dir, DefaultIndexFile), cfg.IndexPath)
	assert.Equal(t, filepath.Join(dir, DefaultPhotosSubDir), cfg.PhotosDir)
	assert.Equal(t, 1, cfg.WindowRadius)
	assert.Equal(t, 100, cfg.MaxLogMessages)
}

func TestLoadConfigOverrides(t *testing.T) {
	envDir := t.TempDir()
	flagDir := t.TempDir()
	t.Setenv("MAGNIFY_DATA_DIR", envDir)
	t.Setenv("MAGNIFY_PHOTOS_SUBDIR", "pics")
	t.Setenv("MAGNIFY_WINDOW_RADIUS", "2")
	t.Setenv("MAGNIFY_MAX_LOG_MESSAGES", "not-a-number")

	cfg, err := LoadConfig(flagDir)
	require.NoError(t, err)
	assert.Equal(t, flagDir, cfg.DataDir, "explicit override wins over env")
	assert.Equal(t, filepath.Join(flagDir, "pics"), cfg.PhotosDir)
	assert.Equal(t, 2, cfg.WindowRadius)
	assert.Equal(t, 100, cfg.MaxLogMessages, "invalid value falls back to default")
}

func TestEnsureDirs(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "data")
	t.Setenv("MAGNIFY_INDEX_FILE", "")
	t.Setenv("MAGNIFY_PHOTOS_SUBDIR", "")
	cfg, err := LoadConfig(root)
	require.NoError(t, err)
	require.NoError(t, cfg.EnsureDirs())

	info, err := os.Stat(cfg.PhotosDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
