package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/cute/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, uint64(0), cfg.MaxSteps)
	require.Empty(t, cfg.LibraryPath)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	content := "max_steps: 1000\nlibrary_path:\n  - /opt/cute/lib\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cute.yaml"), []byte(content), 0o644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), cfg.MaxSteps)
	require.Equal(t, []string{"/opt/cute/lib"}, cfg.LibraryPath)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	content := "max_steps: 1000\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cute.yaml"), []byte(content), 0o644))

	t.Setenv("CUTE_MAX_STEPS", "42")
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	require.Equal(t, uint64(42), cfg.MaxSteps)
}

func TestParseLibraryPath(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, config.ParseLibraryPath("a:b"))
	require.Nil(t, config.ParseLibraryPath(""))
	require.Equal(t, []string{"a"}, config.ParseLibraryPath("a::"))
}
