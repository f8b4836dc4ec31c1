package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigPath_ReturnsLocalConfig_When_FileExists(t *testing.T) {
	tempDir := t.TempDir()
	t.Chdir(tempDir)

	require.NoError(t, os.WriteFile(filepath.Join(tempDir, FileName), []byte("sarif_directory: out\n"), 0o600))

	assert.Equal(t, FileName, findConfigPath())
}

func TestGetConfigPath_UsesXDGPath_When_LocalMissing(t *testing.T) {
	tempDir := t.TempDir()
	t.Chdir(tempDir)

	xdgRoot := filepath.Join(tempDir, "xdg")
	require.NoError(t, os.MkdirAll(filepath.Join(xdgRoot, "sarifview"), 0o755))
	configPath := filepath.Join(xdgRoot, "sarifview", FileName)
	require.NoError(t, os.WriteFile(configPath, []byte("sarif_directory: xdg\n"), 0o600))
	t.Setenv("XDG_CONFIG_HOME", xdgRoot)

	assert.Equal(t, configPath, findConfigPath())
}

func TestGetConfigPath_ReturnsEmpty_When_NoConfigAnywhere(t *testing.T) {
	tempDir := t.TempDir()
	t.Chdir(tempDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tempDir, "empty"))

	assert.Empty(t, findConfigPath())
}

func TestLoadFile_ParsesAllSections(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), FileName)
	content := `
sarif_directory: build/sarif
refresh_on_task_end: on-failure
focus_after_refresh: false
editor: code
log:
  level: debug
  file: /tmp/sarifview.log
  max_size_mb: 5
theme:
  colors:
    error: "#FF0000"
  icons:
    file: "F"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)

	require.NoError(t, err)
	assert.Equal(t, "build/sarif", cfg.SarifDirectory)
	assert.Equal(t, "on-failure", cfg.RefreshOnTaskEnd)
	require.NotNil(t, cfg.FocusAfterRefresh)
	assert.False(t, *cfg.FocusAfterRefresh)
	assert.Equal(t, "code", cfg.Editor)
	assert.Equal(t, LogConfig{Level: "debug", File: "/tmp/sarifview.log", MaxSizeMB: 5}, cfg.Log)
	assert.Equal(t, "#FF0000", cfg.Theme.Colors.Error)
	assert.Equal(t, "F", cfg.Theme.Icons.File)
}

func TestLoadFile_ReturnsEmpty_When_PathMissing(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, &AppConfig{}, cfg)

	cfg, err = LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, &AppConfig{}, cfg)
}

func TestLoadFile_Fails_When_YAMLInvalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("log: [unclosed"), 0o600))

	_, err := LoadFile(path)

	assert.ErrorContains(t, err, "parse config")
}

func TestMergeTheme_KeepsOverridesAndFillsDefaults(t *testing.T) {
	t.Parallel()

	got := mergeTheme(Theme{Colors: ThemeColors{Error: "1"}, Icons: ThemeIcons{Note: "n"}})
	def := DefaultTheme()

	assert.Equal(t, "1", got.Colors.Error)
	assert.Equal(t, def.Colors.Warning, got.Colors.Warning)
	assert.Equal(t, "n", got.Icons.Note)
	assert.Equal(t, def.Icons.Error, got.Icons.Error)
}
