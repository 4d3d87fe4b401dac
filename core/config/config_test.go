package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "Package.swift", cfg.ManifestName)
	assert.Equal(t, DefaultMaxPromptBytes, cfg.MaxPromptBytes)
	assert.Contains(t, cfg.ExcludedDirs, "node_modules")
	assert.Contains(t, cfg.ExcludedDirs, ".git")
	assert.False(t, cfg.NoClipboard)
}

func TestLoadWithoutConfigFile(t *testing.T) {
	cfg, err := Load(t.TempDir(), "")

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().ManifestName, cfg.ManifestName)
}

func TestLoadProjectFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, FileName,
		"manifest_name: Project.swift\nmax_prompt_bytes: 1024\nno_clipboard: true\n")

	cfg, err := Load(dir, "")

	require.NoError(t, err)
	assert.Equal(t, "Project.swift", cfg.ManifestName)
	assert.Equal(t, 1024, cfg.MaxPromptBytes)
	assert.True(t, cfg.NoClipboard)
}

func TestLoadFindsFileInParent(t *testing.T) {
	parent := t.TempDir()
	writeConfig(t, parent, FileNameAlt, "manifest_name: Root.swift\n")
	child := filepath.Join(parent, "Sources", "App")
	require.NoError(t, os.MkdirAll(child, 0o755))

	cfg, err := Load(child, "")

	require.NoError(t, err)
	assert.Equal(t, "Root.swift", cfg.ManifestName)
}

func TestLoadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "weft-ci.yaml", "max_prompt_bytes: 2048\n")

	cfg, err := Load(dir, path)

	require.NoError(t, err)
	assert.Equal(t, 2048, cfg.MaxPromptBytes)
}

func TestLoadExplicitPathMissing(t *testing.T) {
	_, err := Load(t.TempDir(), filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, FileName, "manifest_name: [unclosed\n")

	_, err := Load(dir, "")

	assert.Error(t, err)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, FileName, "manifest_name: FromFile.swift\n")
	t.Setenv("WEFT_MANIFEST_NAME", "FromEnv.swift")
	t.Setenv("WEFT_INSTRUCTION_FILE", "/pinned/Editor.swift")
	t.Setenv("WEFT_MAX_PROMPT_BYTES", "4096")

	cfg, err := Load(dir, "")

	require.NoError(t, err)
	assert.Equal(t, "FromEnv.swift", cfg.ManifestName)
	assert.Equal(t, "/pinned/Editor.swift", cfg.InstructionFile)
	assert.Equal(t, 4096, cfg.MaxPromptBytes)
}

func TestEnvironmentNoClipboard(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"0", false},
		{"no", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("WEFT_NO_CLIPBOARD", tt.value)

			cfg, err := Load(t.TempDir(), "")

			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.NoClipboard)
		})
	}
}

func TestEnvironmentBadNumberIgnored(t *testing.T) {
	t.Setenv("WEFT_MAX_PROMPT_BYTES", "not-a-number")

	cfg, err := Load(t.TempDir(), "")

	require.NoError(t, err)
	assert.Equal(t, DefaultMaxPromptBytes, cfg.MaxPromptBytes)
}

func TestDebounceInterval(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 400*time.Millisecond, cfg.DebounceInterval())

	cfg.WatchDebounce = "1s"
	assert.Equal(t, time.Second, cfg.DebounceInterval())

	cfg.WatchDebounce = "garbage"
	assert.Equal(t, 400*time.Millisecond, cfg.DebounceInterval())

	cfg.WatchDebounce = "-5ms"
	assert.Equal(t, 400*time.Millisecond, cfg.DebounceInterval())
}
