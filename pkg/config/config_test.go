package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gchat/pkg/config"
)

// chdir is a stand-in for testing.T.Chdir, which requires Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, "./gchat.md", cfg.ChatFile)
	assert.Equal(t, 2, cfg.TokenLevel)
	assert.Equal(t, 1.0, cfg.Temperature)
	assert.Equal(t, 600, cfg.TimeoutSeconds)
	assert.True(t, cfg.NegotiateFilesEnabled())
	assert.True(t, cfg.AutoEscalateEnabled())
	assert.False(t, cfg.Quiet)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gchat.yml")
	data := `chat_file: notes/chat.md
model: grok-test
token_level: 4
temperature: 0.3
negotiate_files: false
quiet: true
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "notes/chat.md", cfg.ChatFile)
	assert.Equal(t, "grok-test", cfg.Model)
	assert.Equal(t, 4, cfg.TokenLevel)
	assert.Equal(t, 0.3, cfg.Temperature)
	assert.False(t, cfg.NegotiateFilesEnabled())
	assert.True(t, cfg.AutoEscalateEnabled())
	assert.True(t, cfg.Quiet)

	// Keys the file does not mention keep their defaults.
	assert.Equal(t, 600, cfg.TimeoutSeconds)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gchat.yml")
	require.NoError(t, os.WriteFile(path, []byte("chat_file: [unclosed"), 0o644))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLocateExplicitWins(t *testing.T) {
	assert.Equal(t, "/some/where/gchat.yml", config.Locate("/some/where/gchat.yml"))
}

func TestLocateCurrentDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gchat.yml"), []byte("quiet: true\n"), 0o644))
	chdir(t, dir)

	assert.Equal(t, "gchat.yml", config.Locate(""))
}

func TestLocateNoneFound(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	assert.Equal(t, "", config.Locate(""))
}
