package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutFileReturnsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, DefaultTimeout, cfg.Timeout())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	in := &Config{
		Provider:       "copilot",
		OpenAIModel:    "gpt-4o",
		TimeoutSeconds: 10,
		LogLevel:       "debug",
	}
	require.NoError(t, Save(in))

	out, err := Load()
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Equal(t, 10*time.Second, out.Timeout())
}

func TestLoadFillsMissingProvider(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(home, ".llmsuggest", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("timeout_seconds: 5\n"), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, 5*time.Second, cfg.Timeout())
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(home, ".llmsuggest", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("provider: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
}

func TestExists(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	exists, err := Exists()
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, Save(Default()))

	exists, err = Exists()
	require.NoError(t, err)
	assert.True(t, exists)
}
