package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Project.Root)
	assert.Equal(t, 3, cfg.Limits.ContextRadius)
	assert.Equal(t, 5, cfg.Limits.MaxFrames)
	assert.Equal(t, 50, cfg.Limits.MaxFiles)
	assert.Equal(t, 10, cfg.Limits.IssueListLimit)
}

func TestLoadConfig_YAMLValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `project:
  root: /srv/app
tracker:
  owner: acme
  repo: shop
limits:
  context_radius: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/app", cfg.Project.Root)
	assert.Equal(t, "acme", cfg.Tracker.Owner)
	assert.Equal(t, "shop", cfg.Tracker.Repo)
	assert.Equal(t, 5, cfg.Limits.ContextRadius)
	assert.Equal(t, 5, cfg.Limits.MaxFrames) // default still applied
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("TRACESCOPE_TRACKER_TOKEN", "tok-123")
	t.Setenv("TRACESCOPE_AI_PROVIDER", "gemini")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "tok-123", cfg.Tracker.Token)
	assert.Equal(t, "gemini", cfg.AI.Provider)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("project: ["), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
