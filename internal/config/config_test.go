package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synctree/synctree/internal/meta"
)

func TestParseAppliesFlagDefaults(t *testing.T) {
	cfg, err := Parse([]string{"-project", "/ws/default.project.json"})
	require.NoError(t, err)

	assert.Equal(t, "/ws/default.project.json", cfg.ProjectPath)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 34872, cfg.Port)
	assert.Equal(t, meta.Permissive, cfg.SanitizePolicy)
	assert.True(t, cfg.VCSEnabled)
}

func TestParseFlagsOverrideDefaults(t *testing.T) {
	cfg, err := Parse([]string{
		"-project", "/ws/default.project.json",
		"-host", "0.0.0.0",
		"-port", "9001",
		"-sanitize-policy", "strict",
		"-legacy-scripts",
		"-vcs=false",
	})
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 9001, cfg.Port)
	assert.Equal(t, meta.Strict, cfg.SanitizePolicy)
	assert.True(t, cfg.UseLegacyScripts)
	assert.False(t, cfg.VCSEnabled)
}

func TestParseFallsBackToEnvironment(t *testing.T) {
	t.Setenv("TREESYNC_PROJECT", "/ws/env.project.json")
	t.Setenv("TREESYNC_PORT", "9100")
	t.Setenv("TREESYNC_LOG_FORMAT", "json")

	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, "/ws/env.project.json", cfg.ProjectPath)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestParseRejectsMissingProjectPath(t *testing.T) {
	os.Unsetenv("TREESYNC_PROJECT")
	_, err := Parse(nil)
	require.Error(t, err)
}

func TestParseRejectsInvalidPort(t *testing.T) {
	_, err := Parse([]string{"-project", "/ws/default.project.json", "-port", "0"})
	require.Error(t, err)
}

func TestParseRejectsInvalidLogFormat(t *testing.T) {
	_, err := Parse([]string{"-project", "/ws/default.project.json", "-log-format", "xml"})
	require.Error(t, err)
}

func TestLoggerSelectsHandlerByFormat(t *testing.T) {
	cfg, err := Parse([]string{"-project", "/ws/default.project.json", "-log-format", "json"})
	require.NoError(t, err)

	logger := Logger(cfg)
	assert.NotNil(t, logger)
}
