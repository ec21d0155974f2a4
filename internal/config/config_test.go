//nolint:testpackage // Testing internal config requires same package access
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, "reviewscope", cfg.Service.Name)
	assert.Equal(t, defaultServicePort, cfg.Service.Port)
	assert.Equal(t, defaultAIModel, cfg.AI.Model)
	assert.Equal(t, 20, cfg.RateLimit.Quota)
	assert.Equal(t, time.Hour, cfg.RateLimit.Window)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
service:
  port: 9000
rate_limit:
  quota: 5
  window: 30m
ai:
  model: test-model
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Service.Port)
	assert.Equal(t, 5, cfg.RateLimit.Quota)
	assert.Equal(t, 30*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "test-model", cfg.AI.Model)
	assert.Equal(t, "reviewscope", cfg.Service.Name, "unset values keep defaults")
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, `
service:
  port: 9000
`)
	t.Setenv("REVIEWSCOPE_PORT", "9100")
	t.Setenv("REVIEWSCOPE_AI_API_KEY", "test-key")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Service.Port, "env beats yaml")
	assert.Equal(t, "test-key", cfg.AI.APIKey)
}

func TestLoad_APIKeyNeverFromYAML(t *testing.T) {
	path := writeConfig(t, `
ai:
  apikey: sneaky
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Empty(t, cfg.AI.APIKey)
}
