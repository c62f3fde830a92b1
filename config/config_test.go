package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
http:
  port: 9090
  timeout: 5s
log:
  level: debug
  format: console
ml:
  model_type: random_forest
  bundle_path: model.db
  cache_size: 256
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Http.Port)
	assert.Equal(t, 5*time.Second, cfg.Http.Timeout)
	assert.Equal(t, []string{"*"}, cfg.Http.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "random_forest", cfg.ML.ModelType)
	assert.Equal(t, "model.db", cfg.ML.BundlePath)
	assert.Empty(t, cfg.ML.ArtifactsDir)
	assert.Equal(t, 256, cfg.ML.CacheSize)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 8080, cfg.Http.Port)
	assert.Equal(t, "models", cfg.ML.ArtifactsDir)
	assert.Equal(t, "logistic_regression", cfg.ML.ModelType)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "http: [\n"},
		{"bad port", "http:\n  port: 70000\n"},
		{"both sources", "ml:\n  artifacts_dir: models\n  bundle_path: model.db\n"},
		{"unknown model", "ml:\n  model_type: xgboost\n"},
		{"negative cache", "ml:\n  cache_size: -1\n"},
		{"bad log output", "log:\n  output: syslog\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestResolvePath(t *testing.T) {
	t.Setenv(EnvPath, "")
	assert.Equal(t, DefaultPath, ResolvePath(""))

	t.Setenv(EnvPath, "/etc/riskgate.yaml")
	assert.Equal(t, "/etc/riskgate.yaml", ResolvePath(""))
	assert.Equal(t, "local.yaml", ResolvePath("local.yaml"))
}
