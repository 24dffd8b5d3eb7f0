package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ENABLE_MOCKS", "true")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("EMERGENCY_KEYWORDS_FILE", filepath.Join(t.TempDir(), "missing.json"))

	cfg, err := Load("unit-test")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ServerAddr)
	assert.Equal(t, "unit-test", cfg.Environment)
	assert.True(t, cfg.EnableMocks)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, "/api/diagnose", cfg.DiagnosisConnectorCfg.DiagnoseEndpoint)
	assert.Equal(t, uint(3), cfg.DiagnosisConnectorCfg.Retry.Attempts)
	assert.Equal(t, 45*time.Second, cfg.DiagnosisConnectorCfg.RequestTimeout)
	assert.Equal(t, 24*time.Hour, cfg.SessionCacheCfg.TTL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Empty(t, cfg.EmergencyKeywords)
}

func TestLoad_RequiresDiagnosisURLWithoutMocks(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("ENABLE_MOCKS", "false")
	t.Setenv("DIAGNOSIS_SERVICE_URL", "")

	_, err := Load("unit-test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DIAGNOSIS_SERVICE_URL")
}

func TestValidateConfig_CollectsAllErrors(t *testing.T) {
	cfg := &Config{
		EnableMocks: true,
		DBMaxConns:  0,
		DBMinConns:  1,
		TelegramCfg: TelegramConfig{
			RateLimitPerMinute: 100,
			RateLimitBurst:     5,
			ShutdownTimeout:    30,
		},
		SessionCacheCfg: SessionCacheConfig{TTL: time.Hour},
	}
	cfg.DiagnosisConnectorCfg.Retry.Attempts = 3
	cfg.DiagnosisConnectorCfg.Retry.Delay = 10 * time.Second
	cfg.DiagnosisConnectorCfg.Retry.MaxDelay = time.Second

	err := validateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_RATE_LIMIT_PER_MINUTE")
	assert.Contains(t, err.Error(), "DB_MAX_CONNS")
	assert.Contains(t, err.Error(), "DIAGNOSIS_RETRY_DELAY")
}

func TestLoadEmergencyKeywords(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "ok.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"keywords":[{"category":"cardiac","keyword":"heart stopped"},{"category":"burns","keyword":"third degree burn","priority":2}]}`), 0o600))

		cfg := &Config{EmergencyKeywordsFile: path}
		require.NoError(t, loadEmergencyKeywords(cfg))
		require.Len(t, cfg.EmergencyKeywords, 2)
		assert.Equal(t, "burns", cfg.EmergencyKeywords[1].Category)
		assert.Equal(t, 2, cfg.EmergencyKeywords[1].Priority)
	})

	t.Run("missing keyword", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"keywords":[{"category":"cardiac"}]}`), 0o600))

		cfg := &Config{EmergencyKeywordsFile: path}
		assert.Error(t, loadEmergencyKeywords(cfg))
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"keywords":`), 0o600))

		cfg := &Config{EmergencyKeywordsFile: path}
		assert.Error(t, loadEmergencyKeywords(cfg))
	})

	t.Run("missing file is fine", func(t *testing.T) {
		cfg := &Config{EmergencyKeywordsFile: filepath.Join(dir, "nope.json")}
		require.NoError(t, loadEmergencyKeywords(cfg))
		assert.Empty(t, cfg.EmergencyKeywords)
	})
}

func TestGetEnvFile(t *testing.T) {
	assert.Equal(t, ".env.prod", getEnvFile("production"))
	assert.Equal(t, ".env.local", getEnvFile("dev"))
	assert.Equal(t, ".env.staging", getEnvFile("staging"))
}
