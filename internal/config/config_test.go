package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, "https://gamma-api.polymarket.com", cfg.Polymarket.GammaHost)
	assert.Equal(t, 3, cfg.Strategy.MaxAttempts)
	assert.False(t, cfg.Strategy.AutoExecute)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
log_level = "debug"

[strategy]
trade_size = 25.0
retry_backoff = "500ms"

[history]
host = "db.internal"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 25.0, cfg.Strategy.TradeSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Strategy.RetryBackoff.Duration)
	assert.Equal(t, "db.internal", cfg.History.Host)
	// Untouched sections keep their defaults.
	assert.Equal(t, 5432, cfg.History.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("POLYAGENT_REASONING_MODEL", "gpt-4o")
	t.Setenv("POLYAGENT_STRATEGY_MAX_ATTEMPTS", "5")
	t.Setenv("POLYAGENT_HISTORY_CONNECT_TIMEOUT", "2s")
	t.Setenv("POLYAGENT_NOTIFY_EVENTS", "trade_selected, pipeline_failed")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.Reasoning.Model)
	assert.Equal(t, 5, cfg.Strategy.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.History.ConnectTimeout.Duration)
	assert.Equal(t, []string{"trade_selected", "pipeline_failed"}, cfg.Notify.Events)
	assert.Equal(t, "sk-test", cfg.Reasoning.ApiKey)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "loud"
	cfg.Polymarket.GammaHost = ""
	cfg.Strategy.MaxAttempts = 0
	cfg.Reasoning.Model = ""

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "log_level")
	assert.Contains(t, msg, "gamma_host")
	assert.Contains(t, msg, "max_attempts")
	assert.Contains(t, msg, "model")
}

func TestValidateS3OnlyWhenEnabled(t *testing.T) {
	cfg := Defaults()
	cfg.S3.Bucket = ""
	require.NoError(t, cfg.Validate())

	cfg.S3.Enabled = true
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket")
}

func TestRedactedConfigHidesSecrets(t *testing.T) {
	cfg := Defaults()
	cfg.Reasoning.ApiKey = "sk-secret"
	cfg.News.ApiKey = "news-secret"
	cfg.History.Password = "pg-secret"
	cfg.History.DSN = "postgres://u:p@h/db"
	cfg.Redis.Password = "redis-secret"
	cfg.S3.SecretKey = "s3-secret"
	cfg.Notify.TelegramToken = "tg-secret"

	red := RedactedConfig(&cfg)
	rendered := fmt.Sprintf("%+v", red)

	for _, secret := range []string{
		"sk-secret", "news-secret", "pg-secret", "redis-secret",
		"s3-secret", "tg-secret", "postgres://u:p@h/db",
	} {
		assert.False(t, strings.Contains(rendered, secret),
			"secret %q leaked into redacted config", secret)
	}

	// Original remains untouched.
	assert.Equal(t, "sk-secret", cfg.Reasoning.ApiKey)
}
