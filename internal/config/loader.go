package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies POLYAGENT_* environment variable overrides, and
// returns the final Config. A missing config file is not an error; the
// defaults plus environment overrides are used instead. The returned Config
// has NOT been validated; the caller should invoke Config.Validate() after
// Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known POLYAGENT_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e.
// not empty). This lets operators inject secrets at deploy time without
// touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Polymarket ──
	setStr(&cfg.Polymarket.GammaHost, "POLYAGENT_POLYMARKET_GAMMA_HOST")
	setStr(&cfg.Polymarket.ClobHost, "POLYAGENT_POLYMARKET_CLOB_HOST")
	setInt(&cfg.Polymarket.PageSize, "POLYAGENT_POLYMARKET_PAGE_SIZE")

	// ── Reasoning ──
	setStr(&cfg.Reasoning.BaseURL, "POLYAGENT_REASONING_BASE_URL")
	setStr(&cfg.Reasoning.ApiKey, "POLYAGENT_REASONING_API_KEY")
	setStr(&cfg.Reasoning.ApiKey, "OPENAI_API_KEY") // compatibility alias
	setStr(&cfg.Reasoning.Model, "POLYAGENT_REASONING_MODEL")
	setFloat64(&cfg.Reasoning.Temperature, "POLYAGENT_REASONING_TEMPERATURE")
	setInt(&cfg.Reasoning.MaxTokens, "POLYAGENT_REASONING_MAX_TOKENS")
	setDuration(&cfg.Reasoning.Timeout, "POLYAGENT_REASONING_TIMEOUT")

	// ── News ──
	setStr(&cfg.News.BaseURL, "POLYAGENT_NEWS_BASE_URL")
	setStr(&cfg.News.ApiKey, "POLYAGENT_NEWS_API_KEY")
	setStr(&cfg.News.ApiKey, "NEWSAPI_API_KEY") // compatibility alias

	// ── History ──
	setStr(&cfg.History.DSN, "POLYAGENT_HISTORY_DSN")
	setStr(&cfg.History.Host, "POLYAGENT_HISTORY_HOST")
	setInt(&cfg.History.Port, "POLYAGENT_HISTORY_PORT")
	setStr(&cfg.History.Database, "POLYAGENT_HISTORY_DATABASE")
	setStr(&cfg.History.User, "POLYAGENT_HISTORY_USER")
	setStr(&cfg.History.Password, "POLYAGENT_HISTORY_PASSWORD")
	setStr(&cfg.History.SSLMode, "POLYAGENT_HISTORY_SSLMODE")
	setInt(&cfg.History.PoolMaxConns, "POLYAGENT_HISTORY_POOL_MAX_CONNS")
	setInt(&cfg.History.PoolMinConns, "POLYAGENT_HISTORY_POOL_MIN_CONNS")
	setDuration(&cfg.History.ConnectTimeout, "POLYAGENT_HISTORY_CONNECT_TIMEOUT")
	setBool(&cfg.History.RunMigrations, "POLYAGENT_HISTORY_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "POLYAGENT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "POLYAGENT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "POLYAGENT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "POLYAGENT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "POLYAGENT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "POLYAGENT_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "POLYAGENT_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "POLYAGENT_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "POLYAGENT_S3_REGION")
	setStr(&cfg.S3.Bucket, "POLYAGENT_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "POLYAGENT_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "POLYAGENT_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "POLYAGENT_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "POLYAGENT_S3_FORCE_PATH_STYLE")

	// ── Strategy ──
	setBool(&cfg.Strategy.AutoExecute, "POLYAGENT_STRATEGY_AUTO_EXECUTE")
	setFloat64(&cfg.Strategy.TradeSize, "POLYAGENT_STRATEGY_TRADE_SIZE")
	setInt(&cfg.Strategy.MaxAttempts, "POLYAGENT_STRATEGY_MAX_ATTEMPTS")
	setDuration(&cfg.Strategy.RetryBackoff, "POLYAGENT_STRATEGY_RETRY_BACKOFF")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "POLYAGENT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "POLYAGENT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "POLYAGENT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "POLYAGENT_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "POLYAGENT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
