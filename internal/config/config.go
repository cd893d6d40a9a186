// Package config defines the top-level configuration for the trading agent
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by POLYAGENT_* environment
// variables.
type Config struct {
	Polymarket PolymarketConfig `toml:"polymarket"`
	Reasoning  ReasoningConfig  `toml:"reasoning"`
	News       NewsConfig       `toml:"news"`
	History    HistoryConfig    `toml:"history"`
	Redis      RedisConfig      `toml:"redis"`
	S3         S3Config         `toml:"s3"`
	Strategy   StrategyConfig   `toml:"strategy"`
	Notify     NotifyConfig     `toml:"notify"`
	LogLevel   string           `toml:"log_level"`
}

// PolymarketConfig holds Polymarket API endpoints.
type PolymarketConfig struct {
	GammaHost string `toml:"gamma_host"`
	ClobHost  string `toml:"clob_host"`
	PageSize  int    `toml:"page_size"`
}

// ReasoningConfig holds connection parameters for the OpenAI-compatible
// reasoning service.
type ReasoningConfig struct {
	BaseURL     string   `toml:"base_url"`
	ApiKey      string   `toml:"api_key"`
	Model       string   `toml:"model"`
	Temperature float64  `toml:"temperature"`
	MaxTokens   int      `toml:"max_tokens"`
	Timeout     duration `toml:"timeout"`
}

// NewsConfig holds NewsAPI connection parameters.
type NewsConfig struct {
	BaseURL string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
}

// HistoryConfig holds PostgreSQL connection parameters for the history
// record store.
type HistoryConfig struct {
	DSN            string   `toml:"dsn"`
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	Database       string   `toml:"database"`
	User           string   `toml:"user"`
	Password       string   `toml:"password"`
	SSLMode        string   `toml:"ssl_mode"`
	PoolMaxConns   int      `toml:"pool_max_conns"`
	PoolMinConns   int      `toml:"pool_min_conns"`
	ConnectTimeout duration `toml:"connect_timeout"`
	RunMigrations  bool     `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters for the local candidate
// index.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for history
// archival.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// StrategyConfig holds decision-pipeline parameters.
type StrategyConfig struct {
	// AutoExecute controls whether a selected trade is handed to the order
	// executor. Off by default; review polymarket.com/tos before enabling.
	AutoExecute bool    `toml:"auto_execute"`
	TradeSize   float64 `toml:"trade_size"`

	// MaxAttempts bounds pipeline retries after a collaborator failure. The
	// final failed attempt is recorded as a terminal failure instead of
	// retrying again.
	MaxAttempts  int      `toml:"max_attempts"`
	RetryBackoff duration `toml:"retry_backoff"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Polymarket: PolymarketConfig{
			GammaHost: "https://gamma-api.polymarket.com",
			ClobHost:  "https://clob.polymarket.com",
			PageSize:  100,
		},
		Reasoning: ReasoningConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			Temperature: 0,
			MaxTokens:   4096,
			Timeout:     duration{120 * time.Second},
		},
		News: NewsConfig{
			BaseURL: "https://newsapi.org/v2",
		},
		History: HistoryConfig{
			Host:           "localhost",
			Port:           5432,
			Database:       "polymarket_agent",
			User:           "postgres",
			SSLMode:        "disable",
			PoolMaxConns:   10,
			PoolMinConns:   2,
			ConnectTimeout: duration{5 * time.Second},
			RunMigrations:  true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   10,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "polyagent-history",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Strategy: StrategyConfig{
			AutoExecute:  false,
			TradeSize:    5.0,
			MaxAttempts:  3,
			RetryBackoff: duration{2 * time.Second},
		},
		Notify: NotifyConfig{
			Events: []string{"trade_selected", "market_idea", "pipeline_failed"},
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Polymarket endpoints
	if c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty")
	}
	if c.Polymarket.PageSize < 1 {
		errs = append(errs, "polymarket: page_size must be >= 1")
	}

	// Reasoning
	if c.Reasoning.BaseURL == "" {
		errs = append(errs, "reasoning: base_url must not be empty")
	}
	if c.Reasoning.Model == "" {
		errs = append(errs, "reasoning: model must not be empty")
	}
	if c.Reasoning.MaxTokens < 1 {
		errs = append(errs, "reasoning: max_tokens must be >= 1")
	}

	// History
	if strings.TrimSpace(c.History.DSN) == "" {
		if c.History.Host == "" {
			errs = append(errs, "history: host must not be empty (or set history.dsn)")
		}
		if c.History.Port <= 0 || c.History.Port > 65535 {
			errs = append(errs, fmt.Sprintf("history: port must be 1-65535, got %d", c.History.Port))
		}
		if c.History.Database == "" {
			errs = append(errs, "history: database must not be empty")
		}
	}
	if c.History.PoolMaxConns < 1 {
		errs = append(errs, "history: pool_max_conns must be >= 1")
	}
	if c.History.PoolMinConns < 0 {
		errs = append(errs, "history: pool_min_conns must be >= 0")
	}
	if c.History.PoolMinConns > c.History.PoolMaxConns {
		errs = append(errs, "history: pool_min_conns must not exceed pool_max_conns")
	}
	if c.History.ConnectTimeout.Duration <= 0 {
		errs = append(errs, "history: connect_timeout must be > 0")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3 — only when archival is enabled.
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty when enabled")
		}
	}

	// Strategy
	if c.Strategy.TradeSize <= 0 {
		errs = append(errs, "strategy: trade_size must be > 0")
	}
	if c.Strategy.MaxAttempts < 1 {
		errs = append(errs, "strategy: max_attempts must be >= 1")
	}
	if c.Strategy.RetryBackoff.Duration < 0 {
		errs = append(errs, "strategy: retry_backoff must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
