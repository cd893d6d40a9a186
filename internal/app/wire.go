// Package app wires the agent's dependencies from configuration. Every
// command constructs its collaborators through Wire instead of reaching for
// globals, so tests can assemble the same graph from stubs.
package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/blob/s3"
	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/config"
	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/domain"
	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/history"
	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/notify"
	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/pipeline"
	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/platform/newsapi"
	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/platform/polymarket"
	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/rag"
	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/reasoning"
	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/store/document"
)

// Dependencies bundles everything the command surface needs. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Store   domain.RecordStore
	History *history.Recorder

	Gamma *polymarket.GammaClient
	Agent *reasoning.Agent
	News  *newsapi.Client

	// EventsIndex and MarketsIndex are nil when Redis is unreachable; the
	// agent runs without local retrieval in that case.
	EventsIndex  *rag.Index
	MarketsIndex *rag.Index

	Notifier *notify.Notifier

	// Archiver is nil unless S3 is enabled in configuration.
	Archiver *s3blob.Archiver

	Trader  *pipeline.Trader
	Creator *pipeline.Creator
}

// Wire constructs all concrete dependencies from the given configuration and
// returns them together with a cleanup function to call on shutdown. The
// record store and the retrieval index degrade instead of failing: an
// unreachable backend leaves the agent functional without them.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Record store + audit history ---
	store := document.New(ctx, document.ClientConfig{
		DSN:            cfg.History.DSN,
		Host:           cfg.History.Host,
		Port:           cfg.History.Port,
		Database:       cfg.History.Database,
		User:           cfg.History.User,
		Password:       cfg.History.Password,
		SSLMode:        cfg.History.SSLMode,
		MaxConns:       cfg.History.PoolMaxConns,
		MinConns:       cfg.History.PoolMinConns,
		ConnectTimeout: cfg.History.ConnectTimeout.Duration,
		RunMigrations:  cfg.History.RunMigrations,
	}, logger)
	closers = append(closers, store.Close)
	deps.Store = store
	deps.History = history.NewRecorder(store, logger)

	// --- Market data ---
	deps.Gamma = polymarket.NewGammaClient(cfg.Polymarket.GammaHost, cfg.Polymarket.PageSize)

	// --- Reasoning ---
	llm := reasoning.New(reasoning.Config{
		BaseURL:     cfg.Reasoning.BaseURL,
		ApiKey:      cfg.Reasoning.ApiKey,
		Model:       cfg.Reasoning.Model,
		Temperature: cfg.Reasoning.Temperature,
		MaxTokens:   cfg.Reasoning.MaxTokens,
		Timeout:     cfg.Reasoning.Timeout.Duration,
	})
	deps.Agent = reasoning.NewAgent(llm, logger)

	// --- News ---
	deps.News = newsapi.New(cfg.News.BaseURL, cfg.News.ApiKey)

	// --- Local retrieval index (optional) ---
	ragClient, err := rag.NewClient(ctx, rag.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		logger.Warn("redis unavailable, local retrieval index disabled",
			slog.String("error", err.Error()))
	} else {
		closers = append(closers, func() { _ = ragClient.Close() })
		deps.EventsIndex = rag.NewIndex(ragClient, rag.EventsIndex)
		deps.MarketsIndex = rag.NewIndex(ragClient, rag.MarketsIndex)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	// --- Archiver (optional) ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })
		deps.Archiver = s3blob.NewArchiver(s3Client, store, logger)
	}

	// --- Pipelines ---
	pipeCfg := pipeline.Config{
		AutoExecute:  cfg.Strategy.AutoExecute,
		TradeSize:    cfg.Strategy.TradeSize,
		MaxAttempts:  cfg.Strategy.MaxAttempts,
		RetryBackoff: cfg.Strategy.RetryBackoff.Duration,
	}
	var index pipeline.CandidateIndex
	if deps.MarketsIndex != nil {
		index = deps.MarketsIndex
	}
	deps.Trader = pipeline.NewTrader(
		deps.Gamma,
		deps.Agent,
		pipeline.DryRunExecutor{Logger: logger},
		index,
		deps.History,
		deps.Notifier,
		pipeCfg,
		logger,
	)
	deps.Creator = pipeline.NewCreator(
		deps.Gamma,
		deps.Agent,
		deps.History,
		deps.Notifier,
		pipeCfg,
		logger,
	)

	return deps, cleanup, nil
}
