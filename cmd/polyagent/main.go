// Command polyagent is the command surface of the autonomous Polymarket
// agent. It loads configuration, wires dependencies, and exposes one
// subcommand per agent operation. Every invocation is recorded in the audit
// history alongside its category-specific record.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/app"
	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/config"
	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/history"
)

var (
	configPath string

	cfg     *config.Config
	logger  *slog.Logger
	deps    *app.Dependencies
	cleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "polyagent",
	Short: "Autonomous trading and market-creation agent for Polymarket",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config %s: %w", configPath, err)
		}

		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel(cfg.LogLevel),
		}))
		slog.SetDefault(logger)

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		deps, cleanup, err = app.Wire(cmd.Context(), cfg, logger)
		if err != nil {
			return fmt.Errorf("wire dependencies: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cleanup != nil {
			cleanup()
		}
	},
	SilenceUsage: true,
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// logCLI records the command invocation itself, in addition to whatever
// category record the command wrote.
func logCLI(ctx context.Context, command string, params map[string]any, result any, err error) {
	rec := history.CLICommand{
		Command:    command,
		Parameters: params,
		Result:     result,
		Success:    err == nil,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	deps.History.LogCLICommand(ctx, rec)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "path to configuration file")

	rootCmd.AddCommand(getAllMarketsCmd)
	rootCmd.AddCommand(getTrendingMarketsCmd)
	rootCmd.AddCommand(getAllEventsCmd)
	rootCmd.AddCommand(getRelevantNewsCmd)
	rootCmd.AddCommand(buildLocalIndexCmd)
	rootCmd.AddCommand(queryLocalIndexCmd)
	rootCmd.AddCommand(askLLMCmd)
	rootCmd.AddCommand(askPolymarketLLMCmd)
	rootCmd.AddCommand(askSuperforecasterCmd)
	rootCmd.AddCommand(runAutonomousTraderCmd)
	rootCmd.AddCommand(createMarketCmd)
	rootCmd.AddCommand(showHistoryCmd)
	rootCmd.AddCommand(archiveHistoryCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
