package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/history"
)

var historyCollections = map[string]string{
	"cli":             history.CollectionCLI,
	"trades":          history.CollectionTrades,
	"market-creation": history.CollectionMarketCreation,
	"llm":             history.CollectionLLM,
	"market-queries":  history.CollectionMarketQueries,
	"rag":             history.CollectionRAG,
	"news":            history.CollectionNewsQueries,
}

var showHistoryCmd = &cobra.Command{
	Use:   "show-history",
	Short: "Show recent audit records, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		category, _ := cmd.Flags().GetString("category")
		limit, _ := cmd.Flags().GetInt("limit")

		collection, ok := historyCollections[category]
		if !ok {
			return fmt.Errorf("unknown category %q", category)
		}

		if !deps.History.Connected(ctx) {
			fmt.Println("record store is disabled, no history available")
			return nil
		}

		records := deps.History.History(ctx, collection, limit, nil)
		logCLI(ctx, "show-history", map[string]any{"category": category, "limit": limit},
			map[string]any{"records": len(records)}, nil)
		return printJSON(records)
	},
}

var archiveHistoryCmd = &cobra.Command{
	Use:   "archive-history",
	Short: "Snapshot audit history collections to object storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		category, _ := cmd.Flags().GetString("category")
		list, _ := cmd.Flags().GetBool("list")

		if deps.Archiver == nil {
			return fmt.Errorf("object storage not enabled, set [s3] enabled = true")
		}

		var collection string
		if category != "" {
			var ok bool
			collection, ok = historyCollections[category]
			if !ok {
				return fmt.Errorf("unknown category %q", category)
			}
		}

		if list {
			snapshots, err := deps.Archiver.List(ctx, collection)
			logCLI(ctx, "archive-history", map[string]any{"category": category, "list": true},
				map[string]any{"snapshots": len(snapshots)}, err)
			if err != nil {
				return err
			}
			return printJSON(snapshots)
		}

		var result map[string]int
		var err error
		if collection != "" {
			var n int
			_, n, err = deps.Archiver.ArchiveCollection(ctx, collection)
			result = map[string]int{collection: n}
		} else {
			result, err = deps.Archiver.ArchiveAll(ctx)
		}

		logCLI(ctx, "archive-history", map[string]any{"category": category}, result, err)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func init() {
	showHistoryCmd.Flags().String("category", "trades", "history category (cli, trades, market-creation, llm, market-queries, rag, news)")
	showHistoryCmd.Flags().Int("limit", 20, "maximum number of records")
	archiveHistoryCmd.Flags().String("category", "", "archive a single category (default all)")
	archiveHistoryCmd.Flags().Bool("list", false, "list existing snapshots instead of archiving")
}
