package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runAutonomousTraderCmd = &cobra.Command{
	Use:   "run-autonomous-trader",
	Short: "Run one_best_trade: evaluate the venue and select a single position",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		err := deps.Trader.OneBestTrade(ctx)

		logCLI(ctx, "run-autonomous-trader", map[string]any{
			"auto_execute": cfg.Strategy.AutoExecute,
		}, nil, err)

		if err != nil {
			return err
		}
		fmt.Println("trade run complete, see trade_history for the outcome")
		return nil
	},
}

var createMarketCmd = &cobra.Command{
	Use:   "create-market",
	Short: "Run one_best_market: propose a single new market worth listing",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		idea, err := deps.Creator.OneBestMarket(ctx)

		var result any
		if idea != "" {
			result = map[string]any{"market_description": idea}
		}
		logCLI(ctx, "create-market", nil, result, err)

		if err != nil {
			return err
		}
		if idea == "" {
			fmt.Println("no market idea produced, see market_creation_history for details")
			return nil
		}
		fmt.Println(idea)
		return nil
	},
}
