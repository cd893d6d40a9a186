package main

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/domain"
	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/history"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var getAllMarketsCmd = &cobra.Command{
	Use:   "get-all-markets",
	Short: "List markets on the venue",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		limit, _ := cmd.Flags().GetInt("limit")
		sortBy, _ := cmd.Flags().GetString("sort-by")
		tradeableOnly, _ := cmd.Flags().GetBool("tradeable-only")

		markets, err := deps.Gamma.GetAllMarkets(ctx)
		if err == nil {
			if tradeableOnly {
				markets = filterTradeableMarkets(markets)
			}
			sortMarkets(markets, sortBy)
			if limit > 0 && len(markets) > limit {
				markets = markets[:limit]
			}
		}

		q := history.MarketQuery{
			QueryType:    "get_all_markets",
			Limit:        limit,
			SortBy:       sortBy,
			ResultsCount: len(markets),
			Markets:      markets,
			Success:      err == nil,
		}
		if err != nil {
			q.Error = err.Error()
		}
		deps.History.LogMarketQuery(ctx, q)
		logCLI(ctx, "get-all-markets", map[string]any{
			"limit":          limit,
			"sort_by":        sortBy,
			"tradeable_only": tradeableOnly,
		}, map[string]any{"results_count": len(markets)}, err)

		if err != nil {
			return err
		}
		return printJSON(markets)
	},
}

var getTrendingMarketsCmd = &cobra.Command{
	Use:   "get-trending-markets",
	Short: "List the highest-volume markets",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		limit, _ := cmd.Flags().GetInt("limit")

		markets, err := deps.Gamma.GetTrendingMarkets(ctx, limit)

		q := history.MarketQuery{
			QueryType:    "get_trending_markets",
			Limit:        limit,
			SortBy:       "volume_24h",
			ResultsCount: len(markets),
			Markets:      markets,
			Success:      err == nil,
		}
		if err != nil {
			q.Error = err.Error()
		}
		deps.History.LogMarketQuery(ctx, q)
		logCLI(ctx, "get-trending-markets", map[string]any{"limit": limit},
			map[string]any{"results_count": len(markets)}, err)

		if err != nil {
			return err
		}
		return printJSON(markets)
	},
}

var getAllEventsCmd = &cobra.Command{
	Use:   "get-all-events",
	Short: "List events on the venue",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		limit, _ := cmd.Flags().GetInt("limit")
		sortBy, _ := cmd.Flags().GetString("sort-by")
		tradeableOnly, _ := cmd.Flags().GetBool("tradeable-only")

		var events []domain.Event
		var err error
		if tradeableOnly {
			events, err = deps.Gamma.GetAllTradeableEvents(ctx)
		} else {
			events, err = deps.Gamma.GetAllEvents(ctx)
		}
		if err == nil {
			sortEvents(events, sortBy)
			if limit > 0 && len(events) > limit {
				events = events[:limit]
			}
		}

		q := history.MarketQuery{
			QueryType:    "get_all_events",
			Limit:        limit,
			SortBy:       sortBy,
			ResultsCount: len(events),
			Success:      err == nil,
		}
		if err != nil {
			q.Error = err.Error()
		}
		deps.History.LogMarketQuery(ctx, q)
		logCLI(ctx, "get-all-events", map[string]any{
			"limit":          limit,
			"sort_by":        sortBy,
			"tradeable_only": tradeableOnly,
		}, map[string]any{"results_count": len(events)}, err)

		if err != nil {
			return err
		}
		return printJSON(events)
	},
}

func filterTradeableMarkets(markets []domain.Market) []domain.Market {
	kept := make([]domain.Market, 0, len(markets))
	for _, m := range markets {
		if m.Tradeable() {
			kept = append(kept, m)
		}
	}
	return kept
}

// sortMarkets orders markets in place: "spread" ascending (tightest first),
// "volume_24h" descending. Unknown keys leave the venue order.
func sortMarkets(markets []domain.Market, sortBy string) {
	switch sortBy {
	case "spread":
		sort.SliceStable(markets, func(i, j int) bool {
			return markets[i].Spread < markets[j].Spread
		})
	case "volume_24h":
		sort.SliceStable(markets, func(i, j int) bool {
			return markets[i].Volume24h > markets[j].Volume24h
		})
	}
}

// sortEvents orders events in place: "number_of_markets" and "volume" both
// descending. Unknown keys leave the venue order.
func sortEvents(events []domain.Event, sortBy string) {
	switch sortBy {
	case "number_of_markets":
		sort.SliceStable(events, func(i, j int) bool {
			return len(events[i].Markets) > len(events[j].Markets)
		})
	case "volume":
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].Volume > events[j].Volume
		})
	}
}

func init() {
	getAllMarketsCmd.Flags().Int("limit", 5, "maximum number of markets to return (0 = all)")
	getAllMarketsCmd.Flags().String("sort-by", "spread", "sort key: spread or volume_24h")
	getAllMarketsCmd.Flags().Bool("tradeable-only", false, "only include active, open markets")
	getTrendingMarketsCmd.Flags().Int("limit", 10, "maximum number of markets to return")
	getAllEventsCmd.Flags().Int("limit", 5, "maximum number of events to return (0 = all)")
	getAllEventsCmd.Flags().String("sort-by", "number_of_markets", "sort key: number_of_markets or volume")
	getAllEventsCmd.Flags().Bool("tradeable-only", false, "only include active, open events")
}
