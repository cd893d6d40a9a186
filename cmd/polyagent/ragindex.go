package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/history"
	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/rag"
)

var errNoIndex = fmt.Errorf("local retrieval index unavailable, check redis configuration")

// localIndex resolves the named index or fails when Redis is down.
func localIndex(name string) (*rag.Index, error) {
	switch name {
	case rag.EventsIndex:
		if deps.EventsIndex == nil {
			return nil, errNoIndex
		}
		return deps.EventsIndex, nil
	case rag.MarketsIndex:
		if deps.MarketsIndex == nil {
			return nil, errNoIndex
		}
		return deps.MarketsIndex, nil
	default:
		return nil, fmt.Errorf("unknown index %q, want %q or %q", name, rag.EventsIndex, rag.MarketsIndex)
	}
}

var buildLocalIndexCmd = &cobra.Command{
	Use:   "build-local-index",
	Short: "Index live events and markets into the local retrieval index",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name, _ := cmd.Flags().GetString("index")

		indexed := 0
		ix, err := localIndex(name)
		if err == nil {
			switch name {
			case rag.EventsIndex:
				evs, fetchErr := deps.Gamma.GetAllTradeableEvents(ctx)
				if fetchErr != nil {
					err = fetchErr
					break
				}
				indexed, err = ix.AddEvents(ctx, evs)
			case rag.MarketsIndex:
				mkts, fetchErr := deps.Gamma.GetAllMarkets(ctx)
				if fetchErr != nil {
					err = fetchErr
					break
				}
				indexed, err = ix.AddMarkets(ctx, mkts)
			}
		}

		op := history.RAGOperation{
			OperationType: "build_local_index",
			IndexName:     name,
			ResultsCount:  indexed,
			Success:       err == nil,
		}
		if err != nil {
			op.Error = err.Error()
		}
		deps.History.LogRAGOperation(ctx, op)
		logCLI(ctx, "build-local-index", map[string]any{"index": name},
			map[string]any{"indexed": indexed}, err)

		if err != nil {
			return err
		}
		fmt.Printf("indexed %d documents into %s\n", indexed, name)
		return nil
	},
}

var queryLocalIndexCmd = &cobra.Command{
	Use:   "query-local-index",
	Short: "Query the local retrieval index",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name, _ := cmd.Flags().GetString("index")
		query, _ := cmd.Flags().GetString("query")
		limit, _ := cmd.Flags().GetInt("limit")

		var docs []rag.Doc
		ix, err := localIndex(name)
		if err == nil {
			docs, err = ix.Query(ctx, query, limit)
		}

		op := history.RAGOperation{
			OperationType: "query_local_index",
			Query:         query,
			IndexName:     name,
			ResultsCount:  len(docs),
			Success:       err == nil,
		}
		if err != nil {
			op.Error = err.Error()
		}
		deps.History.LogRAGOperation(ctx, op)
		logCLI(ctx, "query-local-index", map[string]any{
			"index": name,
			"query": query,
			"limit": limit,
		}, map[string]any{"results_count": len(docs)}, err)

		if err != nil {
			return err
		}
		return printJSON(docs)
	},
}

func init() {
	buildLocalIndexCmd.Flags().String("index", rag.EventsIndex, "index to build (events or markets)")
	queryLocalIndexCmd.Flags().String("index", rag.EventsIndex, "index to query (events or markets)")
	queryLocalIndexCmd.Flags().String("query", "", "keyword query")
	queryLocalIndexCmd.Flags().Int("limit", 10, "maximum number of results")
	_ = queryLocalIndexCmd.MarkFlagRequired("query")
}
