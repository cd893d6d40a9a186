package main

import (
	"github.com/spf13/cobra"

	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/history"
)

var getRelevantNewsCmd = &cobra.Command{
	Use:   "get-relevant-news",
	Short: "Fetch recent news articles for a keyword query",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		keywords, _ := cmd.Flags().GetString("keywords")
		limit, _ := cmd.Flags().GetInt("limit")

		articles, err := deps.News.EverythingByKeywords(ctx, keywords, limit)

		q := history.NewsQuery{
			Keywords:      keywords,
			ArticlesCount: len(articles),
			Articles:      articles,
			Success:       err == nil,
		}
		if err != nil {
			q.Error = err.Error()
		}
		deps.History.LogNewsQuery(ctx, q)
		logCLI(ctx, "get-relevant-news", map[string]any{
			"keywords": keywords,
			"limit":    limit,
		}, map[string]any{"articles_count": len(articles)}, err)

		if err != nil {
			return err
		}
		return printJSON(articles)
	},
}

func init() {
	getRelevantNewsCmd.Flags().String("keywords", "", "keyword query, e.g. \"election polls\"")
	getRelevantNewsCmd.Flags().Int("limit", 20, "maximum number of articles")
	_ = getRelevantNewsCmd.MarkFlagRequired("keywords")
}
