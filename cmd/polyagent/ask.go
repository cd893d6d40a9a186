package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/history"
	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/reasoning"
)

// logLLM records a reasoning query in the LLM history.
func logLLM(cmd *cobra.Command, queryType, input string, reply reasoning.Reply, err error) {
	q := history.LLMQuery{
		QueryType:  queryType,
		UserInput:  input,
		Response:   reply.Content,
		Model:      deps.Agent.Model(),
		TokensUsed: reply.TokensUsed,
		Success:    err == nil,
	}
	if err != nil {
		q.Error = err.Error()
	}
	deps.History.LogLLMQuery(cmd.Context(), q)
}

var askLLMCmd = &cobra.Command{
	Use:   "ask-llm [question]",
	Short: "Ask the reasoning model a free-form question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		question := strings.Join(args, " ")

		reply, err := deps.Agent.Ask(ctx, question)

		logLLM(cmd, "ask_llm", question, reply, err)
		logCLI(ctx, "ask-llm", map[string]any{"question": question},
			map[string]any{"tokens_used": reply.TokensUsed}, err)

		if err != nil {
			return err
		}
		fmt.Println(reply.Content)
		return nil
	},
}

var askPolymarketLLMCmd = &cobra.Command{
	Use:   "ask-polymarket-llm [question]",
	Short: "Ask the reasoning model a question grounded in live market data",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		question := strings.Join(args, " ")

		var reply reasoning.Reply
		markets, err := deps.Gamma.GetTrendingMarkets(ctx, 50)
		if err == nil {
			reply, err = deps.Agent.AskWithMarketContext(ctx, question, markets)
		}

		logLLM(cmd, "ask_polymarket_llm", question, reply, err)
		logCLI(ctx, "ask-polymarket-llm", map[string]any{"question": question},
			map[string]any{"tokens_used": reply.TokensUsed, "markets_in_context": len(markets)}, err)

		if err != nil {
			return err
		}
		fmt.Println(reply.Content)
		return nil
	},
}

var askSuperforecasterCmd = &cobra.Command{
	Use:   "ask-superforecaster",
	Short: "Get a calibrated probability estimate for a market outcome",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		event, _ := cmd.Flags().GetString("event")
		market, _ := cmd.Flags().GetString("market")
		outcome, _ := cmd.Flags().GetString("outcome")

		reply, err := deps.Agent.Superforecast(ctx, event, market, outcome)

		input := fmt.Sprintf("event=%s market=%s outcome=%s", event, market, outcome)
		logLLM(cmd, "ask_superforecaster", input, reply, err)
		logCLI(ctx, "ask-superforecaster", map[string]any{
			"event":   event,
			"market":  market,
			"outcome": outcome,
		}, map[string]any{"tokens_used": reply.TokensUsed}, err)

		if err != nil {
			return err
		}
		fmt.Println(reply.Content)
		return nil
	},
}

func init() {
	askSuperforecasterCmd.Flags().String("event", "", "event title")
	askSuperforecasterCmd.Flags().String("market", "", "market question")
	askSuperforecasterCmd.Flags().String("outcome", "", "outcome to forecast")
	_ = askSuperforecasterCmd.MarkFlagRequired("event")
	_ = askSuperforecasterCmd.MarkFlagRequired("market")
	_ = askSuperforecasterCmd.MarkFlagRequired("outcome")
}
