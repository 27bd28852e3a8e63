package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aqlanhadi/stmtsense/extractor/common"
	"github.com/aqlanhadi/stmtsense/summarize"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize a statement with a language model",
	Long: `Extracts a statement and sends its transactions to the configured
summarizer. Set CEREBRAS_API_KEY or GEMINI_API_KEY in the environment or .env.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		ext, err := newExtractor()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading extraction config: %v\n", err)
			os.Exit(1)
		}

		if provider, _ := cmd.Flags().GetString("provider"); provider != "" {
			viper.Set("summarizer.provider", provider)
		}
		completer, cfg, err := newCompleter(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		path, _ := cmd.Flags().GetString("file")
		profile, _ := cmd.Flags().GetString("profile")
		statement, err := ext.ProcessFile(ctx, path, common.ProfileID(profile))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if !statement.Found() {
			fmt.Fprintf(os.Stderr, "Error: %v\n", common.ErrNoTransactionsFound)
			os.Exit(1)
		}

		insights, _ := cmd.Flags().GetBool("insights")
		prompt, maxTokens, key := summarize.BuildSummaryPrompt(statement.Transactions), cfg.SummaryMaxTokens, "summary"
		if insights {
			prompt, maxTokens, key = summarize.BuildInsightsPrompt(statement.Transactions), cfg.InsightsMaxTokens, "insights"
		}
		log.WithFields(log.Fields{"provider": cfg.Provider, "transactions": len(statement.Transactions)}).Info("requesting completion")

		reply, err := completer.Complete(ctx, prompt, maxTokens)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		asJSON, _ := json.Marshal(map[string]string{key: reply})
		fmt.Println(string(asJSON))
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)

	summarizeCmd.Flags().StringP("file", "f", "", "Statement file to summarize")
	summarizeCmd.Flags().Bool("insights", false, "Categorize and analyze instead of summarizing")
	summarizeCmd.Flags().String("provider", "", "Summarizer provider (cerebras, gemini)")
	summarizeCmd.Flags().String("profile", "", "Bank profile to use instead of detection")
	summarizeCmd.MarkFlagRequired("file")
}
