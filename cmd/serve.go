package cmd

import (
	"os"
	"strings"

	"github.com/aqlanhadi/stmtsense/api"
	"github.com/aqlanhadi/stmtsense/summarize"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long:  `Starts the HTTP API server that accepts statement uploads and returns extracted data as JSON.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Server mode always logs.
		log.SetOutput(os.Stdout)
		logger := log.WithField("component", "server")

		ext, err := newExtractor()
		if err != nil {
			logger.WithError(err).Fatal("failed to load extraction config")
		}

		cfg, err := serverConfig()
		if err != nil {
			logger.WithError(err).Fatal("failed to load server config")
		}
		cfg.Port = ":" + strings.TrimPrefix(viper.GetString("server.port"), ":")
		cfg.Logger = logger

		var completer summarize.Completer
		if c, sumCfg, err := newCompleter(cmd.Context()); err != nil {
			logger.WithError(err).Warn("summarizer disabled")
		} else {
			completer = c
			cfg.SummaryMaxTokens = sumCfg.SummaryMaxTokens
			cfg.InsightsMaxTokens = sumCfg.InsightsMaxTokens
		}

		server := api.New(cfg, ext, completer)
		if err := server.Start(); err != nil {
			logger.WithError(err).Fatal("failed to start server")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "8080", "Port to run the API server on")
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}
