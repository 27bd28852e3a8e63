package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/aqlanhadi/stmtsense/extractor"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	rootCmd = &cobra.Command{
		Use:   "stmtsense [filename]",
		Short: "Extract transactions from bank and mobile-money statements",
		Long: `stmtsense reads PDF, CSV and XLSX statements, detects the bank format,
and prints the transactions as normalized JSON.`,
		Args: cobra.ArbitraryArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 1 {
				viper.Set("target", args[0])
				handler(extractCmd, []string{})
				return
			}
			cmd.Help()
		},
	}
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default is ./.stmtsense.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogging() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05"})
	if !verbose {
		log.SetOutput(io.Discard)
		return
	}
	log.SetOutput(os.Stderr)
	log.SetLevel(log.DebugLevel)
}

func initConfig() {
	// A missing .env is normal; keys may come from the environment.
	_ = godotenv.Load()

	setDefaults()

	// Built-in profiles first, so a config file only has to carry overrides.
	viper.SetConfigType("yaml")
	if err := viper.ReadConfig(bytes.NewReader(extractor.DefaultConfigYAML)); err != nil {
		fmt.Printf("Error loading embedded configuration: %v\n", err)
		os.Exit(1)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigName(".stmtsense")
	}

	viper.AutomaticEnv()
	viper.BindEnv("summarizer.cerebras.api_key", "CEREBRAS_API_KEY")
	viper.BindEnv("summarizer.gemini.api_key", "GEMINI_API_KEY")
	viper.BindEnv("summarizer.provider", "STMTSENSE_PROVIDER")

	if err := viper.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}
