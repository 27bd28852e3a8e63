package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aqlanhadi/stmtsense/extractor"
	"github.com/aqlanhadi/stmtsense/extractor/common"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var statementExtensions = map[string]bool{
	".pdf":  true,
	".csv":  true,
	".xlsx": true,
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extracts statement(s)",
	Long: `Extracts a given statement or every statement in a directory.
The bank format is detected from the file name and contents unless
--profile names it.`,
	Run: handler,
}

func handler(cmd *cobra.Command, args []string) {
	target := viper.GetString("target")

	ext, err := newExtractor()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading extraction config: %v\n", err)
		os.Exit(1)
	}

	opts := extractOptions{
		profile:         common.ProfileID(viper.GetString("profile")),
		transactionOnly: viper.GetBool("transaction_only"),
		textOnly:        viper.GetBool("text_only"),
	}

	output, err := executeAgainstPath(cmd.Context(), ext, target, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	asJSON, _ := json.Marshal(output)
	fmt.Println(string(asJSON))
}

type extractOptions struct {
	profile         common.ProfileID
	transactionOnly bool
	textOnly        bool
}

// executeAgainstPath extracts one file, or every statement file directly in
// a directory. Directory results skip files that yield nothing.
func executeAgainstPath(ctx context.Context, ext *extractor.Extractor, path string, opts extractOptions) (interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		log.WithField("path", path).Info("scanning file")
		return processFile(ctx, ext, path, opts)
	}

	log.WithField("path", path).Info("scanning directory")
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	result := []interface{}{}
	for _, e := range entries {
		if e.IsDir() || !statementExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}

		output, err := processFile(ctx, ext, filepath.Join(path, e.Name()), opts)
		if err != nil {
			log.WithFields(log.Fields{"file": e.Name(), "error": err}).Warn("skipping file")
			continue
		}
		if _, empty := output.(struct{}); empty {
			continue
		}
		result = append(result, output)
	}
	return result, nil
}

func processFile(ctx context.Context, ext *extractor.Extractor, path string, opts extractOptions) (interface{}, error) {
	if opts.textOnly {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		text, err := ext.Text(common.Document{Data: data, Filename: path})
		if err != nil {
			return nil, err
		}
		return map[string]string{"filename": filepath.Base(path), "text": text}, nil
	}

	statement, err := ext.ProcessFile(ctx, path, opts.profile)
	if err != nil {
		return nil, err
	}
	if !statement.Found() {
		return struct{}{}, nil
	}
	return extractor.CreateFinalOutput(statement, opts.transactionOnly, false), nil
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("file", "f", ".", "Statement file, or a directory of statements")
	extractCmd.Flags().Bool("transaction-only", false, "Print only the transaction list")
	extractCmd.Flags().Bool("text-only", false, "Print the extracted text instead of transactions")
	extractCmd.Flags().String("profile", "", "Bank profile to use instead of detection (mpesa, equity, kcb, generic)")

	viper.BindPFlag("target", extractCmd.Flags().Lookup("file"))
	viper.BindPFlag("transaction_only", extractCmd.Flags().Lookup("transaction-only"))
	viper.BindPFlag("text_only", extractCmd.Flags().Lookup("text-only"))
	viper.BindPFlag("profile", extractCmd.Flags().Lookup("profile"))
}
