package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"faturas/internal/extract"
	"faturas/internal/fingerprint"
	"faturas/internal/parser"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <statement.pdf|statement.txt>",
	Short: "Analyze one statement and print its transactions as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := parserOptions()
		if err != nil {
			return err
		}

		text, err := extractFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		result := parser.Analyze(text, opts)
		for i := range result.Transactions {
			result.Transactions[i].CardOrigin = cardOrigin
			fingerprint.Stamp(&result.Transactions[i])
		}

		return printJSON(result)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

// extractFile dispatches on the file extension: PDFs go through
// pdftotext, anything else is read as plain text.
func extractFile(ctx context.Context, path string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var extractor extract.Extractor = extract.Plain{}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		extractor = extract.PDFToText{}
	}
	text, err := extractor.Extract(ctx, path)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", path, err)
	}
	return text, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
