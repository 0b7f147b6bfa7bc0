package main

import (
	"github.com/spf13/cobra"

	"faturas/internal/compare"
	"faturas/internal/export"
	"faturas/internal/ingest"
	"faturas/internal/logger"
	"faturas/internal/store"
)

var (
	compareMonths []string
	compareXLSX   string
)

var compareCmd = &cobra.Command{
	Use:   "compare <statement...>",
	Short: "Compare monthly spending across up to six statements",
	Args:  cobra.RangeArgs(1, ingest.MaxBatchDocuments),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := parserOptions()
		if err != nil {
			return err
		}

		docs := make([]ingest.Document, len(args))
		for i, path := range args {
			text, err := extractFile(cmd.Context(), path)
			docs[i] = ingest.Document{Name: path, Text: text, CardOrigin: cardOrigin, Err: err}
		}

		// Batch comparison is ad hoc: dedup within the batch, persist nothing.
		mem := store.NewMemory()
		importer := ingest.New(mem, logger.Default(), opts)
		if _, err := importer.ImportBatch(cmd.Context(), docs); err != nil {
			return err
		}

		transactions, err := mem.Query(store.Filter{})
		if err != nil {
			return err
		}

		report, err := compare.Build(transactions, compare.Options{Months: compareMonths})
		if err != nil {
			return err
		}

		if compareXLSX != "" {
			if err := export.ComparisonXLSX(report, compareXLSX); err != nil {
				return err
			}
		}

		return printJSON(report)
	},
}

func init() {
	compareCmd.Flags().StringSliceVar(&compareMonths, "meses", nil, "restrict to YYYY-MM months (comma separated)")
	compareCmd.Flags().StringVar(&compareXLSX, "xlsx", "", "also write the report to this .xlsx file")
	rootCmd.AddCommand(compareCmd)
}
