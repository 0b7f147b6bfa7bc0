package main

import (
	"github.com/spf13/cobra"

	"faturas/internal/ingest"
	"faturas/internal/logger"
	"faturas/internal/store"
)

var importDB string

var importCmd = &cobra.Command{
	Use:   "import <statement...>",
	Short: "Import statements into the local database with deduplication",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := parserOptions()
		if err != nil {
			return err
		}

		db, err := store.Open(importDB)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Init(); err != nil {
			return err
		}

		importer := ingest.New(db, logger.Default(), opts)

		var results []ingest.DocumentResult
		for _, path := range args {
			text, err := extractFile(cmd.Context(), path)
			doc := ingest.Document{Name: path, Text: text, CardOrigin: cardOrigin, Err: err}
			res := importer.ImportText(cmd.Context(), doc)
			res.Transactions = nil // keep the summary compact
			results = append(results, res)
		}

		return printJSON(results)
	},
}

func init() {
	importCmd.Flags().StringVar(&importDB, "db", "./data/faturas.db", "path to the SQLite database")
	rootCmd.AddCommand(importCmd)
}
