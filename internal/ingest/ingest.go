// Package ingest runs the import pipeline: analyze extracted text,
// stamp identity, and insert transactions through the deduplicating
// store. Up to six documents are processed in parallel; each document is
// independent and its failure never blocks the others.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"faturas/internal/fingerprint"
	"faturas/internal/models"
	"faturas/internal/parser"
	"faturas/internal/store"
)

// MaxBatchDocuments bounds one comparison import request.
const MaxBatchDocuments = 6

// Document is one statement to import. Err carries a failure from the
// extraction boundary; such documents are reported individually and
// excluded from parsing.
type Document struct {
	Name       string
	Text       string
	CardOrigin string
	Err        error
}

// DocumentResult summarizes the import of one document. Transactions
// holds everything the document parsed to, duplicates included; Inserted
// and Duplicates split that total by what the store actually kept.
// A duplicate is an expected outcome, not a failure.
type DocumentResult struct {
	Name         string               `json:"arquivo"`
	ImportID     string               `json:"import_id,omitempty"`
	Issuer       string               `json:"banco_detectado"`
	Total        int                  `json:"total_transacoes"`
	Inserted     int                  `json:"inseridas"`
	Duplicates   int                  `json:"duplicadas"`
	Defects      models.DefectSummary `json:"defeitos"`
	Transactions []models.Transaction `json:"transacoes,omitempty"`
	Warning      string               `json:"aviso,omitempty"`
	Err          error                `json:"-"`
	Error        string               `json:"erro,omitempty"`
}

// Importer runs imports against a transaction store.
type Importer struct {
	store store.Store
	log   *slog.Logger
	opts  parser.Options
}

// New creates an Importer. Parser options apply to every document.
func New(s store.Store, log *slog.Logger, opts parser.Options) *Importer {
	return &Importer{store: s, log: log, opts: opts}
}

// ImportText analyzes one document's extracted text and persists its
// transactions via insert-if-absent.
func (im *Importer) ImportText(ctx context.Context, doc Document) DocumentResult {
	result := DocumentResult{
		Name:   doc.Name,
		Issuer: models.IssuerUnknown,
	}

	if doc.Err != nil {
		result.Err = doc.Err
		result.Error = doc.Err.Error()
		im.log.Warn("document_extraction_failed", "document", doc.Name, "error", doc.Err.Error())
		return result
	}

	analysis := parser.Analyze(doc.Text, im.opts)
	result.Issuer = analysis.Issuer
	result.Total = analysis.Total
	result.Defects = analysis.Defects
	result.Warning = analysis.Warning

	importID := uuid.NewString()
	result.ImportID = importID
	importedAt := time.Now().Format(time.RFC3339)

	for i := range analysis.Transactions {
		txn := analysis.Transactions[i]
		txn.CardOrigin = doc.CardOrigin
		txn.ImportID = importID
		txn.ImportedAt = importedAt
		fingerprint.Stamp(&txn)

		inserted, err := im.store.InsertIfAbsent(&txn)
		if err != nil {
			result.Err = fmt.Errorf("insert %s: %w", txn.Fingerprint[:8], err)
			result.Error = result.Err.Error()
			return result
		}
		if inserted {
			result.Inserted++
		} else {
			result.Duplicates++
		}
		result.Transactions = append(result.Transactions, txn)
	}

	im.log.Info("document_imported",
		"document", doc.Name,
		"issuer", result.Issuer,
		"inserted", result.Inserted,
		"duplicates", result.Duplicates,
		"skipped_lines", result.Defects.SkippedLines,
		"dropped", result.Defects.Total(),
	)
	return result
}

// ImportBatch imports up to MaxBatchDocuments documents concurrently.
// The parsing stages are pure and share no mutable state; the store's
// insert-if-absent contract serializes identity collisions. Results keep
// the input order.
func (im *Importer) ImportBatch(ctx context.Context, docs []Document) ([]DocumentResult, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	if len(docs) > MaxBatchDocuments {
		return nil, fmt.Errorf("batch of %d documents exceeds limit of %d", len(docs), MaxBatchDocuments)
	}

	results := make([]DocumentResult, len(docs))
	var wg sync.WaitGroup
	for i := range docs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = im.ImportText(ctx, docs[i])
		}(i)
	}
	wg.Wait()

	return results, nil
}
