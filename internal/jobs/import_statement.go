package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"faturas/internal/extract"
	"faturas/internal/filestore"
	"faturas/internal/ingest"
	"faturas/internal/logger"
	"faturas/internal/models"
	"faturas/internal/parser"
	"faturas/internal/store"
)

// ImportStatementPayload is the JSON payload for import_statement jobs
type ImportStatementPayload struct {
	StoredFile    string `json:"stored_file"`
	Filename      string `json:"filename"`
	CardOrigin    string `json:"card_origin"`
	Issuer        string `json:"issuer,omitempty"`
	ReferenceYear int    `json:"reference_year,omitempty"`
}

// ImportStatementHandler creates a job handler that extracts a stored
// statement file, runs the import pipeline, and records the import run.
func ImportStatementHandler(files *filestore.Store, opts parser.Options) JobHandler {
	return func(ctx context.Context, job *models.Job, db *store.DB) error {
		var payload ImportStatementPayload
		if err := json.Unmarshal([]byte(job.Payload), &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}

		l := logger.FromContext(ctx).With("job_id", job.ID, "file", payload.Filename)

		var extractor extract.Extractor = extract.Plain{}
		if strings.EqualFold(filepath.Ext(payload.Filename), ".pdf") {
			extractor = extract.PDFToText{}
		}

		text, err := extractor.Extract(ctx, files.FullPath(payload.StoredFile))
		if err != nil {
			return fmt.Errorf("extract %s: %w", payload.Filename, err)
		}
		db.UpdateJobProgress(job.ID, 30)

		docOpts := opts
		docOpts.Issuer = payload.Issuer
		if payload.ReferenceYear != 0 {
			docOpts.ReferenceYear = payload.ReferenceYear
		}

		importer := ingest.New(db, l, docOpts)
		res := importer.ImportText(ctx, ingest.Document{
			Name:       payload.Filename,
			Text:       text,
			CardOrigin: payload.CardOrigin,
		})
		db.UpdateJobProgress(job.ID, 80)

		if err := db.CreateImportRun(res.ImportID, payload.Filename, payload.CardOrigin); err != nil {
			return fmt.Errorf("record import run: %w", err)
		}
		if res.Err != nil {
			db.FailImportRun(res.ImportID, res.Err.Error())
			return fmt.Errorf("import %s: %w", payload.Filename, res.Err)
		}
		if err := db.FinishImportRun(res.ImportID, res.Issuer, res.Inserted, res.Duplicates, res.Defects.Total()); err != nil {
			return fmt.Errorf("finish import run: %w", err)
		}

		// The stored upload is no longer needed once imported.
		if err := files.Delete(payload.StoredFile); err != nil {
			l.Warn("stored_file_cleanup_failed", "error", err.Error())
		}

		resultJSON, _ := json.Marshal(map[string]any{
			"import_id":  res.ImportID,
			"issuer":     res.Issuer,
			"inserted":   res.Inserted,
			"duplicates": res.Duplicates,
			"defects":    res.Defects,
			"warning":    res.Warning,
		})
		return db.CompleteJob(job.ID, string(resultJSON))
	}
}
