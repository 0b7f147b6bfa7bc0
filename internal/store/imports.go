package store

import (
	"database/sql"
	"fmt"
	"time"

	"faturas/internal/models"
)

// CreateImportRun records the start of a statement import.
func (db *DB) CreateImportRun(id, filename, cardOrigin string) error {
	_, err := db.Exec(`
		INSERT INTO imports (import_id, filename, card_origin, status, started_at)
		VALUES (?, ?, ?, 'running', ?)
	`, id, filename, cardOrigin, time.Now())
	if err != nil {
		return fmt.Errorf("insert import run: %w", err)
	}
	return nil
}

// FinishImportRun marks an import run as succeeded with its counts.
func (db *DB) FinishImportRun(id, issuer string, inserted, duplicates, defects int) error {
	_, err := db.Exec(`
		UPDATE imports
		SET status = 'success', issuer = ?, inserted = ?, duplicates = ?, defects = ?, finished_at = ?
		WHERE import_id = ?
	`, issuer, inserted, duplicates, defects, time.Now(), id)
	if err != nil {
		return fmt.Errorf("finish import run: %w", err)
	}
	return nil
}

// FailImportRun marks an import run as failed.
func (db *DB) FailImportRun(id, errMsg string) error {
	const maxLen = 2000
	if len(errMsg) > maxLen {
		errMsg = errMsg[:maxLen]
	}
	_, err := db.Exec(`
		UPDATE imports
		SET status = 'failed', error_message = ?, finished_at = ?
		WHERE import_id = ?
	`, errMsg, time.Now(), id)
	if err != nil {
		return fmt.Errorf("fail import run: %w", err)
	}
	return nil
}

// ListImportRuns returns the most recent import runs.
func (db *DB) ListImportRuns(limit int) ([]models.ImportRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.DB.Query(`
		SELECT import_id, filename, issuer, card_origin, status,
			   inserted, duplicates, defects, error_message, started_at, finished_at
		FROM imports
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query import runs: %w", err)
	}
	defer rows.Close()

	var runs []models.ImportRun
	for rows.Next() {
		var r models.ImportRun
		var finishedAt sql.NullTime
		if err := rows.Scan(&r.ID, &r.Filename, &r.Issuer, &r.CardOrigin, &r.Status,
			&r.Inserted, &r.Duplicates, &r.Defects, &r.Error, &r.StartedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan import run: %w", err)
		}
		if finishedAt.Valid {
			r.FinishedAt = &finishedAt.Time
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
