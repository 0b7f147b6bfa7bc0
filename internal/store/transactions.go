package store

import (
	"database/sql"
	"fmt"
	"strings"

	"faturas/internal/models"
)

// Store is the persistence contract consumed by the import and
// comparison layers. Implementations must keep InsertIfAbsent atomic per
// fingerprint.
type Store interface {
	InsertIfAbsent(t *models.Transaction) (bool, error)
	Query(f Filter) ([]models.Transaction, error)
	GetByFingerprint(fingerprint string) (*models.Transaction, error)
	UpdateCategory(fingerprint, category string) (bool, error)
	Remove(fingerprint string) (bool, error)
	RemoveAll() (int64, error)
}

// Filter restricts a transaction query.
type Filter struct {
	Months     []string // YYYY-MM keys; empty means all
	CardOrigin string
	Issuer     string
	Limit      int
}

const transactionColumns = `fingerprint, date, month_key, description, raw_description, value,
	issuer, card_origin, category, is_installment, installment_current, installment_total,
	installment_anomaly, import_id, imported_at`

// InsertIfAbsent persists the transaction unless its fingerprint already
// exists. Returns true when a new row was inserted, false for a
// duplicate. The check and insert are a single statement, so two
// concurrent imports of the same transaction cannot both insert.
func (db *DB) InsertIfAbsent(t *models.Transaction) (bool, error) {
	if t.Fingerprint == "" {
		return false, fmt.Errorf("transaction has no fingerprint")
	}
	monthKey, err := t.MonthKey()
	if err != nil {
		return false, fmt.Errorf("derive month key: %w", err)
	}

	result, err := db.Exec(`
		INSERT OR IGNORE INTO transactions (
			fingerprint, date, month_key, description, raw_description, value,
			issuer, card_origin, category, is_installment, installment_current,
			installment_total, installment_anomaly, import_id, imported_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.Fingerprint, t.Date, monthKey, t.Description, t.RawDescription, t.Value,
		t.Issuer, t.CardOrigin, t.Category, boolToInt(t.IsInstallment()), t.InstallmentCurrent,
		t.InstallmentTotal, boolToInt(t.InstallmentAnomaly), t.ImportID, t.ImportedAt)
	if err != nil {
		return false, fmt.Errorf("insert transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected == 1, nil
}

// Query returns stored transactions matching the filter, ordered by month
// then insertion order.
func (db *DB) Query(f Filter) ([]models.Transaction, error) {
	var conditions []string
	var args []any

	if len(f.Months) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(f.Months)), ",")
		conditions = append(conditions, "month_key IN ("+placeholders+")")
		for _, m := range f.Months {
			args = append(args, m)
		}
	}
	if f.CardOrigin != "" {
		conditions = append(conditions, "card_origin = ?")
		args = append(args, f.CardOrigin)
	}
	if f.Issuer != "" {
		conditions = append(conditions, "issuer = ?")
		args = append(args, f.Issuer)
	}

	query := "SELECT " + transactionColumns + " FROM transactions"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY month_key, id"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := db.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *t)
	}
	return transactions, rows.Err()
}

// GetByFingerprint returns a single transaction, or nil when absent.
func (db *DB) GetByFingerprint(fingerprint string) (*models.Transaction, error) {
	row := db.QueryRow("SELECT "+transactionColumns+" FROM transactions WHERE fingerprint = ?", fingerprint)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateCategory replaces the category of the transaction with the given
// fingerprint. The fingerprint is a function of other fields only, so the
// identity is preserved. Returns false when no such transaction exists.
func (db *DB) UpdateCategory(fingerprint, category string) (bool, error) {
	result, err := db.Exec(`
		UPDATE transactions SET category = ? WHERE fingerprint = ?
	`, category, fingerprint)
	if err != nil {
		return false, fmt.Errorf("update category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected == 1, nil
}

// Remove deletes the transaction with the given fingerprint.
func (db *DB) Remove(fingerprint string) (bool, error) {
	result, err := db.Exec(`DELETE FROM transactions WHERE fingerprint = ?`, fingerprint)
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected == 1, nil
}

// RemoveAll purges every stored transaction and returns the count.
func (db *DB) RemoveAll() (int64, error) {
	result, err := db.Exec(`DELETE FROM transactions`)
	if err != nil {
		return 0, fmt.Errorf("delete transactions: %w", err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var t models.Transaction
	var monthKey string
	var isInstallment, anomaly int
	var current, total sql.NullInt64

	err := row.Scan(&t.Fingerprint, &t.Date, &monthKey, &t.Description, &t.RawDescription,
		&t.Value, &t.Issuer, &t.CardOrigin, &t.Category, &isInstallment, &current, &total,
		&anomaly, &t.ImportID, &t.ImportedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan transaction: %w", err)
	}

	t.Installment = "Não"
	if isInstallment == 1 {
		t.Installment = "Sim"
	}
	if current.Valid {
		v := int(current.Int64)
		t.InstallmentCurrent = &v
	}
	if total.Valid {
		v := int(total.Int64)
		t.InstallmentTotal = &v
	}
	t.InstallmentAnomaly = anomaly == 1
	return &t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
