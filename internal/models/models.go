package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// IssuerUnknown is reported when no issuer profile matches a document.
const IssuerUnknown = "desconhecido"

// Transaction is one normalized statement line. JSON field names follow
// the export contract consumed by the web and CLI layers.
type Transaction struct {
	Date               string  `json:"data"` // DD/MM/YYYY
	Description        string  `json:"descricao"`
	RawDescription     string  `json:"-"`
	Value              float64 `json:"valor"`
	Installment        string  `json:"parcelado"` // "Sim" or "Não"
	InstallmentCurrent *int    `json:"parcela_atual"`
	InstallmentTotal   *int    `json:"parcela_total"`
	InstallmentAnomaly bool    `json:"anomalia_parcela,omitempty"`
	Category           string  `json:"categoria"`
	Issuer             string  `json:"banco"`
	CardOrigin         string  `json:"origem_cartao,omitempty"`
	Fingerprint        string  `json:"transaction_hash,omitempty"`
	ImportedAt         string  `json:"data_importacao,omitempty"`
	ImportID           string  `json:"-"`
}

// IsInstallment reports whether the transaction is part of an installment plan.
func (t *Transaction) IsInstallment() bool {
	return t.Installment == "Sim"
}

// MonthKey returns the YYYY-MM key for the transaction date, or an error
// when the stored date is not DD/MM/YYYY.
func (t *Transaction) MonthKey() (string, error) {
	parts := strings.Split(t.Date, "/")
	if len(parts) != 3 {
		return "", fmt.Errorf("invalid date %q", t.Date)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return "", fmt.Errorf("invalid month in date %q", t.Date)
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", fmt.Errorf("invalid year in date %q", t.Date)
	}
	return fmt.Sprintf("%04d-%02d", year, month), nil
}

// DefectSummary accumulates non-fatal parse defects for one document.
// Defects are counted, never raised: a document with defects still
// yields its well-formed transactions.
type DefectSummary struct {
	SkippedLines         int `json:"linhas_ignoradas"`
	DateDefects          int `json:"erros_data"`
	ValueDefects         int `json:"erros_valor"`
	InstallmentAnomalies int `json:"anomalias_parcela"`
}

// Total returns the number of dropped candidates (anomalies are kept).
func (d DefectSummary) Total() int {
	return d.DateDefects + d.ValueDefects
}

// AnalysisResult is the per-document output contract.
type AnalysisResult struct {
	Issuer       string        `json:"banco_detectado"`
	Total        int           `json:"total_transacoes"`
	Transactions []Transaction `json:"transacoes"`
	Defects      DefectSummary `json:"defeitos"`
	Warning      string        `json:"aviso,omitempty"`
}

// MonthBucket is the derived aggregation for one calendar month. Buckets
// are transient query results, recomputed on every request.
type MonthBucket struct {
	MonthName   string             `json:"month_name"`
	Categories  map[string]float64 `json:"categories"`
	Total       float64            `json:"total"`
	Count       int                `json:"total_transacoes"`
	Percentages map[string]float64 `json:"percentuais,omitempty"`
}

// ComparisonReport is the monthly comparison output contract.
type ComparisonReport struct {
	MonthlyBreakdown map[string]*MonthBucket `json:"monthly_breakdown"`
	CategoryTotals   map[string]float64      `json:"category_totals"`
	Months           []string                `json:"months"`
	Categories       []string                `json:"categories"`
	Trend            string                  `json:"trend,omitempty"`
}

// ImportRun records one statement import for bookkeeping.
type ImportRun struct {
	ID         string     `json:"import_id"`
	Filename   string     `json:"filename"`
	Issuer     string     `json:"banco"`
	CardOrigin string     `json:"origem_cartao"`
	Status     string     `json:"status"` // running, success, failed
	Inserted   int        `json:"inseridas"`
	Duplicates int        `json:"duplicadas"`
	Defects    int        `json:"defeitos"`
	Error      string     `json:"erro,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Job is a queued background task.
type Job struct {
	ID          int64      `json:"id"`
	JobType     string     `json:"job_type"`
	Payload     string     `json:"-"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	Result      string     `json:"result"`
	Attempts    int        `json:"attempts"`
	MaxAttempts int        `json:"max_attempts"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
