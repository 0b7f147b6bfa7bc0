package parser

import (
	"time"

	"faturas/internal/categorize"
	"faturas/internal/models"
	"faturas/internal/profile"
)

// WarnUnknownIssuer is attached to results for documents whose issuer
// signature matched no profile.
const WarnUnknownIssuer = "banco não reconhecido"

// Options control one analysis pass.
type Options struct {
	// ReferenceYear completes dates whose issuer layout omits the year.
	// Zero means the current processing year.
	ReferenceYear int

	// Issuer forces a profile by id, bypassing detection. Empty means
	// detect from the text.
	Issuer string

	// Rules overrides the issuer's category rules with a global ordered
	// list. Nil keeps the issuer defaults.
	Rules []categorize.Rule

	// DefaultCategory overrides the fallback label. Empty keeps the
	// standard fallback.
	DefaultCategory string
}

// Analyze runs the full parsing pipeline over extracted statement text:
// issuer detection, line matching, field normalization and category
// classification. Per-line and per-candidate defects are accumulated in
// the result summary; they never abort an otherwise successful document.
// An unrecognized issuer yields a well-formed empty result with a
// warning, not an error.
func Analyze(text string, opts Options) *models.AnalysisResult {
	result := &models.AnalysisResult{
		Issuer:       models.IssuerUnknown,
		Transactions: make([]models.Transaction, 0),
	}

	prof := resolveProfile(text, opts.Issuer)
	if prof == nil {
		result.Warning = WarnUnknownIssuer
		return result
	}
	result.Issuer = prof.ID

	refYear := opts.ReferenceYear
	if refYear == 0 {
		refYear = time.Now().Year()
	}

	cat := prof.Categorizer()
	if opts.Rules != nil {
		cat = categorize.New(opts.Rules, opts.DefaultCategory)
	} else if opts.DefaultCategory != "" {
		cat = categorize.New(prof.Categories, opts.DefaultCategory)
	}

	matcher := NewLineMatcher(text, prof)
	for {
		capture, ok := matcher.Next()
		if !ok {
			break
		}

		date, err := ParseDate(capture.Date, prof.DateLayout, prof.HasYear, refYear)
		if err != nil {
			result.Defects.DateDefects++
			continue
		}

		value, err := ParseValue(capture.Value)
		if err != nil {
			result.Defects.ValueDefects++
			continue
		}

		txn := models.Transaction{
			Date:           date.Format(DateFormat),
			RawDescription: capture.Description,
			Value:          value,
			Installment:    "Não",
			Issuer:         prof.ID,
		}

		if inst, ok := ParseInstallment(capture.Description, prof.Installment); ok {
			txn.Installment = "Sim"
			current, total := inst.Current, inst.Total
			txn.InstallmentCurrent = &current
			txn.InstallmentTotal = &total
			if inst.Anomalous() {
				txn.InstallmentAnomaly = true
				result.Defects.InstallmentAnomalies++
			}
		}

		txn.Description = NormalizeDescription(capture.Description, prof.Installment)
		txn.Category = cat.Categorize(txn.Description)

		result.Transactions = append(result.Transactions, txn)
	}

	result.Defects.SkippedLines = matcher.Skipped()
	result.Total = len(result.Transactions)
	return result
}

func resolveProfile(text, forced string) *profile.Profile {
	if forced != "" {
		if p, ok := profile.ByID(forced); ok {
			return p
		}
		return nil
	}
	p, ok := profile.Detect(text)
	if !ok {
		return nil
	}
	return p
}
