// Package export renders comparison reports and transaction lists for
// the presentation layer as spreadsheets and CSV. Thin output glue; no
// aggregation happens here.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"faturas/internal/models"
)

// ComparisonWorkbook builds a monthly comparison workbook: one row per
// month, one column per category, plus a total column and a grand-total
// row. The caller owns the returned file and must Close it.
func ComparisonWorkbook(report *models.ComparisonReport) (*excelize.File, error) {
	f := excelize.NewFile()

	const sheet = "Comparativo"
	index, err := f.NewSheet(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	header := append([]string{"Mês"}, report.Categories...)
	header = append(header, "Total")
	if err := writeRow(f, sheet, 1, header); err != nil {
		f.Close()
		return nil, err
	}

	row := 2
	for _, monthKey := range report.Months {
		bucket := report.MonthlyBreakdown[monthKey]
		cells := []any{bucket.MonthName}
		for _, cat := range report.Categories {
			cells = append(cells, bucket.Categories[cat])
		}
		cells = append(cells, bucket.Total)
		if err := writeRowValues(f, sheet, row, cells); err != nil {
			f.Close()
			return nil, err
		}
		row++
	}

	totals := []any{"Total"}
	var grand float64
	for _, cat := range report.Categories {
		totals = append(totals, report.CategoryTotals[cat])
		grand += report.CategoryTotals[cat]
	}
	totals = append(totals, grand)
	if err := writeRowValues(f, sheet, row, totals); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

// ComparisonXLSX writes a monthly comparison report to an .xlsx file.
func ComparisonXLSX(report *models.ComparisonReport, path string) error {
	f, err := ComparisonWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save spreadsheet: %w", err)
	}
	return nil
}

// TransactionsCSV writes transactions as CSV with the export contract's
// field names.
func TransactionsCSV(transactions []models.Transaction, w io.Writer) error {
	cw := csv.NewWriter(w)

	header := []string{"data", "descricao", "valor", "parcelado", "parcela_atual", "parcela_total", "categoria", "banco", "origem_cartao"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i := range transactions {
		t := &transactions[i]
		record := []string{
			t.Date,
			t.Description,
			strconv.FormatFloat(t.Value, 'f', 2, 64),
			t.Installment,
			formatOptionalInt(t.InstallmentCurrent),
			formatOptionalInt(t.InstallmentTotal),
			t.Category,
			t.Issuer,
			t.CardOrigin,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return writeRowValues(f, sheet, row, cells)
}

func writeRowValues(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	return nil
}
