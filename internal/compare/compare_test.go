package compare

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faturas/internal/models"
)

func txn(date, category string, value float64) models.Transaction {
	return models.Transaction{
		Date:        date,
		Description: "DESC",
		Value:       value,
		Installment: "Não",
		Category:    category,
		Issuer:      "nubank",
	}
}

func TestBuildMergesMonthsAcrossDocuments(t *testing.T) {
	// Transactions from two statements landing in the same months.
	transactions := []models.Transaction{
		txn("15/01/2024", "alimentacao", 100.00),
		txn("20/01/2024", "transporte", 50.00),
		txn("10/02/2024", "alimentacao", 80.00),
		txn("28/01/2024", "alimentacao", 20.00),
	}

	report, err := Build(transactions, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-01", "2024-02"}, report.Months)

	jan := report.MonthlyBreakdown["2024-01"]
	require.NotNil(t, jan)
	assert.Equal(t, "January/2024", jan.MonthName)
	assert.InDelta(t, 170.00, jan.Total, 0.001)
	assert.Equal(t, 3, jan.Count)
	assert.InDelta(t, 120.00, jan.Categories["alimentacao"], 0.001)
	assert.InDelta(t, 50.00, jan.Categories["transporte"], 0.001)

	feb := report.MonthlyBreakdown["2024-02"]
	require.NotNil(t, feb)
	assert.Equal(t, "February/2024", feb.MonthName)
	assert.InDelta(t, 80.00, feb.Total, 0.001)

	assert.Equal(t, []string{"alimentacao", "transporte"}, report.Categories)
	assert.InDelta(t, 200.00, report.CategoryTotals["alimentacao"], 0.001)
}

func TestBuildConservation(t *testing.T) {
	var transactions []models.Transaction
	for month := 1; month <= 4; month++ {
		for i := 0; i < 10; i++ {
			cat := "alimentacao"
			if i%2 == 0 {
				cat = "compras"
			}
			transactions = append(transactions,
				txn(fmt.Sprintf("%02d/%02d/2024", i+1, month), cat, 10.37+float64(i)))
		}
	}

	report, err := Build(transactions, Options{})
	require.NoError(t, err)

	var monthSum, categorySum float64
	for _, bucket := range report.MonthlyBreakdown {
		monthSum += bucket.Total
	}
	for _, v := range report.CategoryTotals {
		categorySum += v
	}

	// Both views describe the same money within rounding tolerance.
	assert.InDelta(t, monthSum, categorySum, 0.5)
}

func TestBuildOmitsEmptyMonths(t *testing.T) {
	transactions := []models.Transaction{
		txn("15/01/2024", "alimentacao", 100.00),
		txn("15/03/2024", "alimentacao", 100.00),
	}

	report, err := Build(transactions, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-01", "2024-03"}, report.Months)
	assert.NotContains(t, report.MonthlyBreakdown, "2024-02")
}

func TestBuildPercentages(t *testing.T) {
	transactions := []models.Transaction{
		txn("15/01/2024", "alimentacao", 75.00),
		txn("16/01/2024", "transporte", 25.00),
	}

	report, err := Build(transactions, Options{})
	require.NoError(t, err)

	jan := report.MonthlyBreakdown["2024-01"]
	require.NotNil(t, jan)
	assert.InDelta(t, 75.0, jan.Percentages["alimentacao"], 0.001)
	assert.InDelta(t, 25.0, jan.Percentages["transporte"], 0.001)
}

func TestBuildExplicitWindow(t *testing.T) {
	transactions := []models.Transaction{
		txn("15/01/2024", "alimentacao", 100.00),
		txn("15/02/2024", "alimentacao", 200.00),
		txn("15/03/2024", "alimentacao", 300.00),
	}

	report, err := Build(transactions, Options{Months: []string{"2024-02", "2024-03"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-02", "2024-03"}, report.Months)
	assert.InDelta(t, 500.00, report.CategoryTotals["alimentacao"], 0.001)
}

func TestBuildWindowValidation(t *testing.T) {
	_, err := Build(nil, Options{Months: []string{"2024-13"}})
	assert.Error(t, err)

	_, err = Build(nil, Options{Months: []string{"jan/2024"}})
	assert.Error(t, err)

	seven := []string{"2024-01", "2024-02", "2024-03", "2024-04", "2024-05", "2024-06", "2024-07"}
	_, err = Build(nil, Options{Months: seven})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds limit")
}

func TestBuildCapsAtMostRecentSixMonths(t *testing.T) {
	var transactions []models.Transaction
	for month := 1; month <= 8; month++ {
		transactions = append(transactions,
			txn(fmt.Sprintf("15/%02d/2024", month), "alimentacao", 100.00))
	}

	report, err := Build(transactions, Options{})
	require.NoError(t, err)

	require.Len(t, report.Months, MaxWindowMonths)
	assert.Equal(t, "2024-03", report.Months[0])
	assert.Equal(t, "2024-08", report.Months[len(report.Months)-1])
	// Dropped months also leave the category totals.
	assert.InDelta(t, 600.00, report.CategoryTotals["alimentacao"], 0.001)
}

func TestBuildCardOriginFilter(t *testing.T) {
	personal := txn("15/01/2024", "alimentacao", 100.00)
	personal.CardOrigin = "pessoal"
	company := txn("16/01/2024", "alimentacao", 900.00)
	company.CardOrigin = "empresa"

	report, err := Build([]models.Transaction{personal, company}, Options{CardOrigin: "pessoal"})
	require.NoError(t, err)

	assert.InDelta(t, 100.00, report.CategoryTotals["alimentacao"], 0.001)
}

func TestTrend(t *testing.T) {
	build := func(totals ...float64) *models.ComparisonReport {
		var transactions []models.Transaction
		for i, total := range totals {
			transactions = append(transactions,
				txn(fmt.Sprintf("15/%02d/2024", i+1), "alimentacao", total))
		}
		report, err := Build(transactions, Options{})
		require.NoError(t, err)
		return report
	}

	assert.Equal(t, TrendIncreasing, build(100, 100, 100, 200, 200, 200).Trend)
	assert.Equal(t, TrendDecreasing, build(200, 200, 200, 100, 100, 100).Trend)
	assert.Equal(t, TrendStable, build(100, 101, 99, 100, 102, 98).Trend)
	assert.Equal(t, TrendStable, build(100, 104).Trend)
	assert.Equal(t, "", build(100).Trend, "single month is inconclusive")
}

func TestBuildEmptyInput(t *testing.T) {
	report, err := Build(nil, Options{})
	require.NoError(t, err)

	assert.Empty(t, report.Months)
	assert.Empty(t, report.Categories)
	assert.Empty(t, report.Trend)
}
