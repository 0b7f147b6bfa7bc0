package export

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"faturas/internal/models"
)

func sampleReport() *models.ComparisonReport {
	return &models.ComparisonReport{
		MonthlyBreakdown: map[string]*models.MonthBucket{
			"2024-01": {
				MonthName:  "January/2024",
				Categories: map[string]float64{"alimentacao": 120.00, "transporte": 50.00},
				Total:      170.00,
				Count:      3,
			},
			"2024-02": {
				MonthName:  "February/2024",
				Categories: map[string]float64{"alimentacao": 80.00},
				Total:      80.00,
				Count:      1,
			},
		},
		CategoryTotals: map[string]float64{"alimentacao": 200.00, "transporte": 50.00},
		Months:         []string{"2024-01", "2024-02"},
		Categories:     []string{"alimentacao", "transporte"},
	}
}

func TestComparisonXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comparativo.xlsx")
	require.NoError(t, ComparisonXLSX(sampleReport(), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Comparativo")
	require.NoError(t, err)
	require.Len(t, rows, 4) // header, two months, grand total

	assert.Equal(t, []string{"Mês", "alimentacao", "transporte", "Total"}, rows[0])
	assert.Equal(t, "January/2024", rows[1][0])
	assert.Equal(t, "120", rows[1][1])
	assert.Equal(t, "170", rows[1][3])
	assert.Equal(t, "Total", rows[3][0])
	assert.Equal(t, "250", rows[3][3])
}

func TestTransactionsCSV(t *testing.T) {
	current, total := 2, 6
	transactions := []models.Transaction{
		{
			Date:        "15/01/2024",
			Description: "RESTAURANTE ABC",
			Value:       120.00,
			Installment: "Sim",
			InstallmentCurrent: &current,
			InstallmentTotal:   &total,
			Category:    "alimentacao",
			Issuer:      "nubank",
			CardOrigin:  "pessoal",
		},
		{
			Date:        "16/01/2024",
			Description: "UBER TRIP",
			Value:       25.50,
			Installment: "Não",
			Category:    "transporte",
			Issuer:      "nubank",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, TransactionsCSV(transactions, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"data", "descricao", "valor", "parcelado", "parcela_atual", "parcela_total", "categoria", "banco", "origem_cartao"}, records[0])
	assert.Equal(t, []string{"15/01/2024", "RESTAURANTE ABC", "120.00", "Sim", "2", "6", "alimentacao", "nubank", "pessoal"}, records[1])
	assert.Equal(t, "", records[2][4], "non-installment rows leave the pair empty")
}
