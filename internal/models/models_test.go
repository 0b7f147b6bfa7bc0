package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthKey(t *testing.T) {
	txn := Transaction{Date: "15/01/2024"}
	key, err := txn.MonthKey()
	require.NoError(t, err)
	assert.Equal(t, "2024-01", key)

	for _, bad := range []string{"", "2024-01-15", "15/13/2024", "15/xx/2024"} {
		txn := Transaction{Date: bad}
		_, err := txn.MonthKey()
		assert.Error(t, err, bad)
	}
}

func TestIsInstallment(t *testing.T) {
	assert.True(t, (&Transaction{Installment: "Sim"}).IsInstallment())
	assert.False(t, (&Transaction{Installment: "Não"}).IsInstallment())
	assert.False(t, (&Transaction{}).IsInstallment())
}

func TestDefectSummaryTotal(t *testing.T) {
	d := DefectSummary{SkippedLines: 7, DateDefects: 2, ValueDefects: 1, InstallmentAnomalies: 3}
	// Anomalous installments are kept, so they don't count as dropped.
	assert.Equal(t, 3, d.Total())
}

func TestTransactionJSONContract(t *testing.T) {
	current, total := 2, 6
	txn := Transaction{
		Date:               "15/01/2024",
		Description:        "RESTAURANTE ABC",
		RawDescription:     "RESTAURANTE ABC 2/6",
		Value:              120.00,
		Installment:        "Sim",
		InstallmentCurrent: &current,
		InstallmentTotal:   &total,
		Category:           "alimentacao",
		Issuer:             "nubank",
		ImportID:           "interno",
	}

	data, err := json.Marshal(txn)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))

	assert.Equal(t, "15/01/2024", fields["data"])
	assert.Equal(t, "RESTAURANTE ABC", fields["descricao"])
	assert.Equal(t, "Sim", fields["parcelado"])
	assert.Equal(t, float64(2), fields["parcela_atual"])
	assert.Equal(t, "nubank", fields["banco"])
	// Internal bookkeeping never leaks into the contract.
	assert.NotContains(t, fields, "ImportID")
	assert.NotContains(t, fields, "RawDescription")
}
