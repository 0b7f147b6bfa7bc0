package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faturas/internal/fingerprint"
	"faturas/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Init())
	return db
}

func testTransaction(date, description string, value float64) models.Transaction {
	txn := models.Transaction{
		Date:        date,
		Description: description,
		Value:       value,
		Installment: "Não",
		Category:    "outros",
		Issuer:      "nubank",
		CardOrigin:  "pessoal",
		ImportID:    "imp-1",
		ImportedAt:  "2024-02-01T10:00:00Z",
	}
	fingerprint.Stamp(&txn)
	return txn
}

// Both implementations must honor the same contract.
func storeImplementations(t *testing.T) map[string]Store {
	return map[string]Store{
		"sqlite": openTestDB(t),
		"memory": NewMemory(),
	}
}

func TestInsertIfAbsent(t *testing.T) {
	for name, s := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			txn := testTransaction("15/01/2024", "UBER TRIP", 25.50)

			inserted, err := s.InsertIfAbsent(&txn)
			require.NoError(t, err)
			assert.True(t, inserted)

			// Same fingerprint again is a duplicate, not an error.
			inserted, err = s.InsertIfAbsent(&txn)
			require.NoError(t, err)
			assert.False(t, inserted)

			all, err := s.Query(Filter{})
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}
}

func TestInsertIfAbsentRejectsUnstamped(t *testing.T) {
	for name, s := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			txn := testTransaction("15/01/2024", "LOJA", 10.0)
			txn.Fingerprint = ""
			_, err := s.InsertIfAbsent(&txn)
			assert.Error(t, err)
		})
	}
}

func TestQueryFilters(t *testing.T) {
	for name, s := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			jan := testTransaction("15/01/2024", "UBER TRIP", 25.50)
			feb := testTransaction("10/02/2024", "RESTAURANTE", 80.00)
			other := testTransaction("12/02/2024", "FARMACIA", 30.00)
			other.CardOrigin = "empresa"
			other.Issuer = "itau"
			fingerprint.Stamp(&other)

			for _, txn := range []models.Transaction{feb, jan, other} {
				txn := txn
				_, err := s.InsertIfAbsent(&txn)
				require.NoError(t, err)
			}

			byMonth, err := s.Query(Filter{Months: []string{"2024-01"}})
			require.NoError(t, err)
			require.Len(t, byMonth, 1)
			assert.Equal(t, "UBER TRIP", byMonth[0].Description)

			byOrigin, err := s.Query(Filter{CardOrigin: "empresa"})
			require.NoError(t, err)
			require.Len(t, byOrigin, 1)
			assert.Equal(t, "FARMACIA", byOrigin[0].Description)

			byIssuer, err := s.Query(Filter{Issuer: "nubank"})
			require.NoError(t, err)
			assert.Len(t, byIssuer, 2)

			limited, err := s.Query(Filter{Limit: 2})
			require.NoError(t, err)
			assert.Len(t, limited, 2)

			// Results come back ordered by month.
			all, err := s.Query(Filter{})
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, "15/01/2024", all[0].Date)
		})
	}
}

func TestUpdateCategoryAndRemove(t *testing.T) {
	for name, s := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			txn := testTransaction("15/01/2024", "PADARIA", 12.00)
			_, err := s.InsertIfAbsent(&txn)
			require.NoError(t, err)

			updated, err := s.UpdateCategory(txn.Fingerprint, "alimentacao")
			require.NoError(t, err)
			assert.True(t, updated)

			got, err := s.GetByFingerprint(txn.Fingerprint)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "alimentacao", got.Category)
			// Identity fields are untouched by recategorization.
			assert.Equal(t, txn.Fingerprint, got.Fingerprint)

			updated, err = s.UpdateCategory("nao-existe", "qualquer")
			require.NoError(t, err)
			assert.False(t, updated)

			removed, err := s.Remove(txn.Fingerprint)
			require.NoError(t, err)
			assert.True(t, removed)

			got, err = s.GetByFingerprint(txn.Fingerprint)
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestRemoveAll(t *testing.T) {
	for name, s := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			for _, d := range []string{"A", "B", "C"} {
				txn := testTransaction("15/01/2024", d, 10.00)
				_, err := s.InsertIfAbsent(&txn)
				require.NoError(t, err)
			}

			count, err := s.RemoveAll()
			require.NoError(t, err)
			assert.Equal(t, int64(3), count)

			all, err := s.Query(Filter{})
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestSQLiteRoundTripPreservesInstallments(t *testing.T) {
	db := openTestDB(t)

	current, total := 2, 6
	txn := testTransaction("15/01/2024", "LOJA PARCELADA", 100.00)
	txn.Installment = "Sim"
	txn.InstallmentCurrent = &current
	txn.InstallmentTotal = &total
	txn.InstallmentAnomaly = false
	fingerprint.Stamp(&txn)

	_, err := db.InsertIfAbsent(&txn)
	require.NoError(t, err)

	got, err := db.GetByFingerprint(txn.Fingerprint)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Sim", got.Installment)
	require.NotNil(t, got.InstallmentCurrent)
	assert.Equal(t, 2, *got.InstallmentCurrent)
	require.NotNil(t, got.InstallmentTotal)
	assert.Equal(t, 6, *got.InstallmentTotal)
	assert.False(t, got.InstallmentAnomaly)
}

func TestImportRunLifecycle(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.CreateImportRun("imp-1", "fatura.pdf", "pessoal"))
	require.NoError(t, db.FinishImportRun("imp-1", "nubank", 10, 2, 1))

	require.NoError(t, db.CreateImportRun("imp-2", "quebrada.pdf", ""))
	require.NoError(t, db.FailImportRun("imp-2", "no extractable text layer"))

	runs, err := db.ListImportRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	byID := map[string]models.ImportRun{}
	for _, r := range runs {
		byID[r.ID] = r
	}
	assert.Equal(t, "success", byID["imp-1"].Status)
	assert.Equal(t, 10, byID["imp-1"].Inserted)
	assert.Equal(t, 2, byID["imp-1"].Duplicates)
	assert.Equal(t, "failed", byID["imp-2"].Status)
	assert.Contains(t, byID["imp-2"].Error, "text layer")
}

func TestJobLifecycle(t *testing.T) {
	db := openTestDB(t)

	id, err := db.CreateJob("import_statement", map[string]string{"filename": "fatura.pdf"})
	require.NoError(t, err)

	job, err := db.ClaimNextJob()
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, id, job.ID)
	assert.Equal(t, "running", job.Status)
	assert.Equal(t, 1, job.Attempts)

	// Queue is empty while the job is running.
	next, err := db.ClaimNextJob()
	require.NoError(t, err)
	assert.Nil(t, next)

	require.NoError(t, db.UpdateJobProgress(id, 50))
	require.NoError(t, db.CompleteJob(id, `{"inserted":3}`))

	done, err := db.GetJob(id)
	require.NoError(t, err)
	require.NotNil(t, done)
	assert.Equal(t, "completed", done.Status)
	assert.Equal(t, 100, done.Progress)
	assert.Contains(t, done.Result, "inserted")
	assert.NotNil(t, done.CompletedAt)
}

func TestJobRetryThenFail(t *testing.T) {
	db := openTestDB(t)

	id, err := db.CreateJob("import_statement", map[string]string{})
	require.NoError(t, err)

	job, err := db.ClaimNextJob()
	require.NoError(t, err)
	require.NotNil(t, job)

	require.NoError(t, db.RetryJob(id))
	job, err = db.ClaimNextJob()
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, 2, job.Attempts)

	require.NoError(t, db.FailJob(id, "pdftotext failed"))
	failed, err := db.GetJob(id)
	require.NoError(t, err)
	assert.Equal(t, "failed", failed.Status)
	assert.Equal(t, "pdftotext failed", failed.Result)
}
