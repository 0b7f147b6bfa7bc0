// Package fingerprint computes the stable identity used to deduplicate
// transactions across repeated imports. The digest is a pure function of
// the transaction's defining fields and is decoupled from any store
// implementation; every store must honor the same contract.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"faturas/internal/models"
)

// Compute returns the hex digest of the canonical identity tuple. Two
// transactions with equal date, normalized description, value, issuer and
// card origin are considered the same real-world event.
func Compute(date, description string, value float64, issuer, cardOrigin string) string {
	canonical := strings.Join([]string{
		date,
		description,
		strconv.FormatFloat(value, 'f', 2, 64),
		issuer,
		cardOrigin,
	}, "|")

	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// Stamp fills the transaction's fingerprint from its current fields.
func Stamp(t *models.Transaction) {
	t.Fingerprint = Compute(t.Date, t.Description, t.Value, t.Issuer, t.CardOrigin)
}
