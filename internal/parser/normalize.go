package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateFormat is the canonical transaction date representation.
const DateFormat = "02/01/2006"

// Statements from BTG, Unicred and C6 abbreviate months in Portuguese.
var monthsPT = map[string]string{
	"jan": "Jan", "fev": "Feb", "mar": "Mar", "abr": "Apr",
	"mai": "May", "jun": "Jun", "jul": "Jul", "ago": "Aug",
	"set": "Sep", "out": "Oct", "nov": "Nov", "dez": "Dec",
}

// ParseDate parses a raw date token using the profile's layout. When the
// layout carries no year, refYear is appended before parsing. The result
// is rendered with DateFormat, so re-parsing an already canonical date
// yields the same value.
func ParseDate(raw, layout string, hasYear bool, refYear int) (time.Time, error) {
	token := strings.TrimSpace(raw)

	if strings.Contains(layout, "Jan") {
		token = translateMonth(token)
	}

	if !hasYear {
		sep := " "
		if strings.Contains(layout, "/") {
			sep = "/"
		}
		layout += sep + "2006"
		token += sep + strconv.Itoa(refYear)
	}

	t, err := time.Parse(layout, token)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return t, nil
}

// translateMonth maps a Portuguese month abbreviation inside the token to
// its English equivalent so time.Parse accepts it.
func translateMonth(token string) string {
	lower := strings.ToLower(token)
	for pt, en := range monthsPT {
		if strings.Contains(lower, pt) {
			return strings.Replace(lower, pt, en, 1)
		}
	}
	return token
}

// ParseValue converts a raw currency token to a non-negative value with
// 2-decimal precision. It strips the R$ symbol and resolves the Brazilian
// thousands/decimal separator convention (1.234,56) as well as plain
// comma or dot decimals.
//
// A dot-only token is always read as a plain decimal: "1.234" is 1.23,
// not 1234.00. Issuer statements write thousands only together with a
// comma decimal, so a bare dot is taken as a decimal point. Deliberate;
// don't "fix" it to a thousands separator.
func ParseValue(raw string) (float64, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.NewReplacer("R$", "", "r$", "", " ", "", " ", "").Replace(clean)

	hasComma := strings.Contains(clean, ",")
	hasDot := strings.Contains(clean, ".")
	switch {
	case hasComma && hasDot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	case hasComma:
		clean = strings.Replace(clean, ",", ".", 1)
	}

	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("parse value %q: %w", raw, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative value %q", raw)
	}
	return math.Round(v*100) / 100, nil
}

// Installment is a (current, total) billing-cycle pair.
type Installment struct {
	Current int
	Total   int
}

// Anomalous reports a marker where current exceeds total. Such
// transactions are kept and flagged, never silently corrected.
func (i Installment) Anomalous() bool {
	return i.Current > i.Total
}

// ParseInstallment extracts the installment pair from a description using
// the profile's installment grammar. ok is false when the description
// carries no well-formed marker, meaning the purchase is not
// installment-based.
func ParseInstallment(description string, re *regexp.Regexp) (Installment, bool) {
	if re == nil {
		return Installment{}, false
	}
	match := re.FindStringSubmatch(description)
	if len(match) < 3 {
		return Installment{}, false
	}
	current, err := strconv.Atoi(match[1])
	if err != nil || current <= 0 {
		return Installment{}, false
	}
	total, err := strconv.Atoi(match[2])
	if err != nil || total <= 0 {
		return Installment{}, false
	}
	return Installment{Current: current, Total: total}, true
}

// NormalizeDescription strips the installment marker and stray currency
// symbols from a raw description and collapses whitespace. The result is
// used for display and as fingerprint input.
func NormalizeDescription(raw string, installment *regexp.Regexp) string {
	desc := raw
	if installment != nil {
		desc = installment.ReplaceAllString(desc, " ")
	}

	fields := strings.Fields(desc)
	kept := fields[:0]
	for _, f := range fields {
		if f == "R$" || f == "-" {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}
