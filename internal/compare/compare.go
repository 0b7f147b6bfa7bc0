// Package compare builds the monthly comparison report: per-month
// category totals, grand totals, percentages and an advisory trend over
// a window of at most six months. Buckets are derived from transactions
// on every call and never persisted.
package compare

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"faturas/internal/models"
)

// MaxWindowMonths bounds the comparison window.
const MaxWindowMonths = 6

// Trend indicator values. Advisory text only; no other component
// consumes them.
const (
	TrendIncreasing = "increasing"
	TrendStable     = "stable"
	TrendDecreasing = "decreasing"
)

// Options restrict the aggregation.
type Options struct {
	// Months is the requested window of YYYY-MM keys. Empty means every
	// month present in the input, capped at the most recent
	// MaxWindowMonths.
	Months []string

	// CardOrigin filters transactions by card-origin label.
	CardOrigin string
}

// Build aggregates transactions into the comparison report. Months with
// no transactions are omitted rather than zero-filled. Requesting more
// than MaxWindowMonths distinct months is an error.
func Build(transactions []models.Transaction, opts Options) (*models.ComparisonReport, error) {
	window, err := resolveWindow(opts.Months)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]*models.MonthBucket)
	categoryTotals := make(map[string]float64)

	for i := range transactions {
		t := &transactions[i]
		if opts.CardOrigin != "" && t.CardOrigin != opts.CardOrigin {
			continue
		}
		monthKey, err := t.MonthKey()
		if err != nil {
			continue // invalid stored date, skip
		}
		if window != nil && !window[monthKey] {
			continue
		}

		bucket, ok := buckets[monthKey]
		if !ok {
			bucket = &models.MonthBucket{
				MonthName:  monthName(monthKey),
				Categories: make(map[string]float64),
			}
			buckets[monthKey] = bucket
		}
		bucket.Categories[t.Category] = round2(bucket.Categories[t.Category] + t.Value)
		bucket.Total = round2(bucket.Total + t.Value)
		bucket.Count++
		categoryTotals[t.Category] = round2(categoryTotals[t.Category] + t.Value)
	}

	months := make([]string, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Strings(months)

	if window == nil && len(months) > MaxWindowMonths {
		// No explicit window: keep the most recent six months.
		dropped := months[:len(months)-MaxWindowMonths]
		months = months[len(months)-MaxWindowMonths:]
		for _, m := range dropped {
			for cat, v := range buckets[m].Categories {
				categoryTotals[cat] = round2(categoryTotals[cat] - v)
				if categoryTotals[cat] == 0 {
					delete(categoryTotals, cat)
				}
			}
			delete(buckets, m)
		}
	}

	for _, bucket := range buckets {
		if bucket.Total <= 0 {
			continue
		}
		bucket.Percentages = make(map[string]float64, len(bucket.Categories))
		for cat, v := range bucket.Categories {
			bucket.Percentages[cat] = round2(v / bucket.Total * 100)
		}
	}

	categories := make([]string, 0, len(categoryTotals))
	for c := range categoryTotals {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	report := &models.ComparisonReport{
		MonthlyBreakdown: buckets,
		CategoryTotals:   categoryTotals,
		Months:           months,
		Categories:       categories,
		Trend:            trend(months, buckets),
	}
	return report, nil
}

func resolveWindow(requested []string) (map[string]bool, error) {
	if len(requested) == 0 {
		return nil, nil
	}
	window := make(map[string]bool)
	for _, m := range requested {
		if !validMonthKey(m) {
			return nil, fmt.Errorf("invalid month key %q", m)
		}
		window[m] = true
	}
	if len(window) > MaxWindowMonths {
		return nil, fmt.Errorf("window of %d months exceeds limit of %d", len(window), MaxWindowMonths)
	}
	return window, nil
}

func validMonthKey(key string) bool {
	parts := strings.Split(key, "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1 {
		return false
	}
	month, err := strconv.Atoi(parts[1])
	return err == nil && month >= 1 && month <= 12
}

// monthName renders "January/2024" for "2024-01".
func monthName(key string) string {
	parts := strings.Split(key, "-")
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return key
	}
	return time.Month(month).String() + "/" + parts[0]
}

// trend compares the mean of the most recent three month totals against
// the first three, with a 5% stability band. Fewer than two months is
// inconclusive.
func trend(months []string, buckets map[string]*models.MonthBucket) string {
	if len(months) < 2 {
		return ""
	}

	n := 3
	if len(months) < n {
		n = len(months)
	}
	older := mean(months[:n], buckets)
	recent := mean(months[len(months)-n:], buckets)

	if older <= 0 {
		if recent > 0 {
			return TrendIncreasing
		}
		return TrendStable
	}
	change := (recent - older) / older * 100
	switch {
	case change > 5:
		return TrendIncreasing
	case change < -5:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

func mean(months []string, buckets map[string]*models.MonthBucket) float64 {
	if len(months) == 0 {
		return 0
	}
	var sum float64
	for _, m := range months {
		sum += buckets[m].Total
	}
	return sum / float64(len(months))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
