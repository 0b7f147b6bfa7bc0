// Package parser turns extracted statement text into normalized
// transactions using the detected issuer profile's line grammar.
package parser

import (
	"bufio"
	"strings"

	"faturas/internal/profile"
)

// Capture holds the raw field tokens matched on one statement line.
type Capture struct {
	Line        int
	Date        string
	Description string
	Value       string
}

// LineMatcher walks statement text line by line and yields a Capture for
// each line satisfying the profile's transaction grammar. Headers, totals
// and footers interleaved with transaction lines do not match the grammar
// and are skipped silently; they are only counted. The sequence is
// finite, non-restartable and preserves source line order.
type LineMatcher struct {
	scanner *bufio.Scanner
	prof    *profile.Profile
	line    int
	skipped int
}

// NewLineMatcher creates a matcher over the given text.
func NewLineMatcher(text string, p *profile.Profile) *LineMatcher {
	return &LineMatcher{
		scanner: bufio.NewScanner(strings.NewReader(text)),
		prof:    p,
	}
}

// Next returns the next raw capture, or ok=false when the text is
// exhausted.
func (m *LineMatcher) Next() (Capture, bool) {
	for m.scanner.Scan() {
		m.line++
		line := m.scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		match := m.prof.Line.FindStringSubmatch(line)
		if len(match) < 4 {
			m.skipped++
			continue
		}
		return Capture{
			Line:        m.line,
			Date:        strings.TrimSpace(match[1]),
			Description: strings.TrimSpace(match[2]),
			Value:       strings.TrimSpace(match[3]),
		}, true
	}
	return Capture{}, false
}

// Skipped returns the number of non-empty lines that did not satisfy the
// transaction grammar.
func (m *LineMatcher) Skipped() int {
	return m.skipped
}
