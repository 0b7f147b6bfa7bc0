// Package categorize maps transaction descriptions to spending category
// labels using an ordered keyword rule list.
package categorize

import "strings"

// DefaultCategory is the fallback label when no rule matches.
const DefaultCategory = "outros"

// Rule maps a keyword set to a category label. Rules are evaluated in
// declaration order; the first keyword substring match wins.
type Rule struct {
	Label    string
	Keywords []string
}

// Categorizer classifies descriptions against a fixed, ordered rule list.
// It holds no mutable state and is safe for concurrent use.
type Categorizer struct {
	rules    []Rule
	fallback string
}

// New creates a Categorizer. An empty fallback defaults to DefaultCategory.
func New(rules []Rule, fallback string) *Categorizer {
	if fallback == "" {
		fallback = DefaultCategory
	}
	return &Categorizer{rules: rules, fallback: fallback}
}

// Categorize returns the label of the first rule whose keyword set has a
// case-insensitive substring match against the description. It always
// returns a label.
func (c *Categorizer) Categorize(description string) string {
	lower := strings.ToLower(description)
	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(lower, kw) {
				return rule.Label
			}
		}
	}
	return c.fallback
}

// Fallback returns the default category label.
func (c *Categorizer) Fallback() string {
	return c.fallback
}
