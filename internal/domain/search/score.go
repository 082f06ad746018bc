package search

import "strings"

// Relevance score weights. A title hit on the full query outweighs any
// combination of weaker signals on the same field.
const (
	weightTitleExact    = 100
	weightTitlePrefix   = 80
	weightTitleContains = 60
	weightDescContains  = 30
	weightTitleToken    = 10
	weightDescToken     = 5
)

// Score computes the relevance of a (title, description) pair for a query.
// All matching is case-insensitive. The title rules are exclusive (exact
// beats prefix beats contains); a title containing any single query token
// still counts as a contains match. Description containment and per-token
// bonuses are additive on top.
func Score(query, title, description string) int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}
	t := strings.ToLower(title)
	d := strings.ToLower(description)
	tokens := strings.Fields(q)

	score := 0
	switch {
	case t == q:
		score += weightTitleExact
	case strings.HasPrefix(t, q):
		score += weightTitlePrefix
	case containsAny(t, q, tokens):
		score += weightTitleContains
	}

	if strings.Contains(d, q) {
		score += weightDescContains
	}

	for _, tok := range tokens {
		if strings.Contains(t, tok) {
			score += weightTitleToken
		}
		if strings.Contains(d, tok) {
			score += weightDescToken
		}
	}

	return score
}

// Matches reports whether any of the fields contains the query as a
// case-insensitive substring. Used to select candidates before scoring.
func Matches(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func containsAny(haystack, full string, tokens []string) bool {
	if strings.Contains(haystack, full) {
		return true
	}
	for _, tok := range tokens {
		if strings.Contains(haystack, tok) {
			return true
		}
	}
	return false
}
