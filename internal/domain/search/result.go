// Package search defines search results and the relevance scoring rules.
package search

import "sort"

// EntityType identifies which collection a result came from.
type EntityType string

// Searchable entity types.
const (
	TypeTask    EntityType = "task"
	TypeProject EntityType = "project"
	TypeUser    EntityType = "user"
)

// descriptionLimit caps the description carried in a result.
const descriptionLimit = 100

// Result is one ranked search hit. Computed per query, never persisted.
type Result struct {
	Type        EntityType     `json:"type"`
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Relevance   int            `json:"relevance"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// NewResult builds a result, truncating the description.
func NewResult(t EntityType, id, title, description string, relevance int, metadata map[string]any) Result {
	return Result{
		Type:        t,
		ID:          id,
		Title:       title,
		Description: Truncate(description, descriptionLimit),
		Relevance:   relevance,
		Metadata:    metadata,
	}
}

// Truncate cuts s to at most limit runes.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// Rank stable-sorts results by relevance descending (ties keep retrieval
// order) and truncates to limit. limit <= 0 means no truncation.
func Rank(results []Result, limit int) []Result {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
