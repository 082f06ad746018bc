package chi

import (
	"net/http"
	"strconv"
	"time"

	searchuc "github.com/kailas-cloud/promemo/internal/usecase/search"
)

// handleSearch handles GET /api/v1/search?q=&type=&limit=.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	results, err := s.search.Search(r.Context(), u, searchuc.Query{
		Text:  q.Get("q"),
		Type:  q.Get("type"),
		Limit: limit,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "ok", results)
}

// handleSuggestions handles GET /api/v1/search/suggestions?q=&limit=.
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	suggestions, err := s.search.Suggestions(r.Context(), u, q.Get("q"), limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "ok", suggestions)
}

// handleAdvancedSearch handles GET /api/v1/search/advanced.
func (s *Server) handleAdvancedSearch(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	aq := searchuc.AdvancedQuery{
		Text:     q.Get("q"),
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		Tag:      q.Get("tag"),
		Limit:    limit,
	}
	if v := q.Get("dueAfter"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			aq.DueAfter = &t
		}
	}
	if v := q.Get("dueBefore"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			aq.DueBefore = &t
		}
	}

	results, err := s.search.Advanced(r.Context(), u, aq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "ok", results)
}
