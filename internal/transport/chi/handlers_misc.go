package chi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/promemo/internal/version"
)

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	status := http.StatusOK
	if !report.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// handleListNotifications handles GET /api/v1/notifications.
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	offset, limit := paging(r, 50)

	notifs, err := s.notifications.ListForUser(r.Context(), u.ID, offset, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeList(w, "ok", notifs, Pagination{Offset: offset, Limit: limit, Count: len(notifs)})
}

// handleMarkNotificationRead handles PATCH /api/v1/notifications/{id}/read.
func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	n, err := s.notifications.MarkRead(r.Context(), u.ID, chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "read", n)
}

// handleListActivities handles GET /api/v1/activities.
func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	offset, limit := paging(r, 50)

	acts, err := s.activities.List(r.Context(), offset, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeList(w, "ok", acts, Pagination{Offset: offset, Limit: limit, Count: len(acts)})
}

// handleDashboard handles GET /api/v1/analytics/dashboard.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	data, err := s.analytics.Dashboard(r.Context(), u)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "ok", data)
}

type aiRequest struct {
	ProjectID string `json:"projectId"`
}

// handleSummarize handles POST /api/v1/ai/summarize.
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req aiRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProjectID == "" {
		writeError(w, http.StatusBadRequest, "projectId is required")
		return
	}

	// Membership check rides on project Get.
	if _, err := s.projects.Get(r.Context(), u, req.ProjectID); err != nil {
		s.handleDomainError(w, err)
		return
	}

	summary, err := s.assistant.Summarize(r.Context(), req.ProjectID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "ok", map[string]string{"summary": summary})
}

// handleSuggest handles POST /api/v1/ai/suggest.
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req aiRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProjectID == "" {
		writeError(w, http.StatusBadRequest, "projectId is required")
		return
	}

	if _, err := s.projects.Get(r.Context(), u, req.ProjectID); err != nil {
		s.handleDomainError(w, err)
		return
	}

	suggestions, err := s.assistant.Suggest(r.Context(), req.ProjectID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "ok", map[string]string{"suggestions": suggestions})
}

// handleAdminStats handles GET /api/v1/admin/stats.
func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if !u.IsAdmin() {
		writeError(w, http.StatusForbidden, "admin only")
		return
	}

	users, err := s.admin.CountUsers(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	projects, err := s.admin.CountProjects(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	tasks, err := s.admin.CountTasks(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeEnvelope(w, http.StatusOK, "ok", map[string]any{
		"users":      users,
		"projects":   projects,
		"tasks":      tasks,
		"uptime_sec": int(time.Since(s.started).Seconds()),
		"version":    version.Version,
	})
}
