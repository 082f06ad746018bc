package chi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	domproj "github.com/kailas-cloud/promemo/internal/domain/project"
	projectuc "github.com/kailas-cloud/promemo/internal/usecase/project"
)

type createProjectRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

type updateProjectRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Status      *string   `json:"status"`
	Tags        *[]string `json:"tags"`
	Archived    *bool     `json:"archived"`
}

// handleListProjects handles GET /api/v1/projects.
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	offset, limit := paging(r, 50)

	projects, err := s.projects.List(r.Context(), u, offset, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeList(w, "ok", projects, Pagination{Offset: offset, Limit: limit, Count: len(projects)})
}

// handleCreateProject handles POST /api/v1/projects.
func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := s.projects.Create(r.Context(), u, req.Name, req.Description, req.Tags)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeEnvelope(w, http.StatusCreated, "created", p)
}

// handleGetProject handles GET /api/v1/projects/{id}.
func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	p, err := s.projects.Get(r.Context(), u, chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "ok", p)
}

// handleUpdateProject handles PATCH /api/v1/projects/{id}.
func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req updateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := projectuc.Patch{
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
		Archived:    req.Archived,
	}
	if req.Status != nil {
		status := domproj.Status(*req.Status)
		patch.Status = &status
	}

	p, err := s.projects.Update(r.Context(), u, chi.URLParam(r, "id"), patch)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "updated", p)
}

// handleDeleteProject handles DELETE /api/v1/projects/{id}.
func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	if err := s.projects.Delete(r.Context(), u, chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "deleted", nil)
}

// handleAddMember handles POST /api/v1/projects/{id}/members.
func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	p, err := s.projects.AddMember(r.Context(), u, chi.URLParam(r, "id"), req.UserID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "member added", p)
}

// handleListProjectActivities handles GET /api/v1/projects/{id}/activities.
func (s *Server) handleListProjectActivities(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	offset, limit := paging(r, 50)

	// Membership check rides on project Get.
	if _, err := s.projects.Get(r.Context(), u, chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}

	acts, err := s.activities.ListByProject(r.Context(), chi.URLParam(r, "id"), offset, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeList(w, "ok", acts, Pagination{Offset: offset, Limit: limit, Count: len(acts)})
}
