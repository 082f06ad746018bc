package chi

import (
	"encoding/json"
	"net/http"
	"time"

	domproj "github.com/kailas-cloud/promemo/internal/domain/project"
	domtask "github.com/kailas-cloud/promemo/internal/domain/task"
	bulkuc "github.com/kailas-cloud/promemo/internal/usecase/bulk"
)

type bulkTaskRequest struct {
	IDs   []string `json:"ids"`
	Patch struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Status      *string    `json:"status"`
		Priority    *string    `json:"priority"`
		AssigneeID  *string    `json:"assigneeId"`
		Tags        *[]string  `json:"tags"`
		DueDate     *time.Time `json:"dueDate"`
		Archived    *bool      `json:"archived"`
	} `json:"patch"`
	Status     string `json:"status"`
	Priority   string `json:"priority"`
	AssigneeID string `json:"assigneeId"`
	ProjectID  string `json:"projectId"`
}

type bulkProjectRequest struct {
	IDs   []string `json:"ids"`
	Patch struct {
		Name        *string   `json:"name"`
		Description *string   `json:"description"`
		Status      *string   `json:"status"`
		Tags        *[]string `json:"tags"`
		Archived    *bool     `json:"archived"`
	} `json:"patch"`
}

func decodeBulkTask(w http.ResponseWriter, r *http.Request) (bulkTaskRequest, bool) {
	var req bulkTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	return req, true
}

func (s *Server) writeBulkResult(w http.ResponseWriter, res bulkuc.Result, err error) {
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "ok", res)
}

// handleBulkUpdateTasks handles PATCH /api/v1/bulk/tasks.
func (s *Server) handleBulkUpdateTasks(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	req, ok := decodeBulkTask(w, r)
	if !ok {
		return
	}

	patch := bulkuc.TaskPatch{
		Title:       req.Patch.Title,
		Description: req.Patch.Description,
		AssigneeID:  req.Patch.AssigneeID,
		Tags:        req.Patch.Tags,
		DueDate:     req.Patch.DueDate,
		Archived:    req.Patch.Archived,
	}
	if req.Patch.Status != nil {
		status := domtask.Status(*req.Patch.Status)
		patch.Status = &status
	}
	if req.Patch.Priority != nil {
		priority := domtask.Priority(*req.Patch.Priority)
		patch.Priority = &priority
	}

	res, err := s.bulk.UpdateTasks(r.Context(), req.IDs, patch)
	s.writeBulkResult(w, res, err)
}

// handleBulkTaskStatus handles PATCH /api/v1/bulk/tasks/status.
func (s *Server) handleBulkTaskStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	req, ok := decodeBulkTask(w, r)
	if !ok {
		return
	}

	res, err := s.bulk.UpdateTaskStatus(r.Context(), req.IDs, domtask.Status(req.Status))
	s.writeBulkResult(w, res, err)
}

// handleBulkTaskPriority handles PATCH /api/v1/bulk/tasks/priority.
func (s *Server) handleBulkTaskPriority(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	req, ok := decodeBulkTask(w, r)
	if !ok {
		return
	}

	res, err := s.bulk.UpdateTaskPriority(r.Context(), req.IDs, domtask.Priority(req.Priority))
	s.writeBulkResult(w, res, err)
}

// handleBulkAssignTasks handles PATCH /api/v1/bulk/tasks/assign.
func (s *Server) handleBulkAssignTasks(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	req, ok := decodeBulkTask(w, r)
	if !ok {
		return
	}

	res, err := s.bulk.AssignTasks(r.Context(), req.IDs, req.AssigneeID)
	s.writeBulkResult(w, res, err)
}

// handleBulkMoveTasks handles PATCH /api/v1/bulk/tasks/move.
func (s *Server) handleBulkMoveTasks(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	req, ok := decodeBulkTask(w, r)
	if !ok {
		return
	}

	res, err := s.bulk.MoveTasks(r.Context(), req.IDs, req.ProjectID)
	s.writeBulkResult(w, res, err)
}

// handleBulkArchiveTasks handles PATCH /api/v1/bulk/tasks/archive.
func (s *Server) handleBulkArchiveTasks(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	req, ok := decodeBulkTask(w, r)
	if !ok {
		return
	}

	res, err := s.bulk.ArchiveTasks(r.Context(), req.IDs)
	s.writeBulkResult(w, res, err)
}

// handleBulkDeleteTasks handles DELETE /api/v1/bulk/tasks.
func (s *Server) handleBulkDeleteTasks(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	req, ok := decodeBulkTask(w, r)
	if !ok {
		return
	}

	res, err := s.bulk.DeleteTasks(r.Context(), req.IDs)
	s.writeBulkResult(w, res, err)
}

// handleBulkUpdateProjects handles PATCH /api/v1/bulk/projects.
func (s *Server) handleBulkUpdateProjects(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	var req bulkProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := bulkuc.ProjectPatch{
		Name:        req.Patch.Name,
		Description: req.Patch.Description,
		Tags:        req.Patch.Tags,
		Archived:    req.Patch.Archived,
	}
	if req.Patch.Status != nil {
		status := domproj.Status(*req.Patch.Status)
		patch.Status = &status
	}

	res, err := s.bulk.UpdateProjects(r.Context(), req.IDs, patch)
	s.writeBulkResult(w, res, err)
}

// handleBulkArchiveProjects handles PATCH /api/v1/bulk/projects/archive.
func (s *Server) handleBulkArchiveProjects(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	var req bulkProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.bulk.ArchiveProjects(r.Context(), req.IDs)
	s.writeBulkResult(w, res, err)
}

// handleBulkDeleteProjects handles DELETE /api/v1/bulk/projects.
func (s *Server) handleBulkDeleteProjects(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	var req bulkProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.bulk.DeleteProjects(r.Context(), req.IDs)
	s.writeBulkResult(w, res, err)
}
