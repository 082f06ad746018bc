package chi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	domtask "github.com/kailas-cloud/promemo/internal/domain/task"
	taskuc "github.com/kailas-cloud/promemo/internal/usecase/task"
)

type createTaskRequest struct {
	ProjectID   string     `json:"projectId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	AssigneeID  string     `json:"assigneeId"`
	Tags        []string   `json:"tags"`
	DueDate     *time.Time `json:"dueDate"`
}

type updateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	AssigneeID  *string    `json:"assigneeId"`
	ProjectID   *string    `json:"projectId"`
	Tags        *[]string  `json:"tags"`
	DueDate     *time.Time `json:"dueDate"`
	Archived    *bool      `json:"archived"`
}

// handleListTasks handles GET /api/v1/tasks.
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	offset, limit := paging(r, 50)

	tasks, err := s.tasks.List(r.Context(), u, r.URL.Query().Get("projectId"), offset, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeList(w, "ok", tasks, Pagination{Offset: offset, Limit: limit, Count: len(tasks)})
}

// handleCreateTask handles POST /api/v1/tasks.
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := s.tasks.Create(r.Context(), u, taskuc.CreateInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    domtask.Priority(req.Priority),
		AssigneeID:  req.AssigneeID,
		Tags:        req.Tags,
		DueDate:     req.DueDate,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeEnvelope(w, http.StatusCreated, "created", t)
}

// handleGetTask handles GET /api/v1/tasks/{id}.
func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	t, err := s.tasks.Get(r.Context(), u, chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "ok", t)
}

// handleUpdateTask handles PATCH /api/v1/tasks/{id}.
func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := taskuc.Patch{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		ProjectID:   req.ProjectID,
		Tags:        req.Tags,
		DueDate:     req.DueDate,
		Archived:    req.Archived,
	}
	if req.Status != nil {
		status := domtask.Status(*req.Status)
		patch.Status = &status
	}
	if req.Priority != nil {
		priority := domtask.Priority(*req.Priority)
		patch.Priority = &priority
	}

	t, err := s.tasks.Update(r.Context(), u, chi.URLParam(r, "id"), patch)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "updated", t)
}

// handleDeleteTask handles DELETE /api/v1/tasks/{id}.
func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	if err := s.tasks.Delete(r.Context(), u, chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "deleted", nil)
}
