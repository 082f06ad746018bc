package chi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleListUsers handles GET /api/v1/users.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	offset, limit := paging(r, 50)

	users, err := s.users.List(r.Context(), u, offset, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	views := make([]userView, 0, len(users))
	for i := range users {
		views = append(views, toUserView(users[i]))
	}
	writeList(w, "ok", views, Pagination{Offset: offset, Limit: limit, Count: len(views)})
}

// handleGetUser handles GET /api/v1/users/{id}.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}

	target, err := s.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "ok", toUserView(target))
}

// handleUpdateUser handles PATCH /api/v1/users/{id}.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := s.users.UpdateName(r.Context(), u, chi.URLParam(r, "id"), req.Name)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "updated", toUserView(updated))
}

// handleDeleteUser handles DELETE /api/v1/users/{id}.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	if err := s.users.Delete(r.Context(), u, chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "deleted", nil)
}
