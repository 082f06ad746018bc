package chi

import (
	"encoding/json"
	"net/http"

	domuser "github.com/kailas-cloud/promemo/internal/domain/user"
)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

type userView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func toUserView(u domuser.User) userView {
	return userView{ID: u.ID, Email: u.Email, Name: u.Name, Role: string(u.Role)}
}

// handleRegister handles POST /api/v1/auth/register.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, token, err := s.auth.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeEnvelope(w, http.StatusCreated, "registered", authResponse{Token: token, User: toUserView(u)})
}

// handleLogin handles POST /api/v1/auth/login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, token, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "logged in", authResponse{Token: token, User: toUserView(u)})
}

// handleMe handles GET /api/v1/auth/me.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	writeEnvelope(w, http.StatusOK, "ok", toUserView(u))
}
