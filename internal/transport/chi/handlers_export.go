package chi

import (
	"encoding/json"
	"io"
	"net/http"

	domexp "github.com/kailas-cloud/promemo/internal/domain/export"
	exportuc "github.com/kailas-cloud/promemo/internal/usecase/export"
)

// maxImportBody bounds the import payload size.
const maxImportBody = 10 << 20

type exportRequest struct {
	Format    string `json:"format"`
	ProjectID string `json:"projectId"`
	Status    string `json:"status"`
}

func (req *exportRequest) format() domexp.Format {
	if req.Format == "" {
		return domexp.FormatJSON
	}
	return domexp.Format(req.Format)
}

// handleExportTasks handles POST /api/v1/export/tasks.
func (s *Server) handleExportTasks(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bundle, err := s.export.ExportTasks(r.Context(), u,
		exportuc.Filter{ProjectID: req.ProjectID, Status: req.Status}, req.format())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.writeBundle(w, bundle, "tasks")
}

// handleExportProjects handles POST /api/v1/export/projects.
func (s *Server) handleExportProjects(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bundle, err := s.export.ExportProjects(r.Context(), u, req.format())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.writeBundle(w, bundle, "projects")
}

// handleExportAnalytics handles POST /api/v1/export/analytics.
func (s *Server) handleExportAnalytics(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bundle, err := s.export.ExportAnalytics(r.Context(), u, req.format())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.writeBundle(w, bundle, "analytics")
}

// handleExportAll handles POST /api/v1/export/all.
func (s *Server) handleExportAll(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bundle, err := s.export.ExportAll(r.Context(), u, req.format())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.writeBundle(w, bundle, "promemo")
}

// handleExportCSV handles GET /api/v1/export/csv?entity=&projectId=&status=.
// Always responds as a CSV attachment.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	entity := q.Get("entity")
	if entity == "" {
		entity = "tasks"
	}

	var bundle domexp.Bundle
	var err error
	switch entity {
	case "tasks":
		bundle, err = s.export.ExportTasks(r.Context(), u,
			exportuc.Filter{ProjectID: q.Get("projectId"), Status: q.Get("status")}, domexp.FormatCSV)
	case "projects":
		bundle, err = s.export.ExportProjects(r.Context(), u, domexp.FormatCSV)
	default:
		writeError(w, http.StatusBadRequest, "unknown entity "+entity)
		return
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	body, contentType, err := s.export.Render(bundle)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+entity+`.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// handleImport handles POST /api/v1/export/import?projectId=.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxImportBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read payload")
		return
	}

	res, err := s.export.ImportTasks(r.Context(), u,
		r.URL.Query().Get("projectId"), payload, r.Header.Get("Content-Type"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "imported", res)
}

// writeBundle renders a bundle either inline as the envelope data (json) or
// as a raw body (csv, excel placeholder).
func (s *Server) writeBundle(w http.ResponseWriter, bundle domexp.Bundle, name string) {
	if bundle.Format == domexp.FormatJSON {
		rows := make([]map[string]any, 0, len(bundle.Data))
		for _, rec := range bundle.Data {
			rows = append(rows, rec.Values)
		}
		writeEnvelope(w, http.StatusOK, "ok", map[string]any{"count": bundle.Count, "records": rows})
		return
	}

	body, contentType, err := s.export.Render(bundle)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	if bundle.Format == domexp.FormatCSV {
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.csv"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
