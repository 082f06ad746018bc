package chi

import (
	"encoding/json"
	"net/http"
	"time"
)

// Pagination describes the slice of a list response.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Count  int `json:"count"`
}

// Envelope is the uniform response shape for every endpoint.
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       any         `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

func writeEnvelope(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Envelope{
		Success:   status < http.StatusBadRequest,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

func writeList(w http.ResponseWriter, message string, data any, p Pagination) {
	writeJSON(w, http.StatusOK, Envelope{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: &p,
		Timestamp:  time.Now().UTC(),
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, message, nil)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
