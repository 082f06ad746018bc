// Package health reports component readiness.
package health

import "context"

// Pinger checks connectivity of a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Status is one component's health.
type Status struct {
	Healthy bool   `json:"healthy"`
	Detail  string `json:"detail,omitempty"`
}

// Report maps component names to their status.
type Report struct {
	Healthy    bool              `json:"healthy"`
	Components map[string]Status `json:"components"`
}

// Service aggregates component checks.
type Service struct {
	store Pinger
}

// New creates a health service.
func New(store Pinger) *Service {
	return &Service{store: store}
}

// Check pings the backing store and reports the result.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{Healthy: true, Components: map[string]Status{}}

	if err := s.store.Ping(ctx); err != nil {
		r.Healthy = false
		r.Components["database"] = Status{Healthy: false, Detail: err.Error()}
	} else {
		r.Components["database"] = Status{Healthy: true}
	}
	return r
}
