// Package chi exposes the REST API over a chi router.
package chi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/promemo/internal/domain"
	activityuc "github.com/kailas-cloud/promemo/internal/usecase/activity"
	analyticsuc "github.com/kailas-cloud/promemo/internal/usecase/analytics"
	assistantuc "github.com/kailas-cloud/promemo/internal/usecase/assistant"
	authuc "github.com/kailas-cloud/promemo/internal/usecase/auth"
	bulkuc "github.com/kailas-cloud/promemo/internal/usecase/bulk"
	exportuc "github.com/kailas-cloud/promemo/internal/usecase/export"
	healthuc "github.com/kailas-cloud/promemo/internal/usecase/health"
	notificationuc "github.com/kailas-cloud/promemo/internal/usecase/notification"
	projectuc "github.com/kailas-cloud/promemo/internal/usecase/project"
	searchuc "github.com/kailas-cloud/promemo/internal/usecase/search"
	taskuc "github.com/kailas-cloud/promemo/internal/usecase/task"
	useruc "github.com/kailas-cloud/promemo/internal/usecase/user"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// AdminReader supplies counts for the admin stats endpoint.
type AdminReader interface {
	CountUsers(ctx context.Context) (int, error)
	CountProjects(ctx context.Context) (int, error)
	CountTasks(ctx context.Context) (int, error)
}

// Server holds the usecase services behind the REST surface.
type Server struct {
	auth          *authuc.Service
	users         *useruc.Service
	projects      *projectuc.Service
	tasks         *taskuc.Service
	search        *searchuc.Service
	export        *exportuc.Service
	bulk          *bulkuc.Service
	analytics     *analyticsuc.Service
	assistant     *assistantuc.Service
	notifications *notificationuc.Service
	activities    *activityuc.Service
	health        *healthuc.Service
	admin         AdminReader
	cache         *CacheMiddleware
	logger        *zap.Logger
	errorHandlers []errorHandler
	started       time.Time
}

// NewServer creates an HTTP API server.
func NewServer(
	auth *authuc.Service,
	users *useruc.Service,
	projects *projectuc.Service,
	tasks *taskuc.Service,
	search *searchuc.Service,
	export *exportuc.Service,
	bulk *bulkuc.Service,
	analytics *analyticsuc.Service,
	assistant *assistantuc.Service,
	notifications *notificationuc.Service,
	activities *activityuc.Service,
	health *healthuc.Service,
	admin AdminReader,
	cache *CacheMiddleware,
	logger *zap.Logger,
) *Server {
	s := &Server{
		auth:          auth,
		users:         users,
		projects:      projects,
		tasks:         tasks,
		search:        search,
		export:        export,
		bulk:          bulk,
		analytics:     analytics,
		assistant:     assistant,
		notifications: notifications,
		activities:    activities,
		health:        health,
		admin:         admin,
		cache:         cache,
		logger:        logger,
		started:       time.Now(),
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest),
		sentinelHandler(domain.ErrUnauthorized, http.StatusUnauthorized),
		sentinelHandler(domain.ErrForbidden, http.StatusForbidden),
		sentinelHandler(domain.ErrUserNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrProjectNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrTaskNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict),
		sentinelHandler(domain.ErrNotImplemented, http.StatusNotImplemented),
		sentinelHandler(domain.ErrAssistantUnavailable, http.StatusBadGateway),
	}
	return s
}

// Routes assembles the /api/v1 surface plus health and metrics.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Get("/me", s.handleMe)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.handleListUsers)
			r.Get("/{id}", s.handleGetUser)
			r.Patch("/{id}", s.handleUpdateUser)
			r.Delete("/{id}", s.handleDeleteUser)
		})

		r.Route("/projects", func(r chi.Router) {
			r.With(s.cache.Cached).Get("/", s.handleListProjects)
			r.With(s.cache.ClearCache("/api/v1/projects*")).Post("/", s.handleCreateProject)
			r.With(s.cache.Cached).Get("/{id}", s.handleGetProject)
			r.With(s.cache.ClearCache("/api/v1/projects*")).Patch("/{id}", s.handleUpdateProject)
			// Deleting a project cascades to its tasks.
			r.With(s.cache.ClearCache("/api/v1/projects*"), s.cache.ClearCache("/api/v1/tasks*")).
				Delete("/{id}", s.handleDeleteProject)
			r.With(s.cache.ClearCache("/api/v1/projects*")).Post("/{id}/members", s.handleAddMember)
			r.Get("/{id}/activities", s.handleListProjectActivities)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.With(s.cache.Cached).Get("/", s.handleListTasks)
			r.With(s.cache.ClearCache("/api/v1/tasks*")).Post("/", s.handleCreateTask)
			r.With(s.cache.Cached).Get("/{id}", s.handleGetTask)
			r.With(s.cache.ClearCache("/api/v1/tasks*")).Patch("/{id}", s.handleUpdateTask)
			r.With(s.cache.ClearCache("/api/v1/tasks*")).Delete("/{id}", s.handleDeleteTask)
		})

		r.Route("/search", func(r chi.Router) {
			r.Get("/", s.handleSearch)
			r.Get("/suggestions", s.handleSuggestions)
			r.Get("/advanced", s.handleAdvancedSearch)
		})

		r.Route("/export", func(r chi.Router) {
			r.Post("/tasks", s.handleExportTasks)
			r.Post("/projects", s.handleExportProjects)
			r.Post("/analytics", s.handleExportAnalytics)
			r.Post("/all", s.handleExportAll)
			r.Get("/csv", s.handleExportCSV)
			r.Post("/import", s.handleImport)
		})

		r.Route("/bulk", func(r chi.Router) {
			r.Route("/tasks", func(r chi.Router) {
				r.Use(s.cache.ClearCache("/api/v1/tasks*"))
				r.Patch("/", s.handleBulkUpdateTasks)
				r.Patch("/status", s.handleBulkTaskStatus)
				r.Patch("/priority", s.handleBulkTaskPriority)
				r.Patch("/assign", s.handleBulkAssignTasks)
				r.Patch("/move", s.handleBulkMoveTasks)
				r.Patch("/archive", s.handleBulkArchiveTasks)
				r.Delete("/", s.handleBulkDeleteTasks)
			})
			r.Route("/projects", func(r chi.Router) {
				r.Use(s.cache.ClearCache("/api/v1/projects*"), s.cache.ClearCache("/api/v1/tasks*"))
				r.Patch("/", s.handleBulkUpdateProjects)
				r.Patch("/archive", s.handleBulkArchiveProjects)
				r.Delete("/", s.handleBulkDeleteProjects)
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", s.handleListNotifications)
			r.Patch("/{id}/read", s.handleMarkNotificationRead)
		})

		r.Get("/activities", s.handleListActivities)
		r.With(s.cache.Cached).Get("/analytics/dashboard", s.handleDashboard)

		r.Route("/ai", func(r chi.Router) {
			r.Post("/summarize", s.handleSummarize)
			r.Post("/suggest", s.handleSuggest)
		})

		r.Get("/admin/stats", s.handleAdminStats)
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, msg)
		return true
	}
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrValidation,
		domain.ErrUnauthorized,
		domain.ErrForbidden,
		domain.ErrUserNotFound,
		domain.ErrProjectNotFound,
		domain.ErrTaskNotFound,
		domain.ErrNotFound,
		domain.ErrAlreadyExists,
		domain.ErrNotImplemented,
		domain.ErrAssistantUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

// paging reads offset/limit query parameters with sane fallbacks.
func paging(r *http.Request, defaultLimit int) (offset, limit int) {
	limit = defaultLimit
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	return offset, limit
}
