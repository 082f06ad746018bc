package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/promemo/internal/config"
	"github.com/kailas-cloud/promemo/internal/db"
	dbRedis "github.com/kailas-cloud/promemo/internal/db/redis"
	logpkg "github.com/kailas-cloud/promemo/internal/logger"
	"github.com/kailas-cloud/promemo/internal/metrics"
	activityrepo "github.com/kailas-cloud/promemo/internal/repository/activity"
	cacherepo "github.com/kailas-cloud/promemo/internal/repository/cache"
	notificationrepo "github.com/kailas-cloud/promemo/internal/repository/notification"
	projectrepo "github.com/kailas-cloud/promemo/internal/repository/project"
	taskrepo "github.com/kailas-cloud/promemo/internal/repository/task"
	userrepo "github.com/kailas-cloud/promemo/internal/repository/user"
	"github.com/kailas-cloud/promemo/internal/scheduler"
	chiTransport "github.com/kailas-cloud/promemo/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/promemo/internal/transport/openai"
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
	"github.com/kailas-cloud/promemo/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting promemo API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register cache metrics explicitly (no init())
	metrics.RegisterCacheMetrics()

	// Repositories
	prefix := cfg.Database.KeyPrefix
	users := userrepo.New(store, prefix)
	projects := projectrepo.New(store, prefix)
	tasks := taskrepo.New(store, prefix)
	notifications := notificationrepo.New(store, prefix)
	activities := activityrepo.New(store, prefix)

	// Use case services
	activitySvc := activityuc.New(activities)
	notificationSvc := notificationuc.New(notifications, users, logger)

	authSvc := authuc.New(users, cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMin)*time.Minute)
	userSvc := useruc.New(users)
	projectSvc := projectuc.New(projects, tasks, activitySvc, notificationSvc, logger)
	taskSvc := taskuc.New(tasks, projects, activitySvc, notificationSvc, logger)
	searchSvc := searchuc.New(tasks, projects, users,
		cfg.Search.DefaultLimit, cfg.Search.MaxLimit, cfg.Search.SuggestionsLimit)
	exportSvc := exportuc.New(tasks, projects, taskSvc, cfg.Export.MaxImportRecords, logger)
	bulkSvc := bulkuc.New(tasks, projects, logger)
	analyticsSvc := analyticsuc.New(tasks, projects)

	var completer assistantuc.Completer
	if cfg.Assistant.APIKey != "" {
		completer = openaiTransport.NewCompleter(&openaiTransport.Config{
			APIKey:  cfg.Assistant.APIKey,
			BaseURL: cfg.Assistant.BaseURL,
			Model:   cfg.Assistant.Model,
			Logger:  logger,
		})
		logger.Info("Assistant enabled", zap.String("model", cfg.Assistant.Model))
	}
	assistantSvc := assistantuc.New(completer, tasks)

	healthSvc := healthuc.New(store)

	// Response cache
	var responseCache chiTransport.ResponseCache
	if cfg.Cache.Enabled {
		responseCache = cacherepo.New(store)
	}
	cacheMw := chiTransport.NewCacheMiddleware(
		responseCache, time.Duration(cfg.Cache.DefaultTTL)*time.Second, cfg.Cache.Enabled, logger,
	)

	// Background jobs
	sched := scheduler.New(logger)
	sched.Every("notification-cleanup",
		time.Duration(cfg.Jobs.NotificationCleanupMin)*time.Minute,
		func(ctx context.Context) error {
			maxAge := time.Duration(cfg.Jobs.NotificationMaxAgeDays) * 24 * time.Hour
			n, err := notificationSvc.CleanupOlderThan(ctx, maxAge)
			if err != nil {
				return fmt.Errorf("notification cleanup: %w", err)
			}
			if n > 0 {
				logger.Info("Cleaned up notifications", zap.Int("count", n))
			}
			return nil
		})
	if responseCache != nil {
		// Safety net for entries whose TTL never fired (e.g. after a config change).
		sched.Every("cache-sweep",
			time.Duration(cfg.Jobs.CacheSweepMin)*time.Minute,
			func(ctx context.Context) error {
				n, err := responseCache.Invalidate(ctx, "*")
				if err != nil {
					return fmt.Errorf("cache sweep: %w", err)
				}
				if n > 0 {
					logger.Info("Swept response cache", zap.Int("entries", n))
				}
				return nil
			})
	}
	defer sched.Stop()

	server := chiTransport.NewServer(
		authSvc, userSvc, projectSvc, taskSvc, searchSvc, exportSvc, bulkSvc,
		analyticsSvc, assistantSvc, notificationSvc, activitySvc, healthSvc,
		&adminReader{users: users, projects: projects, tasks: tasks},
		cacheMw, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(corsMiddleware(cfg.CORS.AllowedOrigin))
	r.Use(chiTransport.BearerAuthMiddleware(authSvc))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// adminReader exposes repository counts to the admin stats endpoint.
type adminReader struct {
	users    *userrepo.Repo
	projects *projectrepo.Repo
	tasks    *taskrepo.Repo
}

func (a *adminReader) CountUsers(ctx context.Context) (int, error)    { return a.users.Count(ctx) }
func (a *adminReader) CountProjects(ctx context.Context) (int, error) { return a.projects.Count(ctx) }
func (a *adminReader) CountTasks(ctx context.Context) (int, error)    { return a.tasks.Count(ctx) }

var _ db.Store = (*dbRedis.Store)(nil)

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]any{
						"success": false,
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// corsMiddleware allows the configured frontend origin. Empty origin disables CORS headers.
func corsMiddleware(origin string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if origin == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
