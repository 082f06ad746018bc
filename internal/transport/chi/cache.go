package chi

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/promemo/internal/metrics"
)

// ResponseCache is the store behind the read-through middleware.
type ResponseCache interface {
	Get(ctx context.Context, path string) ([]byte, bool, error)
	Set(ctx context.Context, path string, body []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) (int, error)
}

// CacheMiddleware serves GET responses from the cache and invalidates
// matching entries before mutations. Disabled instances pass everything
// through.
type CacheMiddleware struct {
	cache   ResponseCache
	ttl     time.Duration
	enabled bool
	logger  *zap.Logger
}

// NewCacheMiddleware creates the middleware. cache may be nil when caching
// is disabled.
func NewCacheMiddleware(cache ResponseCache, ttl time.Duration, enabled bool, logger *zap.Logger) *CacheMiddleware {
	return &CacheMiddleware{cache: cache, ttl: ttl, enabled: enabled && cache != nil, logger: logger}
}

// Cached short-circuits GET requests with a cached body. On a miss the
// handler runs and a 200 JSON response is stored under the request's
// path+query.
func (m *CacheMiddleware) Cached(next http.Handler) http.Handler {
	if !m.enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		key := r.URL.RequestURI()
		body, ok, err := m.cache.Get(r.Context(), key)
		if err != nil {
			m.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		if ok {
			metrics.CacheTotal.WithLabelValues("hit").Inc()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
			return
		}
		metrics.CacheTotal.WithLabelValues("miss").Inc()

		rec := &recordingWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		if rec.status == http.StatusOK {
			if err := m.cache.Set(r.Context(), key, rec.body.Bytes(), m.ttl); err != nil {
				m.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	})
}

// ClearCache removes every cached entry matching the glob pattern before the
// handler runs. Fire and forget: failures are logged, never block the
// request.
func (m *CacheMiddleware) ClearCache(pattern string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !m.enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			n, err := m.cache.Invalidate(r.Context(), pattern)
			if err != nil {
				m.logger.Warn("cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
			} else if n > 0 {
				metrics.CacheInvalidationsTotal.Add(float64(n))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// recordingWriter tees the response body so it can be cached.
type recordingWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (w *recordingWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
	}
	w.body.Write(b)
	return w.ResponseWriter.Write(b) //nolint:wrapcheck // delegating to underlying ResponseWriter
}
