package chi

import (
	"context"
	"net/http"
	"strings"

	domuser "github.com/kailas-cloud/promemo/internal/domain/user"
)

type userCtxKey struct{}

// exemptPaths are routes that bypass authentication.
var exemptPaths = map[string]struct{}{
	"/health":               {},
	"/metrics":              {},
	"/api/v1/auth/register": {},
	"/api/v1/auth/login":    {},
}

// TokenVerifier resolves a bearer token to its user.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (domuser.User, error)
}

// BearerAuthMiddleware validates the Authorization header and stores the
// resolved user in the request context.
func BearerAuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized, "authorization header must use Bearer scheme")
				return
			}

			u, err := verifier.Verify(r.Context(), auth[len(bearerPrefix):])
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), userCtxKey{}, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// userFrom returns the authenticated user placed by BearerAuthMiddleware.
func userFrom(r *http.Request) (domuser.User, bool) {
	u, ok := r.Context().Value(userCtxKey{}).(domuser.User)
	return u, ok
}

// requireUser writes a 401 when no authenticated user is present.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (domuser.User, bool) {
	u, ok := userFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
	}
	return u, ok
}
