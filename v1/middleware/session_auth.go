package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/raven2t2/importiq-backend/shared/utils"
	"github.com/raven2t2/importiq-backend/v1/services"
	v1utils "github.com/raven2t2/importiq-backend/v1/utils"
)

// publicRoute marks an endpoint that does not require a session
type publicRoute struct {
	Method string // empty matches any method
	Prefix string
}

// defaultPublicRoutes lists the unauthenticated surface: registration,
// login, password reset and affiliate signup. Everything else under /api/v1
// requires a session.
var defaultPublicRoutes = []publicRoute{
	{Method: http.MethodPost, Prefix: "/api/v1/users/register"},
	{Method: http.MethodPost, Prefix: "/api/v1/users/login"},
	{Method: http.MethodPost, Prefix: "/api/v1/users/password-reset"},
	{Method: http.MethodPost, Prefix: "/api/v1/affiliate/signup"},
}

// SessionAuthMiddleware resolves bearer session tokens to users and guards
// the authenticated API surface.
type SessionAuthMiddleware struct {
	authService  *services.AuthService
	publicRoutes []publicRoute
}

// NewSessionAuthMiddleware creates the session middleware with the default
// public route list.
func NewSessionAuthMiddleware(authService *services.AuthService) *SessionAuthMiddleware {
	return &SessionAuthMiddleware{
		authService:  authService,
		publicRoutes: defaultPublicRoutes,
	}
}

// Authenticate validates the session token and stores the user in request
// context. Public routes pass through; a valid token on a public route still
// attaches the user so handlers can personalize responses.
func (m *SessionAuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, tokenErr := v1utils.ExtractBearerToken(r)

		if tokenErr == nil {
			user, err := m.authService.ValidateSession(r.Context(), token)
			switch {
			case err == nil:
				next.ServeHTTP(w, r.WithContext(v1utils.SetAuthenticatedUser(r.Context(), user)))
				return
			case errors.Is(err, services.ErrSessionExpired):
				if !m.isPublicRoute(r) {
					utils.RespondWithError(w, http.StatusUnauthorized, "Session expired")
					return
				}
			case errors.Is(err, services.ErrSessionNotFound):
				if !m.isPublicRoute(r) {
					utils.RespondWithError(w, http.StatusUnauthorized, "Invalid session token")
					return
				}
			default:
				slog.Error("Session validation failed", "error", err)
				utils.RespondWithError(w, http.StatusInternalServerError, "Failed to validate session")
				return
			}
		}

		if m.isPublicRoute(r) {
			next.ServeHTTP(w, r)
			return
		}

		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
	})
}

func (m *SessionAuthMiddleware) isPublicRoute(r *http.Request) bool {
	for _, route := range m.publicRoutes {
		if route.Method != "" && route.Method != r.Method {
			continue
		}
		if strings.HasPrefix(r.URL.Path, route.Prefix) {
			return true
		}
	}
	return false
}
