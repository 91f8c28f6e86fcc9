package utils

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/raven2t2/importiq-backend/v1/models"
)

// AuthContextKey is the key type used to store authentication data in
// request context
type AuthContextKey string

// AuthContextKeyUser holds the authenticated *models.User
const AuthContextKeyUser AuthContextKey = "authenticated_user"

// ExtractBearerToken pulls the session token from the Authorization header,
// falling back to the `token` query parameter for download-style endpoints
// where headers cannot be set.
func ExtractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if token := r.URL.Query().Get("token"); token != "" {
			return token, nil
		}
		return "", fmt.Errorf("authorization header is missing")
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", fmt.Errorf("authorization header must start with 'Bearer '")
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", fmt.Errorf("bearer token is empty")
	}

	return token, nil
}

// SetAuthenticatedUser stores the authenticated user in request context
func SetAuthenticatedUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, AuthContextKeyUser, user)
}

// GetAuthenticatedUser retrieves the authenticated user from request context
func GetAuthenticatedUser(ctx context.Context) (*models.User, error) {
	user, ok := ctx.Value(AuthContextKeyUser).(*models.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("no authenticated user found in context")
	}
	return user, nil
}

// GetRequestIP extracts the client IP address from the request
func GetRequestIP(r *http.Request) string {
	// X-Forwarded-For first (load balancers/proxies); take the first IP
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	if r.RemoteAddr != "" {
		// RemoteAddr is "IP:port"
		if idx := strings.LastIndex(r.RemoteAddr, ":"); idx != -1 {
			return r.RemoteAddr[:idx]
		}
		return r.RemoteAddr
	}

	return "unknown"
}
