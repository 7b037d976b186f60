package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"travel-discovery-backend/internal/baas"
	"travel-discovery-backend/internal/services"
)

type contextKey string

const (
	tokenKey   contextKey = "session_token"
	sessionKey contextKey = "session"
)

// Authenticator resolves a bearer token to its session state
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (services.SessionState, error)
}

// AuthMiddleware requires a valid bearer session token
func AuthMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			token := parts[1]
			st, err := auth.Authenticate(r.Context(), token)
			if err != nil || st.Session == nil {
				respondError(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), token, st.Session)))
		})
	}
}

// OptionalAuth attaches the session when a valid bearer token is present and
// lets anonymous requests through
func OptionalAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if ok && token != "" {
				if st, err := auth.Authenticate(r.Context(), token); err == nil && st.Session != nil {
					r = r.WithContext(WithSession(r.Context(), token, st.Session))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetToken extracts the session token from context
func GetToken(ctx context.Context) string {
	token, ok := ctx.Value(tokenKey).(string)
	if !ok {
		return ""
	}
	return token
}

// GetSession extracts the session from context
func GetSession(ctx context.Context) *baas.Session {
	session, _ := ctx.Value(sessionKey).(*baas.Session)
	return session
}

// GetUserID extracts the user ID from context
func GetUserID(ctx context.Context) string {
	if session := GetSession(ctx); session != nil {
		return session.UID
	}
	return ""
}

// WithSession returns ctx carrying token and session
func WithSession(ctx context.Context, token string, session *baas.Session) context.Context {
	ctx = context.WithValue(ctx, tokenKey, token)
	return context.WithValue(ctx, sessionKey, session)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write([]byte(`{"error":"` + message + `"}`))
}

// ValidateWebSocketToken validates a session token from the WebSocket query
// parameter
func ValidateWebSocketToken(ctx context.Context, token string, auth Authenticator) (services.SessionState, error) {
	if token == "" {
		return services.SessionState{}, fmt.Errorf("token required")
	}
	st, err := auth.Authenticate(ctx, token)
	if err != nil {
		return st, err
	}
	if st.Session == nil {
		return st, services.ErrInvalidToken
	}
	return st, nil
}
