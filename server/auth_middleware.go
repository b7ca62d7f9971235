package server

import (
	"net/http"

	"github.com/jrsteele09/go-auth-client/roles"
)

// RequireSession rejects requests with 401 while no session is installed.
func (s *Server) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.sessions.Authenticated() {
			writeJSONError(w, "unauthorized", "No active session", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePermission rejects requests with 403 unless the session may act as role.
// Should be chained after RequireSession.
func (s *Server) RequirePermission(role roles.RoleType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !s.sessions.HasPermission(role) {
				writeJSONError(w, "forbidden", string(role)+" role required", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
