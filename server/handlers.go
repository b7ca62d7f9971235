package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/go-auth-client/gateway"
	apperrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/roles"
)

const maxBodyBytes = 1 << 20

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type socialLoginRequest struct {
	Token string `json:"token"`
}

type profileCompletedRequest struct {
	ProfileCompleted bool `json:"profileCompleted"`
}

// SessionStatus describes the current session without exposing tokens.
type SessionStatus struct {
	Authenticated     bool       `json:"authenticated"`
	Roles             []string   `json:"roles"`
	ProfileCompleted  bool       `json:"profileCompleted"`
	AccessTokenExpiry *time.Time `json:"accessTokenExpiry,omitempty"`
	Freshness         string     `json:"freshness,omitempty"`
}

type permissionResponse struct {
	Role    string `json:"role"`
	Allowed bool   `json:"allowed"`
}

// SessionStatusHandler reports whether a session is installed and what it may do.
func (s *Server) SessionStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := SessionStatus{Roles: []string{}}
		if snapshot, ok := s.sessions.Snapshot(); ok {
			status.Authenticated = true
			status.Roles = snapshot.Roles.Strings()
			status.ProfileCompleted = s.sessions.ProfileCompleted()
			if freshness, expiry, ok := s.sessions.Freshness(); ok {
				status.Freshness = freshness.String()
				if !expiry.IsZero() {
					status.AccessTokenExpiry = &expiry
				}
			}
		}
		writeJSON(w, http.StatusOK, status)
	}
}

// LoginHandler signs in with email and password. Missing credentials are
// rejected with 400 before the gateway is called and leave any existing
// session in place.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Email == "" || req.Password == "" {
			writeJSONError(w, "invalid_request", "email and password are required", http.StatusBadRequest)
			return
		}

		result := s.sessions.Login(r.Context(), req.Email, req.Password)
		status := http.StatusOK
		if !result.Success {
			status = http.StatusUnauthorized
		}
		writeJSON(w, status, result)
	}
}

func (s *Server) GoogleLoginHandler() http.HandlerFunc {
	return s.socialLoginHandler(s.sessions.GoogleLogin)
}

func (s *Server) FacebookLoginHandler() http.HandlerFunc {
	return s.socialLoginHandler(s.sessions.FacebookLogin)
}

// socialLoginHandler writes the gateway's login envelope back unchanged,
// tokens included. It is the only endpoint that hands out the refresh token;
// SessionStatusHandler never does.
func (s *Server) socialLoginHandler(login func(ctx context.Context, token string) (*gateway.LoginEnvelope, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req socialLoginRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Token == "" {
			writeJSONError(w, "invalid_request", "token is required", http.StatusBadRequest)
			return
		}

		env, err := login(r.Context(), req.Token)
		switch {
		case env == nil && err != nil:
			var statusErr *gateway.StatusError
			if apperrors.As(err, &statusErr) && statusErr.StatusCode < http.StatusInternalServerError {
				writeJSONError(w, "login_failed", "Login was rejected", statusErr.StatusCode)
				return
			}
			writeJSONError(w, "bad_gateway", "Identity service unavailable", http.StatusBadGateway)
		case apperrors.Is(err, apperrors.ErrAccessDenied):
			writeJSON(w, http.StatusForbidden, env)
		case err != nil:
			s.logger.Warn().Err(err).Msg("social login failed")
			writeJSONError(w, "login_failed", "Login could not be completed", http.StatusBadGateway)
		case !env.IsSuccess() && env.HTTPStatus >= http.StatusBadRequest:
			writeJSON(w, env.HTTPStatus, env)
		default:
			writeJSON(w, http.StatusOK, env)
		}
	}
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req gateway.RegistrationRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		result := s.sessions.Register(r.Context(), req)
		status := http.StatusOK
		if !result.Success {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, result)
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.sessions.Logout(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.sessions.Refresh(r.Context()); err != nil {
			writeJSONError(w, "unauthorized", err.Error(), http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"accessTokenRefreshed": true})
	}
}

func (s *Server) ProfileCompletedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req profileCompletedRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		err := s.sessions.MarkProfileCompleted(req.ProfileCompleted)
		switch {
		case apperrors.Is(err, apperrors.ErrNoSession):
			writeJSONError(w, "unauthorized", "No active session", http.StatusUnauthorized)
		case err != nil:
			s.logger.Error().Err(err).Msg("failed to update profile flag")
			writeJSONError(w, "internal_error", "Could not update profile", http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}
}

func (s *Server) PermissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := chi.URLParam(r, "role")
		writeJSON(w, http.StatusOK, permissionResponse{
			Role:    role,
			Allowed: s.sessions.HasPermission(roles.RoleType(role)),
		})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, "invalid_request", "Malformed JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}
