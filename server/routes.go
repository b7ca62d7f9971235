package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/go-auth-client/roles"
)

func (s *Server) initRoutes() {
	r := chi.NewRouter()
	r.Use(s.RequestIDMiddleware, s.RecoverMiddleware, s.LoggingMiddleware, s.CorsMiddleware())

	// SESSION
	r.Get(RouteSession, s.SessionStatusHandler())
	r.Post(RouteSessionLogin, s.LoginHandler())
	r.Post(RouteSessionGoogleLogin, s.GoogleLoginHandler())
	r.Post(RouteSessionFacebookLogin, s.FacebookLoginHandler())
	r.Post(RouteSessionRegister, s.RegisterHandler())
	r.Post(RouteSessionLogout, s.LogoutHandler())
	r.Post(RouteSessionRefresh, s.RefreshHandler())
	r.Put(RouteSessionProfileCompleted, s.ProfileCompletedHandler())
	r.Get(RouteSessionPermission, s.PermissionHandler())

	// API proxy (requires an installed session)
	proxy := s.APIProxyHandler()
	r.Group(func(r chi.Router) {
		r.Use(s.RequireSession)
		r.With(s.RequirePermission(roles.RoleTrainer)).Handle(RouteAPITrainer+"/*", proxy)
		r.With(s.RequirePermission(roles.RoleAdmin)).Handle(RouteAPIAdmin+"/*", proxy)
		r.Handle(RouteAPI+"/*", proxy)
	})

	if s.metrics != nil {
		r.Method("GET", RouteMetrics, s.metrics)
	}

	s.router = r
}
