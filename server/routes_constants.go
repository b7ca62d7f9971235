package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Session Routes
	RouteSession                 = "/session"
	RouteSessionLogin            = "/session/login"
	RouteSessionGoogleLogin      = "/session/google-login"
	RouteSessionFacebookLogin    = "/session/facebook-login"
	RouteSessionRegister         = "/session/register"
	RouteSessionLogout           = "/session/logout"
	RouteSessionRefresh          = "/session/refresh"
	RouteSessionProfileCompleted = "/session/profile-completed"
	RouteSessionPermission       = "/session/permissions/{role}"

	// API proxy
	RouteAPI        = "/api"
	RouteAPITrainer = "/api/trainer"
	RouteAPIAdmin   = "/api/admin"

	// Operational Routes
	RouteMetrics = "/metrics"
)
