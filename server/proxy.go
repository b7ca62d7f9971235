package server

import (
	"net/http"
	"net/http/httputil"
	"strings"

	"github.com/jrsteele09/go-auth-client/gateway"
	apperrors "github.com/jrsteele09/go-auth-client/internal/errors"
)

// APIProxyHandler forwards /api/* to the REST API. The path below /api is
// appended to the API base URL and the stored access token is attached by
// the bearer transport, replacing any Authorization header from the caller.
func (s *Server) APIProxyHandler() http.Handler {
	target := s.apiBase
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL.Path = strings.TrimPrefix(pr.In.URL.Path, RouteAPI)
			pr.Out.URL.RawPath = ""
			pr.SetURL(target)
			pr.SetXForwarded()
			if id := RequestIDFromContext(pr.In.Context()); id != "" {
				pr.Out.Header.Set(RequestIDHeader, id)
			}
		},
		Transport: gateway.NewAuthorizedTransport(s.store, s.proxyTransport),
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			if apperrors.Is(err, apperrors.ErrNoSession) {
				writeJSONError(w, "unauthorized", "No active session", http.StatusUnauthorized)
				return
			}
			s.logger.Warn().Err(err).
				Str("request_id", RequestIDFromContext(r.Context())).
				Str("path", r.URL.Path).
				Msg("api proxy request failed")
			writeJSONError(w, "bad_gateway", "API unavailable", http.StatusBadGateway)
		},
	}
}
