package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/gateway"
	apperrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, options ...gateway.ClientOption) *gateway.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := gateway.NewClient(srv.URL+"/api/", options...)
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := gateway.NewClient("  ")
	require.Error(t, err)
}

func TestClient_Login(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api"+gateway.PathLogin, r.URL.Path)
		require.NotEmpty(t, r.Header.Get(gateway.RequestIDHeader))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "jane@example.com", body["email"])
		require.Equal(t, "secret", body["password"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"Success","data":{"accessToken":"a","refreshToken":"r","roles":["User"],"profileCompleted":true}}`))
	})

	env, err := c.Login(context.Background(), "jane@example.com", "secret")
	require.NoError(t, err)
	require.True(t, env.IsSuccess())
	require.Equal(t, http.StatusOK, env.HTTPStatus)
	require.Equal(t, "a", env.Data.AccessToken)
	require.Equal(t, []string{"User"}, env.Data.Roles)
	require.True(t, env.Data.ProfileCompleted)
}

func TestClient_ErrorEnvelopeIsReturnedAsData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"Error","message":"Invalid email or password"}`))
	})

	env, err := c.Login(context.Background(), "jane@example.com", "wrong")
	require.NoError(t, err)
	require.False(t, env.IsSuccess())
	require.Equal(t, http.StatusUnauthorized, env.HTTPStatus)
	require.Equal(t, "Invalid email or password", env.Message)
}

func TestClient_NonEnvelopeErrors(t *testing.T) {
	t.Run("4xx plain text", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad request", http.StatusBadRequest)
		})
		_, err := c.Refresh(context.Background(), "r")
		require.ErrorIs(t, err, apperrors.ErrGatewayRejected)
		var statusErr *gateway.StatusError
		require.ErrorAs(t, err, &statusErr)
		require.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	})

	t.Run("5xx empty", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		_, err := c.Refresh(context.Background(), "r")
		require.ErrorIs(t, err, apperrors.ErrGatewayUnavailable)
	})

	t.Run("transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c, err := gateway.NewClient(srv.URL)
		require.NoError(t, err)
		_, err = c.Login(context.Background(), "a", "b")
		require.ErrorIs(t, err, apperrors.ErrGatewayUnavailable)
	})
}

func TestClient_Refresh(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api"+gateway.PathRefresh, r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "refresh-1", body["refreshToken"])
		_, _ = w.Write([]byte(`{"status":"Success","data":{"accessToken":"access-2"}}`))
	})

	env, err := c.Refresh(context.Background(), "refresh-1")
	require.NoError(t, err)
	require.True(t, env.IsSuccess())
	require.Equal(t, "access-2", env.Data.AccessToken)
	require.Nil(t, env.Data.RefreshToken)
}

func TestClient_Logout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`anything at all`))
	})
	require.NoError(t, c.Logout(context.Background(), "access-1"))
}

func TestClient_SocialLogins(t *testing.T) {
	paths := make(chan string, 2)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "social-token", body["token"])
		_, _ = w.Write([]byte(`{"status":"Success","data":{"accessToken":"a","refreshToken":"r","roles":["Trainer"]}}`))
	})

	env, err := c.GoogleLogin(context.Background(), "social-token")
	require.NoError(t, err)
	require.True(t, env.IsSuccess())
	require.Equal(t, "/api"+gateway.PathGoogleLogin, <-paths)

	env, err = c.FacebookLogin(context.Background(), "social-token")
	require.NoError(t, err)
	require.True(t, env.IsSuccess())
	require.Equal(t, "/api"+gateway.PathFacebookLogin, <-paths)
}

func TestClient_Register(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req gateway.RegistrationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "jane@example.com", req.Email)
		_, _ = w.Write([]byte(`{"statusCode":200,"message":"Registered"}`))
	})
	resp, err := c.Register(context.Background(), gateway.RegistrationRequest{Email: "jane@example.com", Password: "p", ConfirmPassword: "p"})
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"Success","data":{"accessToken":"a"}}`))
	}, gateway.WithRateLimit(0.001, 1), gateway.WithTimeout(time.Second))

	_, err := c.Refresh(context.Background(), "r")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Refresh(ctx, "r")
	require.ErrorIs(t, err, apperrors.ErrGatewayUnavailable)
}
