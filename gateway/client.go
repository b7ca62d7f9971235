// Package gateway is the REST client for the identity gateway and the bearer
// interceptor shared by every authenticated HTTP caller.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	PathLogin         = "/Auth/login"
	PathRefresh       = "/Auth/refresh-token"
	PathLogout        = "/Auth/logout"
	PathGoogleLogin   = "/Auth/google-login"
	PathFacebookLogin = "/Auth/facebook-login"
	PathRegister      = "/Auth/register"

	RequestIDHeader  = "X-Request-ID"
	maxResponseBytes = 1 << 20
	defaultTimeout   = 15 * time.Second
)

// StatusError is returned when the gateway answers with a non-2xx status and
// a body that is not a status envelope.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gateway %s returned %d", e.Path, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode >= http.StatusInternalServerError {
		return apperrors.ErrGatewayUnavailable
	}
	return apperrors.ErrGatewayRejected
}

// Client calls the identity gateway REST endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// ClientOption defines a function type to modify the Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithRateLimit throttles outgoing calls to rps requests per second. A
// non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a gateway client rooted at baseURL (e.g. "https://host/api").
func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("[gateway.NewClient] baseURL is required")
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     log.Logger.With().Str("component", "gateway").Logger(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the REST API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges email and password for a session.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginEnvelope, error) {
	env := &LoginEnvelope{}
	if err := c.post(ctx, PathLogin, credentialsRequest{Email: email, Password: password}, "", env); err != nil {
		return nil, err
	}
	return env, nil
}

// Refresh mints a new access token from a refresh token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*RefreshEnvelope, error) {
	env := &RefreshEnvelope{}
	if err := c.post(ctx, PathRefresh, refreshRequest{RefreshToken: refreshToken}, "", env); err != nil {
		return nil, err
	}
	return env, nil
}

// Logout notifies the gateway that the bearer's session ended. Any 2xx
// answer is a success, whatever the body.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	return c.post(ctx, PathLogout, nil, accessToken, nil)
}

// GoogleLogin hands a Google ID token to the gateway for verification.
func (c *Client) GoogleLogin(ctx context.Context, idToken string) (*LoginEnvelope, error) {
	env := &LoginEnvelope{}
	if err := c.post(ctx, PathGoogleLogin, tokenRequest{Token: idToken}, "", env); err != nil {
		return nil, err
	}
	return env, nil
}

// FacebookLogin hands a Facebook access token to the gateway for verification.
func (c *Client) FacebookLogin(ctx context.Context, accessToken string) (*LoginEnvelope, error) {
	env := &LoginEnvelope{}
	if err := c.post(ctx, PathFacebookLogin, tokenRequest{Token: accessToken}, "", env); err != nil {
		return nil, err
	}
	return env, nil
}

// Register creates an account. It does not sign the user in.
func (c *Client) Register(ctx context.Context, req RegistrationRequest) (*RegisterResponse, error) {
	resp := &RegisterResponse{}
	if err := c.post(ctx, PathRegister, req, "", resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// post sends body as JSON and decodes the answer into out. Error statuses
// that still carry a decodable body are returned to the caller as data so
// the gateway's message can be surfaced.
func (c *Client) post(ctx context.Context, path string, body any, bearer string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("[gateway %s] rate limit: %w: %w", path, apperrors.ErrGatewayUnavailable, err)
		}
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrapf(err, "[gateway %s] marshal", path)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return apperrors.Wrapf(err, "[gateway %s] new request", path)
	}
	requestID := uuid.New().String()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("path", path).Str("request_id", requestID).Msg("gateway call failed")
		return fmt.Errorf("[gateway %s] %w: %w", path, apperrors.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("[gateway %s] read body: %w: %w", path, apperrors.ErrGatewayUnavailable, err)
	}
	c.logger.Debug().
		Str("path", path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("gateway call")

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		if !ok {
			return &StatusError{Path: path, StatusCode: resp.StatusCode, Body: string(data)}
		}
		if out != nil {
			return fmt.Errorf("[gateway %s] empty response body", path)
		}
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		if !ok {
			return &StatusError{Path: path, StatusCode: resp.StatusCode, Body: string(data)}
		}
		return apperrors.Wrapf(err, "[gateway %s] decode", path)
	}
	if setter, isEnvelope := out.(interface{ setHTTPStatus(int) }); isEnvelope {
		setter.setHTTPStatus(resp.StatusCode)
	}
	return nil
}

func (e *Envelope[T]) setHTTPStatus(code int) {
	e.HTTPStatus = code
}
