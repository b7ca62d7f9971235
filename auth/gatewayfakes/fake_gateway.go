package gatewayfakes

import (
	"context"
	"errors"
	"sync"

	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/gateway"
)

var _ auth.Gateway = (*FakeGateway)(nil)

// ErrNotConfigured is returned by calls with no handler set.
var ErrNotConfigured = errors.New("fake gateway: handler not configured")

// Operation names accepted by Calls.
const (
	OpLogin         = "login"
	OpRefresh       = "refresh"
	OpLogout        = "logout"
	OpGoogleLogin   = "google-login"
	OpFacebookLogin = "facebook-login"
	OpRegister      = "register"
)

// FakeGateway is a programmable auth.Gateway. Each handler may be replaced
// between calls; unset handlers return ErrNotConfigured, except Logout
// which succeeds.
type FakeGateway struct {
	lock  sync.Mutex
	calls map[string]int

	loginFunc         func(ctx context.Context, email, password string) (*gateway.LoginEnvelope, error)
	refreshFunc       func(ctx context.Context, refreshToken string) (*gateway.RefreshEnvelope, error)
	logoutFunc        func(ctx context.Context, accessToken string) error
	googleLoginFunc   func(ctx context.Context, idToken string) (*gateway.LoginEnvelope, error)
	facebookLoginFunc func(ctx context.Context, accessToken string) (*gateway.LoginEnvelope, error)
	registerFunc      func(ctx context.Context, req gateway.RegistrationRequest) (*gateway.RegisterResponse, error)
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		calls: make(map[string]int),
	}
}

func (g *FakeGateway) OnLogin(fn func(ctx context.Context, email, password string) (*gateway.LoginEnvelope, error)) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.loginFunc = fn
}

func (g *FakeGateway) OnRefresh(fn func(ctx context.Context, refreshToken string) (*gateway.RefreshEnvelope, error)) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.refreshFunc = fn
}

func (g *FakeGateway) OnLogout(fn func(ctx context.Context, accessToken string) error) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.logoutFunc = fn
}

func (g *FakeGateway) OnGoogleLogin(fn func(ctx context.Context, idToken string) (*gateway.LoginEnvelope, error)) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.googleLoginFunc = fn
}

func (g *FakeGateway) OnFacebookLogin(fn func(ctx context.Context, accessToken string) (*gateway.LoginEnvelope, error)) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.facebookLoginFunc = fn
}

func (g *FakeGateway) OnRegister(fn func(ctx context.Context, req gateway.RegistrationRequest) (*gateway.RegisterResponse, error)) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.registerFunc = fn
}

// Calls returns how many times op has been invoked.
func (g *FakeGateway) Calls(op string) int {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.calls[op]
}

func (g *FakeGateway) record(op string) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.calls[op]++
}

func (g *FakeGateway) Login(ctx context.Context, email, password string) (*gateway.LoginEnvelope, error) {
	g.record(OpLogin)
	g.lock.Lock()
	fn := g.loginFunc
	g.lock.Unlock()
	if fn == nil {
		return nil, ErrNotConfigured
	}
	return fn(ctx, email, password)
}

func (g *FakeGateway) Refresh(ctx context.Context, refreshToken string) (*gateway.RefreshEnvelope, error) {
	g.record(OpRefresh)
	g.lock.Lock()
	fn := g.refreshFunc
	g.lock.Unlock()
	if fn == nil {
		return nil, ErrNotConfigured
	}
	return fn(ctx, refreshToken)
}

func (g *FakeGateway) Logout(ctx context.Context, accessToken string) error {
	g.record(OpLogout)
	g.lock.Lock()
	fn := g.logoutFunc
	g.lock.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx, accessToken)
}

func (g *FakeGateway) GoogleLogin(ctx context.Context, idToken string) (*gateway.LoginEnvelope, error) {
	g.record(OpGoogleLogin)
	g.lock.Lock()
	fn := g.googleLoginFunc
	g.lock.Unlock()
	if fn == nil {
		return nil, ErrNotConfigured
	}
	return fn(ctx, idToken)
}

func (g *FakeGateway) FacebookLogin(ctx context.Context, accessToken string) (*gateway.LoginEnvelope, error) {
	g.record(OpFacebookLogin)
	g.lock.Lock()
	fn := g.facebookLoginFunc
	g.lock.Unlock()
	if fn == nil {
		return nil, ErrNotConfigured
	}
	return fn(ctx, accessToken)
}

func (g *FakeGateway) Register(ctx context.Context, req gateway.RegistrationRequest) (*gateway.RegisterResponse, error) {
	g.record(OpRegister)
	g.lock.Lock()
	fn := g.registerFunc
	g.lock.Unlock()
	if fn == nil {
		return nil, ErrNotConfigured
	}
	return fn(ctx, req)
}

// LoginSuccess builds a successful login envelope.
func LoginSuccess(accessToken, refreshToken string, profileCompleted bool, roles ...string) *gateway.LoginEnvelope {
	return &gateway.LoginEnvelope{
		Status:     gateway.StatusSuccess,
		StatusCode: 200,
		Message:    "Login successful",
		Data: &gateway.LoginData{
			AccessToken:      accessToken,
			RefreshToken:     refreshToken,
			Roles:            roles,
			ProfileCompleted: profileCompleted,
		},
		HTTPStatus: 200,
	}
}

// LoginFailure builds a rejected login envelope.
func LoginFailure(message string) *gateway.LoginEnvelope {
	return &gateway.LoginEnvelope{
		Status:     "Error",
		StatusCode: 401,
		Message:    message,
		HTTPStatus: 401,
	}
}

// RefreshSuccess builds a successful refresh envelope. An empty refreshToken
// models a gateway that does not rotate refresh tokens.
func RefreshSuccess(accessToken, refreshToken string) *gateway.RefreshEnvelope {
	data := &gateway.RefreshData{AccessToken: accessToken}
	if refreshToken != "" {
		data.RefreshToken = &refreshToken
	}
	return &gateway.RefreshEnvelope{
		Status:     gateway.StatusSuccess,
		StatusCode: 200,
		Data:       data,
		HTTPStatus: 200,
	}
}

// RefreshFailure builds a rejected refresh envelope.
func RefreshFailure(message string) *gateway.RefreshEnvelope {
	return &gateway.RefreshEnvelope{
		Status:     "Error",
		StatusCode: 401,
		Message:    message,
		HTTPStatus: 401,
	}
}
