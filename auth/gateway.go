package auth

import (
	"context"

	"github.com/jrsteele09/go-auth-client/gateway"
)

// Gateway is the identity backend the session manager talks to.
// *gateway.Client is the production implementation.
type Gateway interface {
	Login(ctx context.Context, email, password string) (*gateway.LoginEnvelope, error)
	Refresh(ctx context.Context, refreshToken string) (*gateway.RefreshEnvelope, error)
	Logout(ctx context.Context, accessToken string) error
	GoogleLogin(ctx context.Context, idToken string) (*gateway.LoginEnvelope, error)
	FacebookLogin(ctx context.Context, accessToken string) (*gateway.LoginEnvelope, error)
	Register(ctx context.Context, req gateway.RegistrationRequest) (*gateway.RegisterResponse, error)
}

var _ Gateway = (*gateway.Client)(nil)
