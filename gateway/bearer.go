package gateway

import (
	"net/http"

	apperrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/sessions"
	"golang.org/x/oauth2"
)

// SessionLoader reads the persisted session. *sessions.CredentialStore
// satisfies it.
type SessionLoader interface {
	Load() *sessions.Record
}

// storedSessionTokenSource reads the credential store on every call so the
// header always carries the latest committed access token. It is never
// wrapped in oauth2.ReuseTokenSource, which would cache a superseded token.
type storedSessionTokenSource struct {
	store SessionLoader
}

// NewTokenSource returns an oauth2.TokenSource over the persisted session.
// Token fails with ErrNoSession while unauthenticated.
func NewTokenSource(store SessionLoader) oauth2.TokenSource {
	return storedSessionTokenSource{store: store}
}

func (s storedSessionTokenSource) Token() (*oauth2.Token, error) {
	rec := s.store.Load()
	if rec == nil {
		return nil, apperrors.ErrNoSession
	}
	return &oauth2.Token{
		AccessToken: rec.Session.AccessToken,
		TokenType:   "Bearer",
	}, nil
}

// NewAuthorizedTransport wraps base so every request carries
// "Authorization: Bearer <accessToken>" from the credential store.
func NewAuthorizedTransport(store SessionLoader, base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &oauth2.Transport{
		Source: NewTokenSource(store),
		Base:   base,
	}
}

// NewAuthorizedClient returns a copy of base using the bearer interceptor.
func NewAuthorizedClient(store SessionLoader, base *http.Client) *http.Client {
	if base == nil {
		base = &http.Client{}
	}
	c := *base
	c.Transport = NewAuthorizedTransport(store, base.Transport)
	return &c
}
