package sessions

import (
	"github.com/jrsteele09/go-auth-client/roles"
)

// Session is the authenticated principal's credential and claims bundle.
// A Session is either absent or carries both tokens; partial sessions are
// never installed or persisted.
type Session struct {
	AccessToken      string    `json:"accessToken"`      // Short-lived bearer credential (JWT)
	RefreshToken     string    `json:"refreshToken"`     // Opaque credential used only to mint access tokens
	Roles            roles.Set `json:"roles"`            // Role claims returned by the gateway
	ProfileCompleted bool      `json:"profileCompleted"` // Onboarding gate
}

// Valid reports whether both tokens are present.
func (s Session) Valid() bool {
	return s.AccessToken != "" && s.RefreshToken != ""
}

// Clone returns a snapshot that shares no mutable state with s.
func (s Session) Clone() Session {
	s.Roles = s.Roles.Clone()
	return s
}

// WithTokens returns a copy carrying a new access token. The refresh token is
// replaced only when refreshToken is non-empty, so gateways that do not
// rotate refresh tokens keep the previous one.
func (s Session) WithTokens(accessToken, refreshToken string) Session {
	next := s.Clone()
	next.AccessToken = accessToken
	if refreshToken != "" {
		next.RefreshToken = refreshToken
	}
	return next
}

// Record is the persisted form of a Session: the serialized session under
// the "user" key plus the companion "isProfileCompleted" flag.
type Record struct {
	Session          Session
	ProfileCompleted bool
}

// NewRecord builds the record persisted for s.
func NewRecord(s Session) Record {
	return Record{Session: s.Clone(), ProfileCompleted: s.ProfileCompleted}
}
