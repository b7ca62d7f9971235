package jwt

import (
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-auth-client/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// DefaultExpiryBuffer is how long before expiry a token is treated as nearing expiry.
const DefaultExpiryBuffer = 5 * time.Minute

// Freshness classifies an access token relative to now.
type Freshness int

const (
	Fresh Freshness = iota
	NearingExpiry
	Expired
)

func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "fresh"
	case NearingExpiry:
		return "nearing_expiry"
	default:
		return "expired"
	}
}

// Inspector reads the expiry embedded in a bearer token. It performs NO
// signature verification: the result is a client-side freshness hint and
// must never be used for identity or trust decisions.
type Inspector struct {
	nowFunc func() time.Time
	buffer  time.Duration
}

// InspectorOption defines a function type to modify the Inspector.
type InspectorOption func(*Inspector)

// WithNowFunc sets the clock (primarily for testing).
func WithNowFunc(now func() time.Time) InspectorOption {
	return func(i *Inspector) {
		i.nowFunc = now
	}
}

// WithExpiryBuffer sets the default nearing-expiry window.
func WithExpiryBuffer(buffer time.Duration) InspectorOption {
	return func(i *Inspector) {
		if buffer >= 0 {
			i.buffer = buffer
		}
	}
}

func NewInspector(options ...InspectorOption) *Inspector {
	i := &Inspector{
		buffer: DefaultExpiryBuffer,
	}
	for _, opt := range options {
		opt(i)
	}
	if i.nowFunc == nil {
		i.nowFunc = func() time.Time { return NowTimeFunc() }
	}
	return i
}

// ParseExpiry decodes the unverified "exp" claim. The signature is not
// checked; the gateway remains the only authority on token validity.
// Errors wrap ErrMalformedToken.
func ParseExpiry(rawToken string) (time.Time, error) {
	if strings.TrimSpace(rawToken) == "" {
		return time.Time{}, apperrors.Wrapf(apperrors.ErrMalformedToken, "[ParseExpiry] empty token")
	}
	unverifiedToken, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("[ParseExpiry] %w: %w", apperrors.ErrMalformedToken, err)
	}
	exp, err := unverifiedToken.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("[ParseExpiry] exp claim: %w: %w", apperrors.ErrMalformedToken, err)
	}
	if exp == nil {
		return time.Time{}, apperrors.Wrapf(apperrors.ErrMalformedToken, "[ParseExpiry] no exp claim")
	}
	return exp.Time, nil
}

// ExpiryOf is ParseExpiry without the error. ok is false when the token is
// blank, malformed or carries no expiry.
func ExpiryOf(rawToken string) (expiry time.Time, ok bool) {
	expiry, err := ParseExpiry(rawToken)
	return expiry, err == nil
}

// ExpiryOf decodes the unverified "exp" claim.
func (i *Inspector) ExpiryOf(rawToken string) (time.Time, bool) {
	return ExpiryOf(rawToken)
}

// Buffer returns the configured nearing-expiry window.
func (i *Inspector) Buffer() time.Duration {
	return i.buffer
}

// Classify reports the freshness of rawToken against buffer. Tokens without
// a decodable expiry are Expired.
func (i *Inspector) Classify(rawToken string, buffer time.Duration) Freshness {
	exp, ok := ExpiryOf(rawToken)
	if !ok {
		return Expired
	}
	now := i.nowFunc()
	if !exp.After(now) {
		return Expired
	}
	if !exp.After(now.Add(buffer)) {
		return NearingExpiry
	}
	return Fresh
}

// IsNearingExpiry is true when the token is undecodable, expired, or expires
// within the configured buffer.
func (i *Inspector) IsNearingExpiry(rawToken string) bool {
	return i.IsNearingExpiryWithin(rawToken, i.buffer)
}

// IsNearingExpiryWithin is IsNearingExpiry with an explicit buffer.
func (i *Inspector) IsNearingExpiryWithin(rawToken string, buffer time.Duration) bool {
	return i.Classify(rawToken, buffer) != Fresh
}
