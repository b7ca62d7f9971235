package jwt_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/token/jwt"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func signedToken(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	tok, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("not-the-servers-key"))
	require.NoError(t, err)
	return tok
}

func expiringAt(t *testing.T, exp time.Time) string {
	return signedToken(t, jwtlib.MapClaims{"sub": "user-1", "exp": exp.Unix()})
}

func newInspector() *jwt.Inspector {
	return jwt.NewInspector(jwt.WithNowFunc(func() time.Time { return fixedNow }))
}

func TestExpiryOf(t *testing.T) {
	exp := fixedNow.Add(time.Hour)
	got, ok := jwt.ExpiryOf(expiringAt(t, exp))
	require.True(t, ok)
	require.True(t, got.Equal(exp))

	t.Run("signature is not verified", func(t *testing.T) {
		tok := expiringAt(t, exp)
		tampered := tok[:len(tok)-4] + "AAAA"
		_, ok := jwt.ExpiryOf(tampered)
		require.True(t, ok)
	})

	t.Run("malformed tokens", func(t *testing.T) {
		for _, raw := range []string{"", "   ", "not-a-jwt", "a.b.c", "eyJhbGciOiJIUzI1NiJ9.!!!.sig"} {
			_, ok := jwt.ExpiryOf(raw)
			require.False(t, ok, raw)
		}
	})

	t.Run("missing exp", func(t *testing.T) {
		_, ok := jwt.ExpiryOf(signedToken(t, jwtlib.MapClaims{"sub": "user-1"}))
		require.False(t, ok)
	})
}

func TestParseExpiry(t *testing.T) {
	exp := fixedNow.Add(time.Minute)
	got, err := jwt.ParseExpiry(expiringAt(t, exp))
	require.NoError(t, err)
	require.True(t, got.Equal(exp))

	for _, raw := range []string{"", "not-a-jwt", signedToken(t, jwtlib.MapClaims{"sub": "user-1"})} {
		_, err := jwt.ParseExpiry(raw)
		require.ErrorIs(t, err, apperrors.ErrMalformedToken, raw)
	}
}

func TestInspector_IsNearingExpiry(t *testing.T) {
	i := newInspector()

	tests := []struct {
		name     string
		token    string
		expected bool
	}{
		{"expires exactly now", expiringAt(t, fixedNow), true},
		{"already expired", expiringAt(t, fixedNow.Add(-time.Minute)), true},
		{"inside buffer", expiringAt(t, fixedNow.Add(4*time.Minute)), true},
		{"exactly at buffer edge", expiringAt(t, fixedNow.Add(jwt.DefaultExpiryBuffer)), true},
		{"beyond buffer", expiringAt(t, fixedNow.Add(jwt.DefaultExpiryBuffer+time.Second)), false},
		{"an hour away", expiringAt(t, fixedNow.Add(time.Hour)), false},
		{"undecodable", "garbage", true},
		{"no exp claim", signedToken(t, jwtlib.MapClaims{"sub": "x"}), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, i.IsNearingExpiry(tc.token))
		})
	}
}

func TestInspector_Classify(t *testing.T) {
	i := newInspector()
	require.Equal(t, jwt.Fresh, i.Classify(expiringAt(t, fixedNow.Add(time.Hour)), time.Minute))
	require.Equal(t, jwt.NearingExpiry, i.Classify(expiringAt(t, fixedNow.Add(30*time.Second)), time.Minute))
	require.Equal(t, jwt.Expired, i.Classify(expiringAt(t, fixedNow.Add(-time.Second)), time.Minute))
	require.Equal(t, jwt.Expired, i.Classify("bad", time.Minute))
	require.Equal(t, "nearing_expiry", jwt.NearingExpiry.String())
}

func TestInspector_CustomBuffer(t *testing.T) {
	i := jwt.NewInspector(
		jwt.WithNowFunc(func() time.Time { return fixedNow }),
		jwt.WithExpiryBuffer(time.Minute),
	)
	require.Equal(t, time.Minute, i.Buffer())
	require.False(t, i.IsNearingExpiry(expiringAt(t, fixedNow.Add(2*time.Minute))))
	require.True(t, i.IsNearingExpiryWithin(expiringAt(t, fixedNow.Add(2*time.Minute)), 3*time.Minute))
}
