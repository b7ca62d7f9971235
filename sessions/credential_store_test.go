package sessions_test

import (
	"errors"
	"testing"

	apperrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/roles"
	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/jrsteele09/go-auth-client/sessions/repofakes"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*sessions.CredentialStore, *repofakes.FakeKVRepo) {
	t.Helper()
	repo := repofakes.NewFakeKVRepo()
	store, err := sessions.NewCredentialStore(repo)
	require.NoError(t, err)
	return store, repo
}

func testSession() sessions.Session {
	return sessions.Session{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		Roles:        roles.Set{roles.RoleUser},
	}
}

func TestNewCredentialStore_RequiresRepo(t *testing.T) {
	_, err := sessions.NewCredentialStore(nil)
	require.Error(t, err)
}

func TestCredentialStore_SaveLoad(t *testing.T) {
	store, repo := newStore(t)
	require.Nil(t, store.Load())

	require.NoError(t, store.Save(sessions.NewRecord(testSession())))

	rec := store.Load()
	require.NotNil(t, rec)
	require.Equal(t, "access-1", rec.Session.AccessToken)
	require.Equal(t, "refresh-1", rec.Session.RefreshToken)
	require.Equal(t, roles.Set{roles.RoleUser}, rec.Session.Roles)
	require.False(t, rec.ProfileCompleted)

	raw, ok, err := repo.Get(sessions.ProfileCompletedKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "false", raw)
}

func TestCredentialStore_ProfileCompletedCompanionKey(t *testing.T) {
	store, repo := newStore(t)
	s := testSession()
	s.ProfileCompleted = true
	require.NoError(t, store.Save(sessions.NewRecord(s)))

	completed, ok := store.ProfileCompleted()
	require.True(t, ok)
	require.True(t, completed)

	// The companion key wins over the blob.
	require.NoError(t, repo.Set(sessions.ProfileCompletedKey, "false"))
	rec := store.Load()
	require.NotNil(t, rec)
	require.False(t, rec.ProfileCompleted)
	require.False(t, rec.Session.ProfileCompleted)
}

func TestCredentialStore_LoadDegradesToNil(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"corrupt json", "{not-json"},
		{"wrong type", `"a string"`},
		{"missing refresh token", `{"accessToken":"a","roles":["User"]}`},
		{"missing access token", `{"refreshToken":"r","roles":["User"]}`},
		{"empty", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store, repo := newStore(t)
			require.NoError(t, repo.Set(sessions.UserKey, tc.raw))
			require.NotPanics(t, func() {
				require.Nil(t, store.Load())
			})
		})
	}

	t.Run("repo error", func(t *testing.T) {
		store, repo := newStore(t)
		repo.GetErr = errors.New("disk on fire")
		require.Nil(t, store.Load())
	})
}

func TestCredentialStore_SaveRejectsPartialSession(t *testing.T) {
	store, repo := newStore(t)
	err := store.Save(sessions.Record{Session: sessions.Session{AccessToken: "only-access"}})
	require.ErrorIs(t, err, apperrors.ErrInvalidSession)
	require.Zero(t, repo.Len())
}

func TestCredentialStore_SaveFailure(t *testing.T) {
	store, repo := newStore(t)
	repo.SetErr = errors.New("quota exceeded")
	err := store.Save(sessions.NewRecord(testSession()))
	require.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	require.Zero(t, repo.Len())
}

func TestCredentialStore_ClearIsIdempotent(t *testing.T) {
	store, repo := newStore(t)
	require.NoError(t, store.Save(sessions.NewRecord(testSession())))

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	require.Nil(t, store.Load())
	require.Zero(t, repo.Len())
	_, ok := store.ProfileCompleted()
	require.False(t, ok)
}

func TestSession_WithTokens(t *testing.T) {
	s := testSession()

	rotated := s.WithTokens("access-2", "refresh-2")
	require.Equal(t, "access-2", rotated.AccessToken)
	require.Equal(t, "refresh-2", rotated.RefreshToken)

	kept := s.WithTokens("access-3", "")
	require.Equal(t, "access-3", kept.AccessToken)
	require.Equal(t, "refresh-1", kept.RefreshToken)

	require.Equal(t, "access-1", s.AccessToken, "original is untouched")
}

func TestSession_Valid(t *testing.T) {
	require.True(t, testSession().Valid())
	require.False(t, sessions.Session{AccessToken: "a"}.Valid())
	require.False(t, sessions.Session{RefreshToken: "r"}.Valid())
	require.False(t, sessions.Session{}.Valid())
}
