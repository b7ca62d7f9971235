package memrepo_test

import (
	"testing"

	"github.com/jrsteele09/go-auth-client/roles"
	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/jrsteele09/go-auth-client/sessions/memrepo"
	"github.com/stretchr/testify/require"
)

func TestMemRepoBacksCredentialStore(t *testing.T) {
	store, err := sessions.NewCredentialStore(memrepo.New())
	require.NoError(t, err)
	require.Nil(t, store.Load())

	s := sessions.Session{AccessToken: "a", RefreshToken: "r", Roles: roles.Set{roles.RoleUser}, ProfileCompleted: true}
	require.NoError(t, store.Save(sessions.NewRecord(s)))

	rec := store.Load()
	require.NotNil(t, rec)
	require.Equal(t, "a", rec.Session.AccessToken)
	require.True(t, rec.ProfileCompleted)

	require.NoError(t, store.Clear())
	require.Nil(t, store.Load())
}
