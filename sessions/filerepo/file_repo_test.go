package filerepo_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-auth-client/sessions/filerepo"
	"github.com/stretchr/testify/require"
)

func TestFileRepo_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	r, err := filerepo.New(dir)
	require.NoError(t, err)

	require.NoError(t, r.Set("user", `{"accessToken":"a"}`))
	require.NoError(t, r.Set("isProfileCompleted", "true"))

	reopened, err := filerepo.New(dir)
	require.NoError(t, err)
	v, ok, err := reopened.Get("user")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"accessToken":"a"}`, v)

	require.NoError(t, reopened.Delete("user", "isProfileCompleted", "missing"))
	_, ok, err = reopened.Get("user")
	require.NoError(t, err)
	require.False(t, ok)

	again, err := filerepo.New(dir)
	require.NoError(t, err)
	_, ok, _ = again.Get("isProfileCompleted")
	require.False(t, ok)
}

func TestFileRepo_CorruptFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session.json"), []byte("{{{"), 0o600))

	r, err := filerepo.New(dir)
	require.NoError(t, err)
	_, ok, err := r.Get("user")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, r.Set("user", "x"))
	v, ok, _ := r.Get("user")
	require.True(t, ok)
	require.Equal(t, "x", v)
}

func TestFileRepo_RequiresFolder(t *testing.T) {
	_, err := filerepo.New("")
	require.Error(t, err)
}
