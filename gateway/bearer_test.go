package gateway_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-auth-client/gateway"
	apperrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/jrsteele09/go-auth-client/sessions/repofakes"
	"github.com/stretchr/testify/require"
)

func TestAuthorizedClient_AttachesLatestPersistedToken(t *testing.T) {
	seen := make(chan string, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	store, err := sessions.NewCredentialStore(repofakes.NewFakeKVRepo())
	require.NoError(t, err)
	client := gateway.NewAuthorizedClient(store, srv.Client())

	require.NoError(t, store.Save(sessions.NewRecord(sessions.Session{AccessToken: "access-1", RefreshToken: "r"})))
	resp, err := client.Get(srv.URL + "/packages")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, "Bearer access-1", <-seen)

	require.NoError(t, store.Save(sessions.NewRecord(sessions.Session{AccessToken: "access-2", RefreshToken: "r"})))
	resp, err = client.Get(srv.URL + "/packages")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, "Bearer access-2", <-seen)
}

func TestAuthorizedClient_FailsWithoutSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach the server")
	}))
	defer srv.Close()

	store, err := sessions.NewCredentialStore(repofakes.NewFakeKVRepo())
	require.NoError(t, err)

	_, err = gateway.NewAuthorizedClient(store, nil).Get(srv.URL)
	require.ErrorIs(t, err, apperrors.ErrNoSession)
}
