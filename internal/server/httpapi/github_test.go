package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newGitHubStub(t *testing.T, user githubUser, emails []githubEmail) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"gho_test","token_type":"bearer"}`))
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer gho_test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(user)
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(emails)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func stubbedGitHub(srv *httptest.Server) *githubProvider {
	p := NewGitHubProvider("id", "secret", "http://127.0.0.1:8080"+CallbackPath).(*githubProvider)
	p.oauth.Endpoint = oauth2.Endpoint{
		AuthURL:  srv.URL + "/login/oauth/authorize",
		TokenURL: srv.URL + "/login/oauth/access_token",
	}
	p.apiBase = srv.URL
	return p
}

func TestGitHub_IdentifyUsesProfileEmail(t *testing.T) {
	srv := newGitHubStub(t, githubUser{Login: "ada", Name: "Ada Lovelace", Email: "ada@example.com"}, nil)

	id, err := stubbedGitHub(srv).Identify(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, "github", id.Provider)
	assert.Equal(t, "ada@example.com", id.Email)
	assert.Equal(t, "Ada Lovelace", id.Name)
}

func TestGitHub_IdentifyFallsBackToPrimaryVerifiedEmail(t *testing.T) {
	srv := newGitHubStub(t, githubUser{Login: "ada"}, []githubEmail{
		{Email: "old@example.com", Primary: false, Verified: true},
		{Email: "unverified@example.com", Primary: true, Verified: false},
		{Email: "ada@example.com", Primary: true, Verified: true},
	})

	id, err := stubbedGitHub(srv).Identify(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", id.Email)
	assert.Equal(t, "ada", id.Name)
}

func TestGitHub_AuthCodeURL(t *testing.T) {
	p := NewGitHubProvider("client-1", "secret", "http://127.0.0.1:8080"+CallbackPath)

	u := p.AuthCodeURL("st")
	assert.Contains(t, u, "https://github.com/login/oauth/authorize?")
	assert.Contains(t, u, "client_id=client-1")
	assert.Contains(t, u, "state=st")
}

func TestOIDCProvider_DiscoveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := newOIDCProvider(context.Background(), "google", srv.URL, "id", "secret", "http://127.0.0.1:8080"+CallbackPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oidc discovery")
}
