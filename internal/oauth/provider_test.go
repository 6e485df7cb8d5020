package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/Kosench/shortlink/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// newProviderServer поднимает сервер с token endpoint и API профиля
func newProviderServer(t *testing.T, routes map[string]any) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"access_token": "provider-token", "token_type": "bearer"})
	})
	for path, body := range routes {
		body := body
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer provider-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(body)
		})
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testEndpoint(srv *httptest.Server) oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   srv.URL + "/authorize",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
}

func TestGitHub_Exchange(t *testing.T) {
	tests := []struct {
		name         string
		routes       map[string]any
		wantEmail    string
		wantName     string
		wantVerified bool
	}{
		{
			name: "public email",
			routes: map[string]any{
				"/user": githubProfile{ID: 42, Login: "octo", Name: "Octo Cat", Email: "octo@example.com", AvatarURL: "https://avatars/42"},
			},
			wantEmail:    "octo@example.com",
			wantName:     "Octo Cat",
			wantVerified: true,
		},
		{
			name: "primary verified email",
			routes: map[string]any{
				"/user": githubProfile{ID: 42, Login: "octo"},
				"/user/emails": []githubEmail{
					{Email: "old@example.com", Primary: false, Verified: true},
					{Email: "main@example.com", Primary: true, Verified: true},
				},
			},
			wantEmail:    "main@example.com",
			wantName:     "octo",
			wantVerified: true,
		},
		{
			name: "no email exposed",
			routes: map[string]any{
				"/user":        githubProfile{ID: 42, Login: "octo"},
				"/user/emails": []githubEmail{{Email: "x@example.com", Primary: true, Verified: false}},
			},
			wantEmail:    "octo@github.com",
			wantName:     "octo",
			wantVerified: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newProviderServer(t, tt.routes)
			gh := NewGitHub(config.OAuthProviderConfig{ClientID: "id", ClientSecret: "secret"})
			gh.config.Endpoint = testEndpoint(srv)
			gh.apiURL = srv.URL

			identity, err := gh.Exchange(context.Background(), "good-code")
			require.NoError(t, err)

			assert.Equal(t, "github", identity.Provider)
			assert.Equal(t, "42", identity.ProviderID)
			assert.Equal(t, tt.wantEmail, identity.Email)
			assert.Equal(t, tt.wantName, identity.Name)
			assert.Equal(t, tt.wantVerified, identity.EmailVerified)
		})
	}
}

func TestGitHub_ExchangeRejectedCode(t *testing.T) {
	srv := newProviderServer(t, nil)
	gh := NewGitHub(config.OAuthProviderConfig{ClientID: "id", ClientSecret: "secret"})
	gh.config.Endpoint = testEndpoint(srv)
	gh.apiURL = srv.URL

	_, err := gh.Exchange(context.Background(), "bad-code")
	assert.Error(t, err)
}

func TestGoogle_Exchange(t *testing.T) {
	srv := newProviderServer(t, map[string]any{
		"/userinfo": googleProfile{Sub: "1098", Email: "jane@gmail.com", EmailVerified: true, Name: "Jane Doe", Picture: "https://lh3/pic"},
	})
	g := NewGoogle(config.OAuthProviderConfig{ClientID: "id", ClientSecret: "secret"})
	g.config.Endpoint = testEndpoint(srv)
	g.userInfoURL = srv.URL + "/userinfo"

	identity, err := g.Exchange(context.Background(), "good-code")
	require.NoError(t, err)

	assert.Equal(t, "google", identity.Provider)
	assert.Equal(t, "1098", identity.ProviderID)
	assert.Equal(t, "jane@gmail.com", identity.Email)
	assert.Equal(t, "Jane Doe", identity.Name)
	assert.Equal(t, "https://lh3/pic", identity.Picture)
	assert.True(t, identity.EmailVerified)
}

func TestAuthCodeURL_CarriesState(t *testing.T) {
	providers := []Provider{
		NewGitHub(config.OAuthProviderConfig{ClientID: "gh-id", ClientSecret: "s", RedirectURL: "http://localhost/cb"}),
		NewGoogle(config.OAuthProviderConfig{ClientID: "g-id", ClientSecret: "s", RedirectURL: "http://localhost/cb"}),
	}

	for _, p := range providers {
		t.Run(p.Name(), func(t *testing.T) {
			raw := p.AuthCodeURL("state-123")
			parsed, err := url.Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, "state-123", parsed.Query().Get("state"))
			assert.Equal(t, "http://localhost/cb", parsed.Query().Get("redirect_uri"))
		})
	}
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry(
		NewGoogle(config.OAuthProviderConfig{ClientID: "id", ClientSecret: "s"}),
		NewGitHub(config.OAuthProviderConfig{ClientID: "id", ClientSecret: "s"}),
	)

	assert.Equal(t, []string{"github", "google"}, registry.Names())

	p, ok := registry.Get("github")
	require.True(t, ok)
	assert.Equal(t, "github", p.Name())

	_, ok = registry.Get("facebook")
	assert.False(t, ok)
}
