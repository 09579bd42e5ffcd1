package strava

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthenticator(t *testing.T, h http.HandlerFunc) *Authenticator {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewAuthenticator(OAuthConfig{
		ClientID:     "1234",
		ClientSecret: "shh",
		RedirectURL:  "http://localhost:8080/oauth/callback",
		Scopes:       []string{"read", "activity:read_all"},
		TokenURL:     srv.URL + "/oauth/token",
	})
}

func TestExchange_OK(t *testing.T) {
	a := newTestAuthenticator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/oauth/token", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "1234", r.PostForm.Get("client_id"))
		assert.Equal(t, "shh", r.PostForm.Get("client_secret"))
		assert.Equal(t, "http://localhost:8080/oauth/callback", r.PostForm.Get("redirect_uri"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"token_type":"Bearer",
			"expires_at":1700000000,
			"expires_in":21600,
			"refresh_token":"refresh-abc",
			"access_token":"access-xyz",
			"athlete":{"id":1}
		}`))
	})

	tok, err := a.Exchange(context.Background(), "the-code")
	require.NoError(t, err)
	require.Equal(t, &Token{
		AccessToken:  "access-xyz",
		RefreshToken: "refresh-abc",
		ExpiresAt:    1700000000,
	}, tok)
}

func TestExchange_NonOKStatus(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			a := newTestAuthenticator(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				_, _ = w.Write([]byte(`{"message":"Bad Request","errors":[{"resource":"AuthorizationCode","field":"code","code":"invalid"}]}`))
			})

			tok, err := a.Exchange(context.Background(), "stale")
			require.Nil(t, tok)
			require.True(t, errors.Is(err, ErrAuthExchangeFailed))
		})
	}
}

func TestExchange_SuccessStatusOtherThanOK(t *testing.T) {
	for _, status := range []int{http.StatusCreated, http.StatusAccepted, http.StatusNoContent} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			a := newTestAuthenticator(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				_, _ = w.Write([]byte(`{"access_token":"a","refresh_token":"r","expires_at":1700000000}`))
			})

			tok, err := a.Exchange(context.Background(), "code")
			require.Nil(t, tok)
			require.ErrorIs(t, err, ErrAuthExchangeFailed)
		})
	}
}

func TestExchange_MissingAccessToken(t *testing.T) {
	a := newTestAuthenticator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"refresh_token":"r"}`))
	})

	tok, err := a.Exchange(context.Background(), "code")
	require.Nil(t, tok)
	require.ErrorIs(t, err, ErrAuthExchangeFailed)
}

func TestExchange_EmptyCode(t *testing.T) {
	called := false
	a := newTestAuthenticator(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	tok, err := a.Exchange(context.Background(), "")
	require.Nil(t, tok)
	require.ErrorIs(t, err, ErrAuthExchangeFailed)
	require.False(t, called)
}

func TestAuthCodeURL(t *testing.T) {
	a := NewAuthenticator(OAuthConfig{
		ClientID:    "1234",
		RedirectURL: "http://localhost:8080/oauth/callback",
		Scopes:      []string{"read", "activity:read_all"},
	})

	u, err := url.Parse(a.AuthCodeURL("st4te"))
	require.NoError(t, err)
	require.Equal(t, "www.strava.com", u.Host)
	require.Equal(t, "/oauth/authorize", u.Path)

	q := u.Query()
	require.Equal(t, "1234", q.Get("client_id"))
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "st4te", q.Get("state"))
	require.Equal(t, "read,activity:read_all", q.Get("scope"))
	require.Equal(t, "auto", q.Get("approval_prompt"))
	require.Equal(t, "http://localhost:8080/oauth/callback", q.Get("redirect_uri"))
}
