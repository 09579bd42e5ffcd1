package strava

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	authURL  = "https://www.strava.com/oauth/authorize"
	tokenURL = "https://www.strava.com/oauth/token"
)

// ErrAuthExchangeFailed is returned when the token endpoint does not hand back
// credentials for an authorization code. No token accompanies it.
var ErrAuthExchangeFailed = errors.New("strava authorization code exchange failed")

var errTokenStatus = errors.New("unexpected token endpoint status")

// okOnlyTransport fails any 2xx other than 200 from the token endpoint.
// Other statuses are left to oauth2, which reports them as RetrieveError.
type okOnlyTransport struct {
	base http.RoundTripper
}

func (t okOnlyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %d", errTokenStatus, resp.StatusCode)
	}
	return resp, nil
}

type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	AuthURL      string
	TokenURL     string
}

type Authenticator struct {
	conf   *oauth2.Config
	scopes []string
	client *http.Client
}

func NewAuthenticator(c OAuthConfig) *Authenticator {
	endpoint := oauth2.Endpoint{
		AuthURL:   authURL,
		TokenURL:  tokenURL,
		AuthStyle: oauth2.AuthStyleInParams,
	}
	if c.AuthURL != "" {
		endpoint.AuthURL = c.AuthURL
	}
	if c.TokenURL != "" {
		endpoint.TokenURL = c.TokenURL
	}

	return &Authenticator{
		conf: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Endpoint:     endpoint,
		},
		scopes: c.Scopes,
		client: &http.Client{
			Transport: okOnlyTransport{base: http.DefaultTransport},
			Timeout:   30 * time.Second,
		},
	}
}

// AuthCodeURL is where the user is sent to grant access. Strava takes a comma
// separated scope list rather than the space separated one oauth2 builds.
func (a *Authenticator) AuthCodeURL(state string) string {
	opts := []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("approval_prompt", "auto")}
	if len(a.scopes) > 0 {
		opts = append(opts, oauth2.SetAuthURLParam("scope", strings.Join(a.scopes, ",")))
	}
	return a.conf.AuthCodeURL(state, opts...)
}

// Exchange trades an authorization code for a token. Only a 200 from the token
// endpoint yields a token; any other status or failure is reported as
// ErrAuthExchangeFailed with the cause wrapped alongside it.
func (a *Authenticator) Exchange(ctx context.Context, code string) (*Token, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: empty authorization code", ErrAuthExchangeFailed)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.client)
	tok, err := a.conf.Exchange(ctx, code)
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) {
			slog.Error("strava token endpoint refused code",
				"statusCode", rErr.Response.StatusCode,
				"respBody", string(rErr.Body),
			)
		}
		return nil, fmt.Errorf("%w: %w", ErrAuthExchangeFailed, err)
	}

	return &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    expiresAt(tok),
	}, nil
}

// expiresAt prefers Strava's absolute expires_at over the expiry oauth2
// derives from expires_in.
func expiresAt(tok *oauth2.Token) int64 {
	switch v := tok.Extra("expires_at").(type) {
	case float64:
		return int64(v)
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	if !tok.Expiry.IsZero() {
		return tok.Expiry.Unix()
	}
	return 0
}
