package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"stravadash/clients/strava"
	"stravadash/internal/database"
	"stravadash/internal/models"
)

type fakeBuilder struct {
	dash   models.Dashboard
	err    error
	tokens []strava.Token
}

func (f *fakeBuilder) Build(_ context.Context, token strava.Token) (models.Dashboard, error) {
	f.tokens = append(f.tokens, token)
	return f.dash, f.err
}

type fakeAuth struct {
	token *strava.Token
	err   error
	codes []string
}

func (f *fakeAuth) AuthCodeURL(state string) string {
	return "https://strava.test/oauth/authorize?state=" + url.QueryEscape(state)
}

func (f *fakeAuth) Exchange(_ context.Context, code string) (*strava.Token, error) {
	f.codes = append(f.codes, code)
	return f.token, f.err
}

func sampleDashboard() models.Dashboard {
	row := models.ActivityRow{Name: "Morning Run", DistanceKm: 10, TimeMin: 50, SpeedKmh: 12, Date: "2024-05-09T07:00:00Z", Type: "Run"}
	return models.Dashboard{
		Profile:         models.Profile{Name: "Ada Lovelace", City: "London"},
		TotalActivities: 1,
		Latest:          &row,
		Weekly:          models.WeeklyGoal{TotalKm: 10, GoalKm: 100, Progress: 0.1, Activities: 1},
		Recent:          []models.ActivityRow{row},
	}
}

func newTestDB(t *testing.T) database.Service {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestServer(t *testing.T, b *fakeBuilder, auth *fakeAuth) (*Server, database.Service) {
	t.Helper()
	db := newTestDB(t)
	s := &Server{
		db:          db,
		dashboard:   b,
		directToken: strava.Token{AccessToken: "direct-token"},
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if auth != nil {
		s.auth = auth
	}
	return s, db
}

func get(t *testing.T, h http.Handler, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestIndexAndHealth(t *testing.T) {
	s, _ := newTestServer(t, &fakeBuilder{}, nil)
	h := s.RegisterRoutes()

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `href="/dashboard"`)
	require.NotContains(t, rec.Body.String(), "/oauth/login")

	rec = get(t, h, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "up", health["status"])

	rec = get(t, h, "/assets/css/dashboard.css")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDashboardHandler(t *testing.T) {
	b := &fakeBuilder{dash: sampleDashboard()}
	s, _ := newTestServer(t, b, nil)

	rec := get(t, s.RegisterRoutes(), "/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Ada Lovelace")
	require.Contains(t, rec.Body.String(), "Morning Run")
	require.Equal(t, []strava.Token{{AccessToken: "direct-token"}}, b.tokens)
}

func TestDashboardHandler_UpstreamError(t *testing.T) {
	apiErr := &strava.APIError{
		Response: &http.Response{
			StatusCode: http.StatusUnauthorized,
			Request:    httptest.NewRequest(http.MethodGet, "https://www.strava.com/api/v3/athlete", nil),
		},
		Message: "Authorization Error",
	}
	b := &fakeBuilder{err: fmt.Errorf("error getting athlete: %w", apiErr)}
	s, _ := newTestServer(t, b, nil)

	rec := get(t, s.RegisterRoutes(), "/dashboard")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Contains(t, rec.Body.String(), "Failed to fetch data")
	require.Contains(t, rec.Body.String(), "Authorization Error")
	require.NotContains(t, rec.Body.String(), "Athlete Profile")
}

func TestDashboardJSONHandler(t *testing.T) {
	s, _ := newTestServer(t, &fakeBuilder{dash: sampleDashboard()}, nil)

	rec := get(t, s.RegisterRoutes(), "/api/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var d models.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	require.Equal(t, 1, d.TotalActivities)
	require.Equal(t, "Morning Run", d.Latest.Name)

	s.dashboard = &fakeBuilder{err: errors.New("error calling strava: connection refused")}
	rec = get(t, s.RegisterRoutes(), "/api/dashboard")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.JSONEq(t, `{"error":"error calling strava: connection refused"}`, rec.Body.String())
}

func TestActivitiesCSVHandler(t *testing.T) {
	s, _ := newTestServer(t, &fakeBuilder{dash: sampleDashboard()}, nil)

	rec := get(t, s.RegisterRoutes(), "/dashboard/activities.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Disposition"), "activities.csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "Name,Distance (km),Time (min),Speed (km/h),Elevation (m),Date,Type,Route points", lines[0])
	require.True(t, strings.HasPrefix(lines[1], "Morning Run,"))
}

func TestOAuthRoutes_DisabledWithoutCredentials(t *testing.T) {
	s, _ := newTestServer(t, &fakeBuilder{}, nil)
	rec := get(t, s.RegisterRoutes(), "/oauth/login")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOAuthFlow(t *testing.T) {
	b := &fakeBuilder{dash: sampleDashboard()}
	auth := &fakeAuth{token: &strava.Token{AccessToken: "user-token", RefreshToken: "refresh", ExpiresAt: 1700000000}}
	s, db := newTestServer(t, b, auth)
	h := s.RegisterRoutes()

	rec := get(t, h, "/oauth/login")
	require.Equal(t, http.StatusFound, rec.Code)
	state := cookieNamed(rec, stateCookie)
	require.NotNil(t, state)
	require.Contains(t, rec.Header().Get("Location"), "state="+state.Value)

	rec = get(t, h, "/oauth/callback?code=abc&state="+state.Value, state)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/oauth/dashboard", rec.Header().Get("Location"))
	require.Equal(t, []string{"abc"}, auth.codes)

	session := cookieNamed(rec, sessionCookie)
	require.NotNil(t, session)
	stored, err := db.GetSession(context.Background(), session.Value)
	require.NoError(t, err)
	require.Equal(t, *auth.token, stored)

	rec = get(t, h, "/oauth/dashboard", session)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `href="/oauth/logout"`)
	require.Equal(t, []strava.Token{*auth.token}, b.tokens)

	rec = get(t, h, "/oauth/logout", session)
	require.Equal(t, http.StatusFound, rec.Code)
	_, err = db.GetSession(context.Background(), session.Value)
	require.ErrorIs(t, err, database.ErrSessionNotFound)
}

func TestCallbackHandler_Rejects(t *testing.T) {
	state := &http.Cookie{Name: stateCookie, Value: "expected"}

	tests := []struct {
		name    string
		target  string
		cookies []*http.Cookie
		want    int
	}{
		{"declined", "/oauth/callback?error=access_denied&state=expected", []*http.Cookie{state}, http.StatusBadRequest},
		{"missing code", "/oauth/callback?state=expected", []*http.Cookie{state}, http.StatusBadRequest},
		{"no state cookie", "/oauth/callback?code=abc&state=expected", nil, http.StatusBadRequest},
		{"state mismatch", "/oauth/callback?code=abc&state=other", []*http.Cookie{state}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &fakeAuth{token: &strava.Token{AccessToken: "x"}}
			s, _ := newTestServer(t, &fakeBuilder{}, auth)

			rec := get(t, s.RegisterRoutes(), tt.target, tt.cookies...)
			require.Equal(t, tt.want, rec.Code)
			require.Empty(t, auth.codes)
			require.Nil(t, cookieNamed(rec, sessionCookie))
		})
	}
}

func TestCallbackHandler_ExchangeFailure(t *testing.T) {
	b := &fakeBuilder{}
	auth := &fakeAuth{err: fmt.Errorf("%w: 400 Bad Request", strava.ErrAuthExchangeFailed)}
	s, _ := newTestServer(t, b, auth)
	state := &http.Cookie{Name: stateCookie, Value: "st"}

	rec := get(t, s.RegisterRoutes(), "/oauth/callback?code=abc&state=st", state)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Contains(t, rec.Body.String(), "Strava authorization failed")
	require.Nil(t, cookieNamed(rec, sessionCookie))
	require.Empty(t, b.tokens)
}

func TestSessionDashboard_RequiresSession(t *testing.T) {
	b := &fakeBuilder{dash: sampleDashboard()}
	s, _ := newTestServer(t, b, &fakeAuth{})
	h := s.RegisterRoutes()

	rec := get(t, h, "/oauth/dashboard")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = get(t, h, "/oauth/dashboard", &http.Cookie{Name: sessionCookie, Value: "unknown"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, b.tokens)
}
