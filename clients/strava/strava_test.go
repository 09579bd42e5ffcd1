package strava

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(context.Background(), "test-token").WithBaseURL(srv.URL + "/")
}

func TestGetAthlete_SendsBearerToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/athlete", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":7,"firstname":"Ada","lastname":"L","city":"Oslo","follower_count":12}`))
	})

	a, err := c.GetAthlete(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 7, a.ID)
	require.Equal(t, "Ada", a.FirstName)
	require.Equal(t, "Oslo", a.City)
	require.Equal(t, 12, a.FollowerCount)
}

func TestGetActivities_EncodesPaging(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/athlete/activities", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "50", r.URL.Query().Get("per_page"))
		assert.False(t, r.URL.Query().Has("before"))
		_, _ = w.Write([]byte(`[
			{"name":"Morning Ride","distance":25000.5,"moving_time":3600,"average_speed":6.9,
			 "total_elevation_gain":120,"start_date_local":"2024-05-01T07:00:00Z","type":"Ride",
			 "map":{"summary_polyline":"_p~iF~ps|U_ulLnnqC_mqNvxq` + "`" + `@"}}
		]`))
	})

	acts, err := c.GetActivities(context.Background(), &ActivityListOptions{Page: 2, PerPage: 50})
	require.NoError(t, err)
	require.Len(t, acts, 1)
	require.Equal(t, "Morning Ride", acts[0].Name)
	require.InDelta(t, 25000.5, acts[0].Distance, 1e-9)
	require.Equal(t, "2024-05-01T07:00:00Z", acts[0].StartDateLocal)
	require.NotEmpty(t, acts[0].Map.SummaryPolyline)
}

func TestGetActivities_EmptyPage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	acts, err := c.GetActivities(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, acts)
	require.NotNil(t, acts)
}

func TestGetZones_KeepsRawPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/athlete/zones", r.URL.Path)
		_, _ = w.Write([]byte(`{"heart_rate":{"zones":[{"min":0,"max":120}]}}`))
	})

	z, err := c.GetZones(context.Background())
	require.NoError(t, err)
	require.JSONEq(t, `{"heart_rate":{"zones":[{"min":0,"max":120}]}}`, string(z))
}

func TestNon2xx_ReturnsAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Authorization Error","errors":[{"resource":"Athlete","field":"access_token","code":"invalid"}]}`))
	})

	_, err := c.GetAthlete(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode())
	require.Equal(t, "Authorization Error", apiErr.Message)
	require.Contains(t, err.Error(), "Athlete.access_token invalid")
	require.Contains(t, err.Error(), "GET")
}

func TestNon2xx_WithoutJSONBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`slow down`))
	})

	_, err := c.GetZones(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode())
	require.Equal(t, "Too Many Requests", apiErr.Message)
}

func TestMalformedBody_IsNotAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	_, err := c.GetAthlete(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.False(t, errors.As(err, &apiErr))
	require.Contains(t, err.Error(), "error decoding strava response")
}
