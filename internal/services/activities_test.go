package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"stravadash/clients/strava"
	"stravadash/internal/models"
)

// three points, from the encoded polyline algorithm documentation
const samplePolyline = "_p~iF~ps|U_ulLnnqC_mqNvxq`@"

func TestActivityRowFrom_Converts(t *testing.T) {
	row := ActivityRowFrom(strava.Activity{
		Name:               "Lunch Run",
		Distance:           10543.7,
		MovingTime:         3125,
		AverageSpeed:       3.374,
		TotalElevationGain: 87.4,
		StartDateLocal:     "2024-05-01T12:00:00Z",
		Type:               "Run",
		Map:                strava.Map{SummaryPolyline: samplePolyline},
	})

	require.Equal(t, models.ActivityRow{
		Name:        "Lunch Run",
		DistanceKm:  10.54,
		TimeMin:     52.08,
		SpeedKmh:    12.15,
		ElevationM:  87.4,
		Date:        "2024-05-01T12:00:00Z",
		Type:        "Run",
		RoutePoints: 3,
	}, row)
}

func TestActivityRowFrom_BadPolyline(t *testing.T) {
	row := ActivityRowFrom(strava.Activity{Map: strava.Map{SummaryPolyline: "_"}})
	require.Zero(t, row.RoutePoints)
}

func TestLatestActivityRow(t *testing.T) {
	require.Nil(t, LatestActivityRow(nil))

	row := LatestActivityRow([]strava.Activity{{Distance: 1000}, {Name: "older"}})
	require.NotNil(t, row)
	require.Equal(t, "No name", row.Name)
	require.Equal(t, 1.0, row.DistanceKm)
}

func TestRecentActivityRows_Limit(t *testing.T) {
	acts := make([]strava.Activity, 15)
	for i := range acts {
		acts[i].Distance = float64(i * 1000)
	}

	rows := RecentActivityRows(acts, 10)
	require.Len(t, rows, 10)
	require.Equal(t, 9.0, rows[9].DistanceKm)

	require.Len(t, RecentActivityRows(acts[:3], 10), 3)
	require.NotNil(t, RecentActivityRows(nil, 10))
}

func TestProfileFrom_Defaults(t *testing.T) {
	p := ProfileFrom(strava.Athlete{FirstName: "Ada", Profile: "avatar/athlete/large.png"})
	require.Equal(t, models.Profile{
		Name:                  "Ada",
		City:                  "Unknown",
		Country:               "Unknown",
		CreatedAt:             "N/A",
		MeasurementPreference: "N/A",
	}, p)

	p = ProfileFrom(strava.Athlete{
		FirstName:             "Ada",
		LastName:              "Lovelace",
		City:                  "London",
		Country:               "UK",
		FollowerCount:         3,
		Profile:               "https://example.com/a.jpg",
		CreatedAt:             "2020-01-01T00:00:00Z",
		MeasurementPreference: "meters",
	})
	require.Equal(t, "Ada Lovelace", p.Name)
	require.Equal(t, "London", p.City)
	require.Equal(t, 3, p.Followers)
	require.Equal(t, "https://example.com/a.jpg", p.ImageURL)
	require.Equal(t, "meters", p.MeasurementPreference)
}
