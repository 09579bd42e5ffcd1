package services

import (
	"log/slog"
	"math"
	"strings"

	"github.com/twpayne/go-polyline"

	"stravadash/clients/strava"
	"stravadash/internal/models"
)

const (
	metersPerKm = 1000
	msToKmh     = 3.6
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func ActivityRowFrom(a strava.Activity) models.ActivityRow {
	return models.ActivityRow{
		Name:        a.Name,
		DistanceKm:  round2(a.Distance / metersPerKm),
		TimeMin:     round2(a.MovingTime / 60),
		SpeedKmh:    round2(a.AverageSpeed * msToKmh),
		ElevationM:  round2(a.TotalElevationGain),
		Date:        a.StartDateLocal,
		Type:        a.Type,
		RoutePoints: routePoints(a),
	}
}

// LatestActivityRow is the row for the most recent activity, which the API
// returns first.
func LatestActivityRow(activities []strava.Activity) *models.ActivityRow {
	if len(activities) == 0 {
		return nil
	}
	row := ActivityRowFrom(activities[0])
	if row.Name == "" {
		row.Name = "No name"
	}
	return &row
}

func RecentActivityRows(activities []strava.Activity, limit int) []models.ActivityRow {
	if limit > 0 && len(activities) > limit {
		activities = activities[:limit]
	}
	rows := make([]models.ActivityRow, 0, len(activities))
	for _, a := range activities {
		rows = append(rows, ActivityRowFrom(a))
	}
	return rows
}

func routePoints(a strava.Activity) int {
	if a.Map.SummaryPolyline == "" {
		return 0
	}
	coords, _, err := polyline.DecodeCoords([]byte(a.Map.SummaryPolyline))
	if err != nil {
		slog.Debug("unable to decode summary polyline", "activity", a.ID, "err", err)
		return 0
	}
	return len(coords)
}

func ProfileFrom(a strava.Athlete) models.Profile {
	p := models.Profile{
		Name:                  strings.TrimSpace(a.FirstName + " " + a.LastName),
		City:                  orDefault(a.City, "Unknown"),
		Country:               orDefault(a.Country, "Unknown"),
		Followers:             a.FollowerCount,
		CreatedAt:             orDefault(a.CreatedAt, "N/A"),
		MeasurementPreference: orDefault(a.MeasurementPreference, "N/A"),
	}
	if strings.HasPrefix(a.Profile, "http") {
		p.ImageURL = a.Profile
	}
	return p
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
