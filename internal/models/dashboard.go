package models

import "time"

type Dashboard struct {
	Profile         Profile            `json:"profile"`
	TotalActivities int                `json:"total_activities"`
	Latest          *ActivityRow       `json:"latest,omitempty"`
	Weekly          WeeklyGoal         `json:"weekly"`
	Recent          []ActivityRow      `json:"recent"`
	PowerZones      []PowerZoneRow     `json:"power_zones"`
	HeartRateZones  []HeartRateZoneRow `json:"heart_rate_zones"`
	GeneratedAt     time.Time          `json:"generated_at"`
}

// HasActivities reports whether anything past the activity count should be
// shown at all.
func (d Dashboard) HasActivities() bool {
	return d.TotalActivities > 0
}

type Profile struct {
	Name                  string `json:"name"`
	City                  string `json:"city"`
	Country               string `json:"country"`
	Followers             int    `json:"followers"`
	ImageURL              string `json:"image_url,omitempty"`
	CreatedAt             string `json:"created_at"`
	MeasurementPreference string `json:"measurement_preference"`
}

type ActivityRow struct {
	Name        string  `json:"name"          csv:"Name"`
	DistanceKm  float64 `json:"distance_km"   csv:"Distance (km)"`
	TimeMin     float64 `json:"time_min"      csv:"Time (min)"`
	SpeedKmh    float64 `json:"speed_kmh"     csv:"Speed (km/h)"`
	ElevationM  float64 `json:"elevation_m"   csv:"Elevation (m)"`
	Date        string  `json:"date"          csv:"Date"`
	Type        string  `json:"type"          csv:"Type"`
	RoutePoints int     `json:"route_points"  csv:"Route points"`
}

type WeeklyGoal struct {
	TotalKm    float64 `json:"total_km"`
	GoalKm     float64 `json:"goal_km"`
	Progress   float64 `json:"progress"`
	Activities int     `json:"activities"`
}

type PowerZoneRow struct {
	Zone    string  `json:"zone"`
	Seconds float64 `json:"seconds"`
}

// HeartRateZoneRow has a nil Max for the open-ended top zone.
type HeartRateZoneRow struct {
	Zone string   `json:"zone"`
	Min  float64  `json:"min"`
	Max  *float64 `json:"max"`
}
