package services

import (
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"stravadash/clients/strava"
	"stravadash/internal/models"
)

const (
	DefaultWeeklyGoalKm = 100.0
	week                = 7 * 24 * time.Hour
)

// start_date_local always carries a zone designator; Strava sends "Z" but
// numeric offsets with and without a colon are accepted too. Fractional
// seconds are not part of the format.
var startDateLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05Z0700",
}

var errBadStartDate = errors.New("unparsable start_date_local")

func parseStartDate(s string) (time.Time, error) {
	// time.Parse accepts fractional seconds after "05" even when the layout
	// has none, so the zone designator must follow the seconds directly.
	if len(s) < len("2006-01-02T15:04:05Z") || !strings.ContainsRune("Z+-", rune(s[19])) {
		return time.Time{}, errBadStartDate
	}
	for _, layout := range startDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errBadStartDate
}

// WeeklyProgress sums the distance of activities that started strictly after
// now-7d and reports it against goalKm. Activities whose start date cannot be
// parsed are skipped.
func WeeklyProgress(activities []strava.Activity, now time.Time, goalKm float64) models.WeeklyGoal {
	if goalKm <= 0 {
		goalKm = DefaultWeeklyGoalKm
	}
	cutoff := now.Add(-week)

	var meters float64
	count := 0
	for _, a := range activities {
		start, err := parseStartDate(a.StartDateLocal)
		if err != nil {
			slog.Debug("skipping activity for weekly goal", "name", a.Name, "start", a.StartDateLocal, "err", err)
			continue
		}
		if !start.After(cutoff) {
			continue
		}
		meters += a.Distance
		count++
	}

	km := meters / 1000
	return models.WeeklyGoal{
		TotalKm:    km,
		GoalKm:     goalKm,
		Progress:   math.Max(0, math.Min(km/goalKm, 1)),
		Activities: count,
	}
}
