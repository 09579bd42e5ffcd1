package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"stravadash/internal/charts"
	"stravadash/internal/models"
)

const (
	minBarWidth = 10
	maxBarWidth = 40
	progressLen = 30
)

type styles struct {
	title   lipgloss.Style
	heading lipgloss.Style
	warn    lipgloss.Style
	muted   lipgloss.Style
	bar     lipgloss.Style
	altBar  lipgloss.Style
}

// newStyles builds styles from the session's renderer so colours match the
// client terminal, not the server's.
func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("202")),
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("31")).MarginTop(1),
		warn:    r.NewStyle().Foreground(lipgloss.Color("214")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		bar:     r.NewStyle().Foreground(lipgloss.Color("202")),
		altBar:  r.NewStyle().Foreground(lipgloss.Color("31")),
	}
}

func renderDashboard(d models.Dashboard, st styles, width int) string {
	barWidth := min(max(width/3, minBarWidth), maxBarWidth)

	out := []string{
		st.title.Render("Strava Health Dashboard"),
		st.heading.Render("Athlete Profile"),
		kvTable([][]string{
			{"Name", d.Profile.Name},
			{"City", d.Profile.City},
			{"Followers", fmt.Sprint(d.Profile.Followers)},
			{"Account Created", d.Profile.CreatedAt},
			{"Country", d.Profile.Country},
			{"Measurement Preference", d.Profile.MeasurementPreference},
		}),
		st.heading.Render("Activity Summary"),
		fmt.Sprintf("Total Activities Fetched: %d", d.TotalActivities),
	}

	if !d.HasActivities() {
		out = append(out, st.warn.Render("No activities found."))
		return lipgloss.JoinVertical(lipgloss.Left, out...)
	}

	if d.Latest != nil {
		out = append(out,
			st.heading.Render("Latest Activity"),
			fmt.Sprintf("%s on %s", d.Latest.Name, d.Latest.Date),
			kvTable([][]string{
				{"Distance (km)", num(d.Latest.DistanceKm)},
				{"Time (min)", num(d.Latest.TimeMin)},
				{"Speed (km/h)", num(d.Latest.SpeedKmh)},
				{"Elevation (m)", num(d.Latest.ElevationM)},
			}),
		)
	}

	out = append(out,
		st.heading.Render("Weekly Goal Progress"),
		st.bar.Render(progressBar(d.Weekly.Progress, progressLen)),
		fmt.Sprintf("%.2f km / %s km this week", d.Weekly.TotalKm, num(d.Weekly.GoalKm)),
		st.heading.Render("Recent Activities"),
		recentTable(d.Recent),
		st.muted.Render("Distance"),
		barTable(charts.DistanceBars(d.Recent), st.bar, barWidth),
		st.muted.Render("Moving Time"),
		barTable(charts.TimeBars(d.Recent), st.altBar, barWidth),
		st.heading.Render("Power Zone Distribution"),
	)

	if len(d.PowerZones) == 0 {
		out = append(out, st.warn.Render("No power zone data available."))
	} else {
		out = append(out, barTable(charts.PowerZoneBars(d.PowerZones), st.bar, barWidth))
	}

	out = append(out, st.heading.Render("Heart Rate Zones"))
	if len(d.HeartRateZones) == 0 {
		out = append(out, st.warn.Render("No heart rate zone data available."))
	} else {
		out = append(out, barTable(charts.HeartRateBars(d.HeartRateZones), st.altBar, barWidth))
	}

	return lipgloss.JoinVertical(lipgloss.Left, out...)
}

func kvTable(rows [][]string) string {
	return table.New().Border(lipgloss.HiddenBorder()).Rows(rows...).Render()
}

func recentTable(rows []models.ActivityRow) string {
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{r.Name, num(r.DistanceKm), num(r.TimeMin), num(r.SpeedKmh), r.Date})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Name", "Distance (km)", "Time (min)", "Speed (km/h)", "Date").
		Rows(data...).
		Render()
}

func barTable(bars []charts.Bar, style lipgloss.Style, width int) string {
	rows := make([][]string, 0, len(bars))
	for _, b := range bars {
		rows = append(rows, []string{b.Label, style.Render(barLine(b, width)), b.Text})
	}
	return table.New().Border(lipgloss.HiddenBorder()).Rows(rows...).Render()
}

// barLine draws b on a track of width cells. A non-zero bar is at least one
// cell wide.
func barLine(b charts.Bar, width int) string {
	start := int(math.Round(b.Offset * float64(width)))
	n := int(math.Round(b.Width * float64(width)))
	if b.Width > 0 && n == 0 {
		n = 1
	}
	start = min(start, width)
	n = min(n, width-start)
	return strings.Repeat(" ", start) + strings.Repeat("█", n) + strings.Repeat(" ", width-start-n)
}

func progressBar(p float64, width int) string {
	filled := min(max(int(math.Round(p*float64(width))), 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
