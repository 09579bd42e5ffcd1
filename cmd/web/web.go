package web

import (
	"embed"
	"fmt"
	"strconv"

	"stravadash/internal/charts"
	"stravadash/internal/models"
)

//go:embed "assets"
var Files embed.FS

// DashboardLinks are the per-flow URLs the dashboard page points at.
type DashboardLinks struct {
	CSV    string
	Logout string
}

type metric struct {
	Label string
	Value string
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func progressStyle(p float64) string {
	return fmt.Sprintf("width: %.1f%%", p*100)
}

func barStyle(b charts.Bar) string {
	return fmt.Sprintf("left: %.1f%%; width: %.1f%%", b.Offset*100, b.Width*100)
}

// upperBound is blank for the open-ended top zone.
func upperBound(r models.HeartRateZoneRow) string {
	if r.Max == nil {
		return ""
	}
	return num(*r.Max)
}
