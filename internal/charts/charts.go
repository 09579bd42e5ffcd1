// Package charts turns dashboard rows into horizontal bars that both the web
// page and the terminal view can draw. Offsets and widths are fractions of
// the chart width.
package charts

import (
	"fmt"
	"strconv"

	"stravadash/internal/models"
)

type Bar struct {
	Label  string
	Text   string
	Offset float64
	Width  float64
}

// open-ended heart rate zones are drawn to the end of the track, with this
// much headroom past the highest bound
const hrHeadroom = 1.15

func scaled(labels, texts []string, values []float64) []Bar {
	var top float64
	for _, v := range values {
		if v > top {
			top = v
		}
	}

	bars := make([]Bar, 0, len(values))
	for i, v := range values {
		b := Bar{Label: labels[i], Text: texts[i]}
		if top > 0 && v > 0 {
			b.Width = v / top
		}
		bars = append(bars, b)
	}
	return bars
}

func DistanceBars(rows []models.ActivityRow) []Bar {
	labels, texts, values := make([]string, 0, len(rows)), make([]string, 0, len(rows)), make([]float64, 0, len(rows))
	for _, r := range rows {
		labels = append(labels, r.Name)
		texts = append(texts, fmt.Sprintf("%.2f km", r.DistanceKm))
		values = append(values, r.DistanceKm)
	}
	return scaled(labels, texts, values)
}

func TimeBars(rows []models.ActivityRow) []Bar {
	labels, texts, values := make([]string, 0, len(rows)), make([]string, 0, len(rows)), make([]float64, 0, len(rows))
	for _, r := range rows {
		labels = append(labels, r.Name)
		texts = append(texts, fmt.Sprintf("%.2f min", r.TimeMin))
		values = append(values, r.TimeMin)
	}
	return scaled(labels, texts, values)
}

func PowerZoneBars(rows []models.PowerZoneRow) []Bar {
	labels, texts, values := make([]string, 0, len(rows)), make([]string, 0, len(rows)), make([]float64, 0, len(rows))
	for _, r := range rows {
		labels = append(labels, r.Zone+" W")
		texts = append(texts, fmt.Sprintf("%s s", num(r.Seconds)))
		values = append(values, r.Seconds)
	}
	return scaled(labels, texts, values)
}

// HeartRateBars draws each zone as the span between its bounds.
func HeartRateBars(rows []models.HeartRateZoneRow) []Bar {
	var top float64
	for _, r := range rows {
		if r.Min > top {
			top = r.Min
		}
		if r.Max != nil && *r.Max > top {
			top = *r.Max
		}
	}
	top *= hrHeadroom

	bars := make([]Bar, 0, len(rows))
	for _, r := range rows {
		b := Bar{Label: r.Zone}
		hi := top
		if r.Max != nil {
			hi = *r.Max
			b.Text = fmt.Sprintf("%s-%s bpm", num(r.Min), num(*r.Max))
		} else {
			b.Text = fmt.Sprintf("%s+ bpm", num(r.Min))
		}
		if top > 0 && hi > r.Min {
			b.Offset = r.Min / top
			b.Width = (hi - r.Min) / top
		}
		bars = append(bars, b)
	}
	return bars
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
