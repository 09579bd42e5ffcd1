package services

import (
	"encoding/json"
	"fmt"
	"strconv"

	"stravadash/clients/strava"
	"stravadash/internal/models"
)

const openZoneMax = -1

type zoneBucket struct {
	Min  *float64 `json:"min"`
	Max  *float64 `json:"max"`
	Time *float64 `json:"time"`
}

type typedZone struct {
	Type    string          `json:"type"`
	Buckets json.RawMessage `json:"distribution_buckets"`
}

type heartRateZones struct {
	Zones json.RawMessage `json:"zones"`
}

// PowerZoneRows shapes the distribution of the first "power" entry of a list
// shaped zone payload. Buckets without time are dropped. Any other shape
// gives an empty slice.
func PowerZoneRows(zs strava.ZoneSet) []models.PowerZoneRow {
	rows := make([]models.PowerZoneRow, 0)

	var entries []json.RawMessage
	if err := json.Unmarshal(zs, &entries); err != nil {
		return rows
	}

	for _, raw := range entries {
		var z typedZone
		if err := json.Unmarshal(raw, &z); err != nil || z.Type != "power" {
			continue
		}

		buckets, ok := decodeBuckets(z.Buckets, true)
		if !ok {
			return rows
		}
		for _, b := range buckets {
			if *b.Time <= 0 {
				continue
			}
			rows = append(rows, models.PowerZoneRow{
				Zone:    powerZoneLabel(*b.Min, *b.Max),
				Seconds: *b.Time,
			})
		}
		return rows
	}
	return rows
}

// HeartRateZoneRows shapes heart_rate.zones of an object shaped zone payload.
func HeartRateZoneRows(zs strava.ZoneSet) []models.HeartRateZoneRow {
	rows := make([]models.HeartRateZoneRow, 0)

	var byKind map[string]json.RawMessage
	if err := json.Unmarshal(zs, &byKind); err != nil {
		return rows
	}
	raw, ok := byKind["heart_rate"]
	if !ok {
		return rows
	}

	var hr heartRateZones
	if err := json.Unmarshal(raw, &hr); err != nil {
		return rows
	}
	zones, ok := decodeBuckets(hr.Zones, false)
	if !ok {
		return rows
	}

	for i, z := range zones {
		row := models.HeartRateZoneRow{
			Zone: fmt.Sprintf("Z%d", i+1),
			Min:  *z.Min,
		}
		if *z.Max != openZoneMax {
			hi := *z.Max
			row.Max = &hi
		}
		rows = append(rows, row)
	}
	return rows
}

// decodeBuckets rejects the whole list if any entry is missing a bound, or
// its time when withTime is set.
func decodeBuckets(raw json.RawMessage, withTime bool) ([]zoneBucket, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var buckets []zoneBucket
	if err := json.Unmarshal(raw, &buckets); err != nil {
		return nil, false
	}
	for _, b := range buckets {
		if b.Min == nil || b.Max == nil || (withTime && b.Time == nil) {
			return nil, false
		}
	}
	return buckets, true
}

func powerZoneLabel(lo, hi float64) string {
	upper := "+"
	if hi != openZoneMax {
		upper = formatBound(hi)
	}
	return formatBound(lo) + "-" + upper
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
