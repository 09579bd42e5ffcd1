package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"stravadash/clients/strava"
	"stravadash/internal/models"
)

func TestPowerZoneRows_Example(t *testing.T) {
	zs := strava.ZoneSet(`[
		{"type":"heartrate","distribution_buckets":[{"min":0,"max":120,"time":50}]},
		{"type":"power","distribution_buckets":[
			{"min":0,"max":100,"time":0},
			{"min":100,"max":-1,"time":300}
		]}
	]`)

	require.Equal(t, []models.PowerZoneRow{{Zone: "100-+", Seconds: 300}}, PowerZoneRows(zs))
}

func TestPowerZoneRows_UsesFirstPowerEntry(t *testing.T) {
	zs := strava.ZoneSet(`[
		"not an object",
		{"type":"power","distribution_buckets":[{"min":0,"max":150,"time":12},{"min":150,"max":250.5,"time":7}]},
		{"type":"power","distribution_buckets":[{"min":1,"max":2,"time":3}]}
	]`)

	require.Equal(t, []models.PowerZoneRow{
		{Zone: "0-150", Seconds: 12},
		{Zone: "150-250.5", Seconds: 7},
	}, PowerZoneRows(zs))
}

func TestPowerZoneRows_EmptyOnBadShapes(t *testing.T) {
	cases := map[string]string{
		"empty":           ``,
		"null":            `null`,
		"object":          `{"power":{"zones":[]}}`,
		"no power entry":  `[{"type":"heartrate","distribution_buckets":[]}]`,
		"buckets missing": `[{"type":"power"}]`,
		"buckets object":  `[{"type":"power","distribution_buckets":{"min":0}}]`,
		"missing time":    `[{"type":"power","distribution_buckets":[{"min":0,"max":10}]}]`,
		"missing max":     `[{"type":"power","distribution_buckets":[{"min":0,"time":10}]}]`,
		"string bound":    `[{"type":"power","distribution_buckets":[{"min":"0","max":10,"time":1}]}]`,
		"garbage":         `{{{`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			rows := PowerZoneRows(strava.ZoneSet(payload))
			require.NotNil(t, rows)
			require.Empty(t, rows)
		})
	}
}

func TestHeartRateZoneRows(t *testing.T) {
	zs := strava.ZoneSet(`{"heart_rate":{"custom_zones":false,"zones":[
		{"min":0,"max":115},
		{"min":115,"max":152},
		{"min":152,"max":-1}
	]}}`)

	rows := HeartRateZoneRows(zs)
	require.Len(t, rows, 3)
	require.Equal(t, "Z1", rows[0].Zone)
	require.Equal(t, 0.0, rows[0].Min)
	require.NotNil(t, rows[0].Max)
	require.Equal(t, 115.0, *rows[0].Max)
	require.Equal(t, "Z2", rows[1].Zone)
	require.Equal(t, 152.0, *rows[1].Max)
	require.Equal(t, "Z3", rows[2].Zone)
	require.Equal(t, 152.0, rows[2].Min)
	require.Nil(t, rows[2].Max)
}

func TestHeartRateZoneRows_EmptyOnBadShapes(t *testing.T) {
	cases := map[string]string{
		"empty":         ``,
		"null":          `null`,
		"list":          `[{"type":"power","distribution_buckets":[]}]`,
		"no heart_rate": `{"power":{"zones":[]}}`,
		"no zones":      `{"heart_rate":{}}`,
		"zones object":  `{"heart_rate":{"zones":{"min":1}}}`,
		"missing min":   `{"heart_rate":{"zones":[{"max":100}]}}`,
		"heart_rate 1":  `{"heart_rate":1}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			rows := HeartRateZoneRows(strava.ZoneSet(payload))
			require.NotNil(t, rows)
			require.Empty(t, rows)
		})
	}
}
