package normalize

import (
	"testing"

	"github.com/aarondl/opt/null"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/mpapenbr/f1-dashboard-service/pkg/model"
	"github.com/mpapenbr/f1-dashboard-service/pkg/openf1"
	"github.com/mpapenbr/f1-dashboard-service/testsupport/basedata"
)

func lap(car, num int, dur float64) openf1.LapRecord {
	return openf1.LapRecord{DriverNumber: car, LapNumber: num, LapDuration: null.From(dur)}
}

var testRoster = []openf1.DriverRecord{
	{DriverNumber: 1, NameAcronym: "VER"},
	{DriverNumber: 44, NameAcronym: "HAM"},
}

func TestBuildLapMatrix(t *testing.T) {
	tests := []struct {
		name string
		laps []openf1.LapRecord
		want model.LapTimeMatrix
	}{
		{
			name: "missing cell stays absent",
			laps: []openf1.LapRecord{lap(1, 1, 78.2), lap(1, 2, 77.8), lap(44, 1, 78.5)},
			want: model.LapTimeMatrix{
				{Lap: 1, Times: map[string]float64{"VER": 78.2, "HAM": 78.5}},
				{Lap: 2, Times: map[string]float64{"VER": 77.8}},
			},
		},
		{
			name: "no laps",
			laps: nil,
			want: model.LapTimeMatrix{},
		},
		{
			name: "null and zero durations are skipped",
			laps: []openf1.LapRecord{
				{DriverNumber: 1, LapNumber: 1},
				lap(1, 2, 0),
				lap(44, 1, 80.1),
			},
			want: model.LapTimeMatrix{
				{Lap: 1, Times: map[string]float64{"HAM": 80.1}},
				{Lap: 2, Times: map[string]float64{}},
			},
		},
		{
			name: "unknown car keyed by number",
			laps: []openf1.LapRecord{lap(81, 1, 79.0)},
			want: model.LapTimeMatrix{
				{Lap: 1, Times: map[string]float64{"81": 79.0}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildLapMatrix(testRoster, tt.laps)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("BuildLapMatrix() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildLapMatrix_Completeness(t *testing.T) {
	laps := decode[openf1.LapRecord](t, basedata.LapsJSON)
	roster := decode[openf1.DriverRecord](t, basedata.DriversJSON)
	got := BuildLapMatrix(roster, laps)

	assert.Len(t, got, 2)
	codes := map[int]string{1: "VER", 44: "HAM", 16: "LEC", 4: "NOR"}
	for _, l := range laps {
		v, ok := l.LapDuration.Get()
		cell, found := got[l.LapNumber-1].Times[codes[l.DriverNumber]]
		if ok {
			assert.True(t, found)
			assert.InDelta(t, v, cell, 1e-9)
		} else {
			assert.False(t, found)
		}
	}
}
