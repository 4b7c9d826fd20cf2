package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLapRow_MarshalJSON(t *testing.T) {
	row := LapRow{Lap: 2, Times: map[string]float64{"VER": 77.8}}
	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `{"lap":2,"VER":77.8}`, string(data))

	var back LapRow
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, row, back)
}

func TestLapRow_UnmarshalJSON_MissingLap(t *testing.T) {
	var row LapRow
	assert.Error(t, json.Unmarshal([]byte(`{"VER":77.8}`), &row))
}

func TestLapTimeMatrix_Helpers(t *testing.T) {
	m := LapTimeMatrix{
		{Lap: 1, Times: map[string]float64{"VER": 78.2, "HAM": 78.5}},
		{Lap: 2, Times: map[string]float64{"VER": 77.8}},
		{Lap: 3, Times: map[string]float64{"VER": 79.0}},
	}
	assert.Equal(t, []string{"HAM", "VER"}, m.Codes())

	lap, secs, ok := m.BestLap("VER")
	assert.True(t, ok)
	assert.Equal(t, 2, lap)
	assert.InDelta(t, 77.8, secs, 1e-9)

	last, ok := m.LastLap("HAM")
	assert.True(t, ok)
	assert.InDelta(t, 78.5, last, 1e-9)

	_, _, ok = m.BestLap("NOR")
	assert.False(t, ok)
}
