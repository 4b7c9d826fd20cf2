package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// LapRow holds the lap durations (seconds) of all drivers that completed
// lap Lap. Drivers without a recorded duration are absent from Times.
type LapRow struct {
	Lap   int
	Times map[string]float64
}

// LapTimeMatrix is ordered by lap number starting at 1
type LapTimeMatrix []LapRow

// MarshalJSON flattens the row into {"lap":1,"VER":78.2,...}
func (r LapRow) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Times)+1)
	for k, v := range r.Times {
		m[k] = v
	}
	m["lap"] = r.Lap
	return json.Marshal(m)
}

func (r *LapRow) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	lap, ok := m["lap"]
	if !ok {
		return fmt.Errorf("lap row without lap number")
	}
	delete(m, "lap")
	r.Lap = int(lap)
	r.Times = m
	return nil
}

// Codes returns the driver codes present in the matrix, sorted
func (m LapTimeMatrix) Codes() []string {
	seen := map[string]struct{}{}
	for _, row := range m {
		for code := range row.Times {
			seen[code] = struct{}{}
		}
	}
	ret := make([]string, 0, len(seen))
	for code := range seen {
		ret = append(ret, code)
	}
	sort.Strings(ret)
	return ret
}

// BestLap returns the fastest recorded lap of a driver
func (m LapTimeMatrix) BestLap(code string) (lap int, seconds float64, ok bool) {
	for _, row := range m {
		if v, found := row.Times[code]; found && (!ok || v < seconds) {
			lap, seconds, ok = row.Lap, v, true
		}
	}
	return lap, seconds, ok
}

// LastLap returns the most recent recorded lap duration of a driver
func (m LapTimeMatrix) LastLap(code string) (float64, bool) {
	for i := len(m) - 1; i >= 0; i-- {
		if v, found := m[i].Times[code]; found {
			return v, true
		}
	}
	return 0, false
}
