package normalize

import (
	"slices"
	"strconv"

	"github.com/samber/lo"

	"github.com/mpapenbr/f1-dashboard-service/pkg/model"
	"github.com/mpapenbr/f1-dashboard-service/pkg/openf1"
)

// BuildLapMatrix groups lap records per car and emits one row per lap number
// up to the largest lap count of any car. A cell is only set if the car has a
// recorded, non-zero duration for that lap. Cars missing from the roster are
// keyed by their car number.
//
//nolint:whitespace // can't make both editor and linter happy
func BuildLapMatrix(
	roster []openf1.DriverRecord,
	laps []openf1.LapRecord,
) model.LapTimeMatrix {
	codes := lo.SliceToMap(roster, func(r openf1.DriverRecord) (int, string) {
		return r.DriverNumber, r.NameAcronym
	})
	byCar := lo.GroupBy(laps, func(l openf1.LapRecord) int { return l.DriverNumber })
	if len(byCar) == 0 {
		return model.LapTimeMatrix{}
	}
	maxLaps := lo.Max(lo.MapToSlice(byCar, func(_ int, l []openf1.LapRecord) int {
		return len(l)
	}))

	cars := lo.Keys(byCar)
	slices.Sort(cars)

	ret := make(model.LapTimeMatrix, maxLaps)
	for i := range ret {
		ret[i] = model.LapRow{Lap: i + 1, Times: map[string]float64{}}
	}
	for _, car := range cars {
		code, ok := codes[car]
		if !ok || code == "" {
			code = strconv.Itoa(car)
		}
		for _, l := range byCar[car] {
			if l.LapNumber < 1 || l.LapNumber > maxLaps {
				continue
			}
			if v, ok := l.LapDuration.Get(); ok && v > 0 {
				ret[l.LapNumber-1].Times[code] = v
			}
		}
	}
	return ret
}
