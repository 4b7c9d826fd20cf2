package normalize

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/samber/lo"

	"github.com/mpapenbr/f1-dashboard-service/pkg/model"
	"github.com/mpapenbr/f1-dashboard-service/pkg/openf1"
)

// BuildStints collects the tyre stints per car ordered by stint number.
// Cars are ordered by car number.
//
//nolint:whitespace // can't make both editor and linter happy
func BuildStints(
	roster []openf1.DriverRecord,
	stints []openf1.StintRecord,
) []model.TyreStrategy {
	codes := lo.SliceToMap(roster, func(r openf1.DriverRecord) (int, string) {
		return r.DriverNumber, r.NameAcronym
	})
	byCar := lo.GroupBy(stints, func(s openf1.StintRecord) int { return s.DriverNumber })
	cars := lo.Keys(byCar)
	slices.Sort(cars)

	ret := make([]model.TyreStrategy, 0, len(cars))
	for _, car := range cars {
		code, ok := codes[car]
		if !ok || code == "" {
			code = strconv.Itoa(car)
		}
		items := lo.Map(byCar[car], func(s openf1.StintRecord, _ int) model.Stint {
			return model.Stint{
				Number:         s.StintNumber,
				Compound:       s.Compound,
				LapStart:       s.LapStart,
				LapEnd:         s.LapEnd,
				TyreAgeAtStart: s.TyreAgeAtStart,
			}
		})
		slices.SortStableFunc(items, func(a, b model.Stint) int {
			return cmp.Compare(a.Number, b.Number)
		})
		ret = append(ret, model.TyreStrategy{Number: car, Code: code, Stints: items})
	}
	return ret
}
