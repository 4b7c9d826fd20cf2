package normalize

import (
	"cmp"
	"slices"
	"time"

	"github.com/aarondl/opt/null"

	"github.com/mpapenbr/f1-dashboard-service/pkg/model"
	"github.com/mpapenbr/f1-dashboard-service/pkg/openf1"
)

// LatestPositions reduces position events to the current one per car
func LatestPositions(records []openf1.PositionRecord) *LatestSet[int, openf1.PositionRecord] {
	return ReduceLatest(records,
		func(r openf1.PositionRecord) int { return r.DriverNumber },
		func(r openf1.PositionRecord) time.Time { return r.Date })
}

// LatestIntervals reduces interval events to the current one per car
func LatestIntervals(records []openf1.IntervalRecord) *LatestSet[int, openf1.IntervalRecord] {
	return ReduceLatest(records,
		func(r openf1.IntervalRecord) int { return r.DriverNumber },
		func(r openf1.IntervalRecord) time.Time { return r.Date })
}

// BuildDrivers joins the latest position and interval of each car onto the
// roster. Cars without position data are unranked (position 0) and sorted
// after all ranked cars. Ties are ordered by car number.
//
//nolint:whitespace // can't make both editor and linter happy
func BuildDrivers(
	roster []openf1.DriverRecord,
	positions []openf1.PositionRecord,
	intervals []openf1.IntervalRecord,
) []model.DriverRecord {
	latestPos := LatestPositions(positions)
	latestInt := LatestIntervals(intervals)

	ret := make([]model.DriverRecord, 0, len(roster))
	for i := range roster {
		r := &roster[i]
		d := model.DriverRecord{
			Number: r.DriverNumber,
			Code:   r.NameAcronym,
			Name:   r.FullName,
			Team:   r.TeamName,
			Color:  TeamColor(r.TeamName),
		}
		if p, ok := latestPos.Get(r.DriverNumber); ok {
			d.Position = p.Position
		}
		iv, hasInterval := latestInt.Get(r.DriverNumber)
		d.Gap = gapLabel(d.Position, iv.GapToLeader, hasInterval)
		if hasInterval {
			if v, ok := iv.Interval.Seconds.Get(); ok && v != 0 {
				d.IntervalToNext = null.From(v)
			}
		}
		ret = append(ret, d)
	}
	SortDrivers(ret)
	return ret
}

// SortDrivers orders by position ascending with unranked drivers last
func SortDrivers(drivers []model.DriverRecord) {
	slices.SortStableFunc(drivers, func(a, b model.DriverRecord) int {
		if a.Ranked() != b.Ranked() {
			if a.Ranked() {
				return -1
			}
			return 1
		}
		return cmp.Or(cmp.Compare(a.Position, b.Position), cmp.Compare(a.Number, b.Number))
	})
}

func gapLabel(position int, gap openf1.TimeGap, present bool) string {
	if present && !gap.IsZero() {
		if gap.Text != "" {
			return gap.Text
		}
		v, _ := gap.Seconds.Get()
		return FormatGap(v)
	}
	if position == 1 {
		return model.GapLeader
	}
	return model.GapNotAvailable
}
