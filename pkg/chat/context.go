package chat

import (
	"fmt"
	"strings"

	"github.com/mpapenbr/f1-dashboard-service/pkg/model"
	"github.com/mpapenbr/f1-dashboard-service/pkg/normalize"
)

const DefaultTopN = 10

// BuildContext renders a bounded plain text snapshot of the dashboard for the
// language model: session, data source, the first topN drivers with position,
// gap and best lap, and the weather.
func BuildContext(vm *model.DashboardViewModel, topN int) string {
	if vm == nil {
		return "No dashboard data is available."
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	var b strings.Builder
	s := vm.Session
	source := "demo data (no live session)"
	if vm.IsLive {
		source = "live"
	}
	fmt.Fprintf(&b, "Session: %s %s (%s), circuit %s, %s\n",
		s.Location, s.Name, s.Country, s.Circuit, s.StartDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "Data: %s, %d laps recorded\n", source, len(vm.LapTimes))

	drivers := vm.Drivers
	if len(drivers) > topN {
		drivers = drivers[:topN]
	}
	if len(drivers) > 0 {
		b.WriteString("Standings:\n")
	}
	for i := range drivers {
		d := &drivers[i]
		pos := "-"
		if d.Ranked() {
			pos = fmt.Sprintf("P%d", d.Position)
		}
		best := "no lap"
		if lap, secs, ok := vm.LapTimes.BestLap(d.Code); ok {
			best = fmt.Sprintf("best %s (lap %d)", normalize.FormatLapTime(secs), lap)
		}
		fmt.Fprintf(&b, "%s %s #%d %s (%s) gap %s, %s\n",
			pos, d.Code, d.Number, d.Name, d.Team, d.Gap, best)
	}
	if w := vm.Weather; w != nil {
		rain := "dry"
		if w.Rainfall {
			rain = "rain"
		}
		fmt.Fprintf(&b,
			"Weather: air %.1f°C, track %.1f°C, humidity %.0f%%, pressure %.1f hPa, "+
				"wind %.1f m/s from %d°, %s\n",
			w.AirTemp, w.TrackTemp, w.Humidity, w.Pressure, w.WindSpeed, w.WindDirection, rain)
	}
	return b.String()
}
