package chat

import (
	"strings"
	"testing"

	"github.com/aarondl/opt/null"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/mpapenbr/f1-dashboard-service/pkg/model"
	"github.com/mpapenbr/f1-dashboard-service/testsupport/basedata"
)

func sampleViewModel() *model.DashboardViewModel {
	return &model.DashboardViewModel{
		IsLive: true,
		Session: model.Session{
			Name: "Race", Location: "Monaco", Country: "Monaco", Circuit: "Monte Carlo",
			StartDate: basedata.TestTime(),
		},
		Drivers: []model.DriverRecord{
			{Number: 16, Code: "LEC", Name: "Charles LECLERC", Team: "Ferrari", Position: 1, Gap: "LEADER"},
			{
				Number: 44, Code: "HAM", Name: "Lewis HAMILTON", Team: "Mercedes", Position: 2,
				Gap: "+2.345", IntervalToNext: null.From(2.345),
			},
			{Number: 4, Code: "NOR", Name: "Lando NORRIS", Team: "McLaren", Gap: "N/A"},
		},
		LapTimes: model.LapTimeMatrix{
			{Lap: 1, Times: map[string]float64{"LEC": 78.2, "HAM": 78.5}},
			{Lap: 2, Times: map[string]float64{"LEC": 77.8}},
		},
		Weather: &model.Weather{
			AirTemp: 21.5, TrackTemp: 44, Humidity: 58, Pressure: 1013.1,
			Rainfall: true, WindSpeed: 2.4, WindDirection: 315,
		},
	}
}

func TestBuildContext(t *testing.T) {
	got := BuildContext(sampleViewModel(), 10)

	assert.Check(t, is.Contains(got, "Session: Monaco Race (Monaco), circuit Monte Carlo, 2024-05-26"))
	assert.Check(t, is.Contains(got, "Data: live, 2 laps recorded"))
	assert.Check(t, is.Contains(got, "P1 LEC #16 Charles LECLERC (Ferrari) gap LEADER, best 1:17.800 (lap 2)"))
	assert.Check(t, is.Contains(got, "P2 HAM #44 Lewis HAMILTON (Mercedes) gap +2.345, best 1:18.500 (lap 1)"))
	assert.Check(t, is.Contains(got, "- NOR #4 Lando NORRIS (McLaren) gap N/A, no lap"))
	assert.Check(t, is.Contains(got, "air 21.5°C, track 44.0°C, humidity 58%"))
	assert.Check(t, is.Contains(got, "rain"))
}

func TestBuildContext_TopN(t *testing.T) {
	got := BuildContext(sampleViewModel(), 1)
	assert.Check(t, is.Contains(got, "LEC"))
	assert.Check(t, !strings.Contains(got, "HAM"))
}

func TestBuildContext_Demo(t *testing.T) {
	vm := sampleViewModel()
	vm.IsLive = false
	vm.Weather = nil
	got := BuildContext(vm, 0)
	assert.Check(t, is.Contains(got, "demo data"))
	assert.Check(t, !strings.Contains(got, "Weather"))
}

func TestBuildContext_Nil(t *testing.T) {
	assert.Equal(t, "No dashboard data is available.", BuildContext(nil, 5))
}
