package dashboard

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/aarondl/opt/null"
	"gopkg.in/yaml.v3"

	"github.com/mpapenbr/f1-dashboard-service/pkg/model"
)

//go:embed demo.yaml
var defaultDemo []byte

type (
	demoFile struct {
		Session  demoSession          `yaml:"session"`
		Drivers  []demoDriver         `yaml:"drivers"`
		LapTimes []map[string]float64 `yaml:"lapTimes"`
		Weather  *model.Weather       `yaml:"weather"`
		Stints   []demoStrategy       `yaml:"stints"`
	}
	demoSession struct {
		Name     string    `yaml:"name"`
		Location string    `yaml:"location"`
		Country  string    `yaml:"country"`
		Circuit  string    `yaml:"circuit"`
		Type     string    `yaml:"type"`
		Date     time.Time `yaml:"date"`
		DateEnd  time.Time `yaml:"dateEnd"`
	}
	demoDriver struct {
		Number         int      `yaml:"number"`
		Code           string   `yaml:"code"`
		Name           string   `yaml:"name"`
		Team           string   `yaml:"team"`
		Color          string   `yaml:"color"`
		Position       int      `yaml:"position"`
		Gap            string   `yaml:"gap"`
		IntervalToNext *float64 `yaml:"intervalToNext"`
	}
	demoStrategy struct {
		Number int          `yaml:"number"`
		Code   string       `yaml:"code"`
		Stints []model.Stint `yaml:"stints"`
	}
)

// ParseDemo reads a demo fixture. A missing session date is set to now.
func ParseDemo(data []byte, now time.Time) (*model.DashboardViewModel, error) {
	var f demoFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing demo fixture: %w", err)
	}
	if len(f.Drivers) == 0 {
		return nil, fmt.Errorf("demo fixture contains no drivers")
	}
	ret := &model.DashboardViewModel{
		Session: model.Session{
			Name:      f.Session.Name,
			Location:  f.Session.Location,
			Country:   f.Session.Country,
			Circuit:   f.Session.Circuit,
			Type:      f.Session.Type,
			StartDate: f.Session.Date,
			EndDate:   f.Session.DateEnd,
			LapCount:  len(f.LapTimes),
		},
		Drivers:  make([]model.DriverRecord, 0, len(f.Drivers)),
		LapTimes: make(model.LapTimeMatrix, 0, len(f.LapTimes)),
		Weather:  f.Weather,
		Stints:   make([]model.TyreStrategy, 0, len(f.Stints)),
	}
	if ret.Session.StartDate.IsZero() {
		ret.Session.StartDate = now
	}
	for _, d := range f.Drivers {
		ret.Drivers = append(ret.Drivers, model.DriverRecord{
			Number:         d.Number,
			Code:           d.Code,
			Name:           d.Name,
			Team:           d.Team,
			Color:          d.Color,
			Position:       d.Position,
			Gap:            d.Gap,
			IntervalToNext: null.FromPtr(d.IntervalToNext),
		})
	}
	for i, row := range f.LapTimes {
		lap, ok := row["lap"]
		if !ok {
			return nil, fmt.Errorf("demo lap row %d has no lap number", i)
		}
		times := make(map[string]float64, len(row)-1)
		for k, v := range row {
			if k != "lap" {
				times[k] = v
			}
		}
		ret.LapTimes = append(ret.LapTimes, model.LapRow{Lap: int(lap), Times: times})
	}
	for _, s := range f.Stints {
		ret.Stints = append(ret.Stints, model.TyreStrategy(s))
	}
	return ret, nil
}

// DefaultDemo returns the built-in demo fixture
func DefaultDemo(now time.Time) *model.DashboardViewModel {
	ret, err := ParseDemo(defaultDemo, now)
	if err != nil {
		panic(err)
	}
	return ret
}
