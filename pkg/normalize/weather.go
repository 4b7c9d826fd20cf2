package normalize

import (
	"github.com/mpapenbr/f1-dashboard-service/pkg/model"
	"github.com/mpapenbr/f1-dashboard-service/pkg/openf1"
)

// LatestWeather takes the last record of the (chronological) upstream list.
// Returns nil for an empty list.
func LatestWeather(records []openf1.WeatherRecord) *model.Weather {
	if len(records) == 0 {
		return nil
	}
	w := records[len(records)-1]
	return &model.Weather{
		AirTemp:       w.AirTemperature,
		TrackTemp:     w.TrackTemperature,
		Humidity:      w.Humidity,
		Pressure:      w.Pressure,
		Rainfall:      w.Rainfall > 0,
		WindSpeed:     w.WindSpeed,
		WindDirection: w.WindDirection,
	}
}
