package model

type Weather struct {
	AirTemp       float64 `json:"airTemp" yaml:"airTemp"`
	TrackTemp     float64 `json:"trackTemp" yaml:"trackTemp"`
	Humidity      float64 `json:"humidity" yaml:"humidity"`
	Pressure      float64 `json:"pressure" yaml:"pressure"`
	Rainfall      bool    `json:"rainfall" yaml:"rainfall"`
	WindSpeed     float64 `json:"windSpeed" yaml:"windSpeed"`
	WindDirection int     `json:"windDirection" yaml:"windDirection"`
}
