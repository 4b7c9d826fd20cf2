package openf1

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/aarondl/opt/null"
)

// The record types mirror the flat JSON rows returned by the OpenF1 API.
// Only the fields used by this service are mapped.

type SessionRecord struct {
	SessionKey       int       `json:"session_key"`
	MeetingKey       int       `json:"meeting_key"`
	SessionName      string    `json:"session_name"`
	SessionType      string    `json:"session_type"`
	Location         string    `json:"location"`
	CountryName      string    `json:"country_name"`
	CountryCode      string    `json:"country_code"`
	CircuitKey       int       `json:"circuit_key"`
	CircuitShortName string    `json:"circuit_short_name"`
	DateStart        time.Time `json:"date_start"`
	DateEnd          time.Time `json:"date_end"`
	Year             int       `json:"year"`
}

type DriverRecord struct {
	SessionKey    int    `json:"session_key"`
	DriverNumber  int    `json:"driver_number"`
	NameAcronym   string `json:"name_acronym"`
	FullName      string `json:"full_name"`
	BroadcastName string `json:"broadcast_name"`
	TeamName      string `json:"team_name"`
	TeamColour    string `json:"team_colour"`
	CountryCode   string `json:"country_code"`
}

type PositionRecord struct {
	Date         time.Time `json:"date"`
	DriverNumber int       `json:"driver_number"`
	Position     int       `json:"position"`
	SessionKey   int       `json:"session_key"`
}

type IntervalRecord struct {
	Date         time.Time `json:"date"`
	DriverNumber int       `json:"driver_number"`
	GapToLeader  TimeGap   `json:"gap_to_leader"`
	Interval     TimeGap   `json:"interval"`
	SessionKey   int       `json:"session_key"`
}

type LapRecord struct {
	DriverNumber    int               `json:"driver_number"`
	LapNumber       int               `json:"lap_number"`
	LapDuration     null.Val[float64] `json:"lap_duration"`
	DurationSector1 null.Val[float64] `json:"duration_sector_1"`
	DurationSector2 null.Val[float64] `json:"duration_sector_2"`
	DurationSector3 null.Val[float64] `json:"duration_sector_3"`
	IsPitOutLap     bool              `json:"is_pit_out_lap"`
	StSpeed         null.Val[float64] `json:"st_speed"`
	DateStart       time.Time         `json:"date_start"`
	SessionKey      int               `json:"session_key"`
}

type WeatherRecord struct {
	Date             time.Time `json:"date"`
	AirTemperature   float64   `json:"air_temperature"`
	TrackTemperature float64   `json:"track_temperature"`
	Humidity         float64   `json:"humidity"`
	Pressure         float64   `json:"pressure"`
	Rainfall         float64   `json:"rainfall"`
	WindSpeed        float64   `json:"wind_speed"`
	WindDirection    int       `json:"wind_direction"`
	SessionKey       int       `json:"session_key"`
}

type StintRecord struct {
	DriverNumber   int    `json:"driver_number"`
	StintNumber    int    `json:"stint_number"`
	Compound       string `json:"compound"`
	LapStart       int    `json:"lap_start"`
	LapEnd         int    `json:"lap_end"`
	TyreAgeAtStart int    `json:"tyre_age_at_start"`
	SessionKey     int    `json:"session_key"`
}

type PitRecord struct {
	Date         time.Time         `json:"date"`
	DriverNumber int               `json:"driver_number"`
	LapNumber    int               `json:"lap_number"`
	PitDuration  null.Val[float64] `json:"pit_duration"`
	SessionKey   int               `json:"session_key"`
}

type RaceControlRecord struct {
	Date         time.Time     `json:"date"`
	Category     string        `json:"category"`
	Flag         string        `json:"flag"`
	Message      string        `json:"message"`
	Scope        string        `json:"scope"`
	Sector       null.Val[int] `json:"sector"`
	DriverNumber null.Val[int] `json:"driver_number"`
	LapNumber    null.Val[int] `json:"lap_number"`
	SessionKey   int           `json:"session_key"`
}

// TimeGap is either a number of seconds, a text like "+1 LAP" or null
type TimeGap struct {
	Seconds null.Val[float64]
	Text    string
}

func (g *TimeGap) UnmarshalJSON(data []byte) error {
	*g = TimeGap{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &g.Text)
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	g.Seconds = null.From(f)
	return nil
}

func (g TimeGap) MarshalJSON() ([]byte, error) {
	if v, ok := g.Seconds.Get(); ok {
		return json.Marshal(v)
	}
	if g.Text != "" {
		return json.Marshal(g.Text)
	}
	return []byte("null"), nil
}

func (g TimeGap) IsZero() bool {
	v, ok := g.Seconds.Get()
	return (!ok || v == 0) && g.Text == ""
}
