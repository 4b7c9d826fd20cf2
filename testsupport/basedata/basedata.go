package basedata

import (
	"time"
)

const SampleSessionKey = 9523

func TestTime() time.Time {
	t, _ := time.Parse(time.RFC3339, "2024-05-26T13:00:00Z")
	return t
}

// SessionsJSON contains two race sessions, the last one is the "current" one
const SessionsJSON = `[
  {"session_key": 9506, "meeting_key": 1233, "session_name": "Race", "session_type": "Race",
   "location": "Imola", "country_name": "Italy", "country_code": "ITA",
   "circuit_key": 6, "circuit_short_name": "Imola",
   "date_start": "2024-05-19T13:00:00+00:00", "date_end": "2024-05-19T15:00:00+00:00", "year": 2024},
  {"session_key": 9523, "meeting_key": 1234, "session_name": "Race", "session_type": "Race",
   "location": "Monaco", "country_name": "Monaco", "country_code": "MON",
   "circuit_key": 22, "circuit_short_name": "Monte Carlo",
   "date_start": "2024-05-26T13:00:00+00:00", "date_end": "2024-05-26T15:00:00+00:00", "year": 2024}
]`

const DriversJSON = `[
  {"session_key": 9523, "driver_number": 1, "name_acronym": "VER", "full_name": "Max VERSTAPPEN",
   "broadcast_name": "M VERSTAPPEN", "team_name": "Red Bull Racing", "team_colour": "3671C6"},
  {"session_key": 9523, "driver_number": 44, "name_acronym": "HAM", "full_name": "Lewis HAMILTON",
   "broadcast_name": "L HAMILTON", "team_name": "Mercedes", "team_colour": "27F4D2"},
  {"session_key": 9523, "driver_number": 16, "name_acronym": "LEC", "full_name": "Charles LECLERC",
   "broadcast_name": "C LECLERC", "team_name": "Ferrari", "team_colour": "E8002D"},
  {"session_key": 9523, "driver_number": 4, "name_acronym": "NOR", "full_name": "Lando NORRIS",
   "broadcast_name": "L NORRIS", "team_name": "McLaren", "team_colour": "FF8000"}
]`

// PositionsJSON is intentionally not ordered by date
const PositionsJSON = `[
  {"date": "2024-05-26T13:05:00+00:00", "driver_number": 16, "position": 1, "session_key": 9523},
  {"date": "2024-05-26T13:01:00+00:00", "driver_number": 1, "position": 1, "session_key": 9523},
  {"date": "2024-05-26T13:01:00+00:00", "driver_number": 44, "position": 2, "session_key": 9523},
  {"date": "2024-05-26T13:01:00+00:00", "driver_number": 16, "position": 3, "session_key": 9523},
  {"date": "2024-05-26T13:05:00+00:00", "driver_number": 1, "position": 3, "session_key": 9523},
  {"date": "2024-05-26T13:03:00+00:00", "driver_number": 44, "position": 2, "session_key": 9523}
]`

const IntervalsJSON = `[
  {"date": "2024-05-26T13:04:00+00:00", "driver_number": 44, "gap_to_leader": 1.2, "interval": 1.2, "session_key": 9523},
  {"date": "2024-05-26T13:06:00+00:00", "driver_number": 44, "gap_to_leader": 2.345, "interval": 2.345, "session_key": 9523},
  {"date": "2024-05-26T13:06:00+00:00", "driver_number": 1, "gap_to_leader": "+1 LAP", "interval": null, "session_key": 9523},
  {"date": "2024-05-26T13:06:00+00:00", "driver_number": 16, "gap_to_leader": 0, "interval": null, "session_key": 9523}
]`

const LapsJSON = `[
  {"driver_number": 16, "lap_number": 1, "lap_duration": 78.2, "session_key": 9523},
  {"driver_number": 16, "lap_number": 2, "lap_duration": 77.8, "session_key": 9523},
  {"driver_number": 44, "lap_number": 1, "lap_duration": 78.5, "session_key": 9523},
  {"driver_number": 44, "lap_number": 2, "lap_duration": null, "session_key": 9523},
  {"driver_number": 1, "lap_number": 1, "lap_duration": 79.1, "session_key": 9523}
]`

const WeatherJSON = `[
  {"date": "2024-05-26T13:00:00+00:00", "air_temperature": 20.1, "track_temperature": 40.2,
   "humidity": 60, "pressure": 1012.5, "rainfall": 0, "wind_speed": 1.1, "wind_direction": 200, "session_key": 9523},
  {"date": "2024-05-26T13:01:00+00:00", "air_temperature": 21.5, "track_temperature": 44.0,
   "humidity": 58, "pressure": 1013.1, "rainfall": 1, "wind_speed": 2.4, "wind_direction": 315, "session_key": 9523}
]`

const StintsJSON = `[
  {"driver_number": 16, "stint_number": 1, "compound": "MEDIUM", "lap_start": 1, "lap_end": 1, "tyre_age_at_start": 0, "session_key": 9523},
  {"driver_number": 16, "stint_number": 2, "compound": "HARD", "lap_start": 2, "lap_end": 2, "tyre_age_at_start": 0, "session_key": 9523},
  {"driver_number": 44, "stint_number": 1, "compound": "MEDIUM", "lap_start": 1, "lap_end": 2, "tyre_age_at_start": 3, "session_key": 9523}
]`

const PitsJSON = `[
  {"date": "2024-05-26T13:03:00+00:00", "driver_number": 16, "lap_number": 1, "pit_duration": 22.4, "session_key": 9523}
]`

const RaceControlJSON = `[
  {"date": "2024-05-26T13:00:00+00:00", "category": "Flag", "flag": "GREEN", "message": "GREEN LIGHT - PIT EXIT OPEN",
   "scope": "Track", "sector": null, "driver_number": null, "lap_number": 1, "session_key": 9523}
]`

// SampleResponses maps the OpenF1 endpoint paths to the sample payloads
func SampleResponses() map[string]string {
	return map[string]string{
		"/sessions":     SessionsJSON,
		"/drivers":      DriversJSON,
		"/position":     PositionsJSON,
		"/intervals":    IntervalsJSON,
		"/laps":         LapsJSON,
		"/weather":      WeatherJSON,
		"/stints":       StintsJSON,
		"/pit":          PitsJSON,
		"/race_control": RaceControlJSON,
	}
}
