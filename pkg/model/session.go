package model

import "time"

// Session identifies one race, practice or qualifying event
type Session struct {
	Key        int       `json:"key"`
	MeetingKey int       `json:"meetingKey,omitempty"`
	Name       string    `json:"name"`
	Location   string    `json:"location"`
	Country    string    `json:"country"`
	Circuit    string    `json:"circuit"`
	StartDate  time.Time `json:"date"`
	EndDate    time.Time `json:"dateEnd"`
	Type       string    `json:"type"`
	Year       int       `json:"year,omitempty"`
	LapCount   int       `json:"lapCount,omitempty"`
}

// IsLiveAt reports whether t lies within [StartDate, EndDate]
func (s *Session) IsLiveAt(t time.Time) bool {
	if s == nil || s.StartDate.IsZero() || s.EndDate.IsZero() {
		return false
	}
	return !t.Before(s.StartDate) && !t.After(s.EndDate)
}
