package model

import "github.com/aarondl/opt/null"

const (
	GapLeader       = "LEADER"
	GapNotAvailable = "N/A"
	DefaultColor    = "#FFFFFF"
)

// DriverRecord is one entry per car on the standings.
// Position 0 marks a driver without position data (unranked).
type DriverRecord struct {
	Number         int               `json:"number"`
	Code           string            `json:"code"`
	Name           string            `json:"name"`
	Team           string            `json:"team"`
	Color          string            `json:"color"`
	Position       int               `json:"position"`
	Gap            string            `json:"gap"`
	IntervalToNext null.Val[float64] `json:"intervalToNext"`
}

func (d *DriverRecord) Ranked() bool {
	return d.Position > 0
}
