package model

// DashboardViewModel is the aggregate consumed by the presentation layer.
// It is sourced either entirely from live data or entirely from demo data.
type DashboardViewModel struct {
	IsLive   bool           `json:"live"`
	Session  Session        `json:"session"`
	Drivers  []DriverRecord `json:"drivers"`
	LapTimes LapTimeMatrix  `json:"lapTimes"`
	Weather  *Weather       `json:"weather"`
	Stints   []TyreStrategy `json:"stints"`
}
