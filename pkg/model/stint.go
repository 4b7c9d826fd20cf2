package model

// Stint is a contiguous run of laps on one tyre compound
type Stint struct {
	Number         int    `json:"stint" yaml:"stint"`
	Compound       string `json:"compound" yaml:"compound"`
	LapStart       int    `json:"startLap" yaml:"startLap"`
	LapEnd         int    `json:"endLap" yaml:"endLap"`
	TyreAgeAtStart int    `json:"tyreAgeAtStart" yaml:"tyreAgeAtStart"`
}

type TyreStrategy struct {
	Number int     `json:"number" yaml:"number"`
	Code   string  `json:"code" yaml:"code"`
	Stints []Stint `json:"stints" yaml:"stints"`
}
