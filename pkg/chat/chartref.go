package chat

import "strings"

type ChartRef string

const (
	ChartNone      ChartRef = ""
	ChartLapTimes  ChartRef = "laptimes"
	ChartStandings ChartRef = "standings"
	ChartGap       ChartRef = "gap"
	ChartTyre      ChartRef = "tyre"
	ChartCircuit   ChartRef = "circuit"
)

var chartKeywords = []struct {
	ref      ChartRef
	keywords []string
}{
	{ChartLapTimes, []string{"lap times chart", "lap time"}},
	{ChartStandings, []string{"standings"}},
	{ChartGap, []string{"gap chart", "gap to leader"}},
	{ChartTyre, []string{"tyre strategy", "tyre compound"}},
	{ChartCircuit, []string{"circuit", "track"}},
}

// ExtractChartRef returns the first chart (in fixed priority) mentioned in text
func ExtractChartRef(text string) ChartRef {
	lower := strings.ToLower(text)
	for _, c := range chartKeywords {
		for _, k := range c.keywords {
			if strings.Contains(lower, k) {
				return c.ref
			}
		}
	}
	return ChartNone
}
