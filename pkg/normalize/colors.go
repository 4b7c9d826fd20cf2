package normalize

import "github.com/mpapenbr/f1-dashboard-service/pkg/model"

var teamColors = map[string]string{
	"Red Bull Racing": "#3671C6",
	"Ferrari":         "#E8002D",
	"Mercedes":        "#27F4D2",
	"McLaren":         "#FF8000",
	"Aston Martin":    "#229971",
	"Alpine":          "#FF87BC",
	"Williams":        "#64C4FF",
	"RB":              "#6692FF",
	"Kick Sauber":     "#52E252",
	"Haas F1 Team":    "#B6BABD",
}

// TeamColor returns the display color of a team, white for unknown teams
func TeamColor(team string) string {
	if c, ok := teamColors[team]; ok {
		return c
	}
	return model.DefaultColor
}
