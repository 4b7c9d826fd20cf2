package track

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/mpapenbr/f1-dashboard-service/pkg/model"
)

// Segment scales the advance rate for cars with progress in [From, To)
type Segment struct {
	From       float64 `json:"from"`
	To         float64 `json:"to"`
	Multiplier float64 `json:"multiplier"`
}

type Config struct {
	// BaseRate is the fraction of a lap per second at the reference lap time
	BaseRate         float64
	ReferenceLapTime float64
	// SeedLead is the progress of the leader when seeding
	SeedLead float64
	// SeedStep is the gap in progress between two consecutive positions
	SeedStep float64
	// MaxCars limits the animated cars to the first n of the standings (0: all)
	MaxCars  int
	Segments []Segment
}

func DefaultConfig() Config {
	return Config{
		BaseRate:         0.06,
		ReferenceLapTime: 72,
		SeedLead:         0.95,
		SeedStep:         0.05,
		MaxCars:          8,
	}
}

// Car is the input of the interpolation
type Car struct {
	Number   int
	Code     string
	Color    string
	Position int
	LapTime  float64
}

// State maps car numbers to their progress in [0,1).
// Roster identifies the car set the state was seeded for.
type State struct {
	Roster   string
	Progress map[int]float64
}

// CarProgress is the animation frame of one car
type CarProgress struct {
	Number   int     `json:"number"`
	Code     string  `json:"code"`
	Color    string  `json:"color"`
	Position int     `json:"position"`
	Progress float64 `json:"progress"`
	Sector   int     `json:"sector"`
	Speed    int     `json:"speed"`
}

// Sector maps progress to one of the sectors 1, 2 or 3
func Sector(progress float64) int {
	s := int(math.Floor(wrap(progress)*3)) + 1
	return min(max(s, 1), 3)
}

// RosterIdentity is independent of order and positions
func RosterIdentity(cars []Car) string {
	nums := lo.Map(cars, func(c Car, _ int) int { return c.Number })
	slices.Sort(nums)
	return strings.Join(lo.Map(nums, func(n int, _ int) string { return strconv.Itoa(n) }), ",")
}

// Seed places the cars by their order: the first car at SeedLead, each
// following car SeedStep behind, wrapped into [0,1).
func Seed(cars []Car, cfg Config) State {
	ret := State{Roster: RosterIdentity(cars), Progress: make(map[int]float64, len(cars))}
	for i, c := range cars {
		ret.Progress[c.Number] = wrap(cfg.SeedLead - float64(i)*cfg.SeedStep + 1)
	}
	return ret
}

// Sync reseeds the state if the roster changed and returns it unchanged
// otherwise.
func Sync(state State, cars []Car, cfg Config) State {
	if state.Progress != nil && state.Roster == RosterIdentity(cars) {
		return state
	}
	return Seed(cars, cfg)
}

// Advance moves every car by BaseRate * dt * (ReferenceLapTime / LapTime),
// scaled by the segment multiplier, modulo 1. dt is in seconds.
// The input state is not modified.
func Advance(state State, dt float64, cars []Car, cfg Config) State {
	ret := State{Roster: state.Roster, Progress: make(map[int]float64, len(state.Progress))}
	for k, v := range state.Progress {
		ret.Progress[k] = v
	}
	if dt <= 0 {
		return ret
	}
	for _, c := range cars {
		cur, ok := ret.Progress[c.Number]
		if !ok {
			continue
		}
		lapTime := c.LapTime
		if lapTime <= 0 {
			lapTime = cfg.ReferenceLapTime
		}
		inc := cfg.BaseRate * dt * (cfg.ReferenceLapTime / lapTime) * cfg.multiplier(cur)
		ret.Progress[c.Number] = wrap(cur + inc)
	}
	return ret
}

// Frame combines cars and state into the output sequence, in car order
func Frame(state State, cars []Car) []CarProgress {
	ret := make([]CarProgress, 0, len(cars))
	for _, c := range cars {
		p := state.Progress[c.Number]
		ret = append(ret, CarProgress{
			Number:   c.Number,
			Code:     c.Code,
			Color:    c.Color,
			Position: c.Position,
			Progress: p,
			Sector:   Sector(p),
			Speed:    298 - c.Position*2,
		})
	}
	return ret
}

// CarsFromDrivers picks the animated cars from the standings. The lap time is
// the last recorded lap of the driver or a value derived from the position.
//
//nolint:whitespace // can't make both editor and linter happy
func CarsFromDrivers(
	drivers []model.DriverRecord,
	laps model.LapTimeMatrix,
	cfg Config,
) []Car {
	if cfg.MaxCars > 0 && len(drivers) > cfg.MaxCars {
		drivers = drivers[:cfg.MaxCars]
	}
	return lo.Map(drivers, func(d model.DriverRecord, _ int) Car {
		lapTime, ok := laps.LastLap(d.Code)
		if !ok || lapTime <= 0 {
			lapTime = cfg.ReferenceLapTime + float64(d.Position)*0.3
		}
		return Car{
			Number:   d.Number,
			Code:     d.Code,
			Color:    d.Color,
			Position: d.Position,
			LapTime:  lapTime,
		}
	})
}

func (cfg Config) multiplier(progress float64) float64 {
	for _, s := range cfg.Segments {
		if progress >= s.From && progress < s.To && s.Multiplier > 0 {
			return s.Multiplier
		}
	}
	return 1
}

func wrap(p float64) float64 {
	r := math.Mod(p, 1)
	if r < 0 {
		r++
	}
	if r >= 1 {
		r = 0
	}
	return r
}
