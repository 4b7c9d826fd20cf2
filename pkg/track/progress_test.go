package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/f1-dashboard-service/pkg/model"
)

var testCars = []Car{
	{Number: 1, Code: "VER", Position: 1, LapTime: 72},
	{Number: 44, Code: "HAM", Position: 2, LapTime: 72.6},
	{Number: 16, Code: "LEC", Position: 3, LapTime: 72.9},
}

func TestSeed(t *testing.T) {
	s := Seed(testCars, DefaultConfig())
	assert.Equal(t, "1,16,44", s.Roster)
	assert.InDelta(t, 0.95, s.Progress[1], 1e-9)
	assert.InDelta(t, 0.90, s.Progress[44], 1e-9)
	assert.InDelta(t, 0.85, s.Progress[16], 1e-9)
	assert.Greater(t, s.Progress[1], s.Progress[44])
}

func TestSeed_Wraps(t *testing.T) {
	cars := make([]Car, 25)
	for i := range cars {
		cars[i] = Car{Number: i + 1, Position: i + 1}
	}
	s := Seed(cars, DefaultConfig())
	for _, c := range cars {
		p := s.Progress[c.Number]
		assert.GreaterOrEqual(t, p, 0.0)
		assert.Less(t, p, 1.0)
	}
	assert.InDelta(t, 0.75, s.Progress[25], 1e-9)
}

func TestSector(t *testing.T) {
	tests := []struct {
		progress float64
		want     int
	}{
		{0, 1},
		{0.3333, 1},
		{0.3334, 2},
		{0.5, 2},
		{0.6667, 3},
		{0.999999, 3},
		{1.0, 1},
		{-0.1, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Sector(tt.progress), "progress %v", tt.progress)
	}
}

func TestAdvance(t *testing.T) {
	cfg := DefaultConfig()
	s := State{Roster: "1", Progress: map[int]float64{1: 0.5}}
	cars := []Car{{Number: 1, LapTime: 72}}

	next := Advance(s, 1, cars, cfg)
	assert.InDelta(t, 0.56, next.Progress[1], 1e-9)
	assert.InDelta(t, 0.5, s.Progress[1], 1e-9, "input must not change")

	slow := Advance(s, 1, []Car{{Number: 1, LapTime: 144}}, cfg)
	assert.InDelta(t, 0.53, slow.Progress[1], 1e-9)

	same := Advance(s, -1, cars, cfg)
	assert.InDelta(t, 0.5, same.Progress[1], 1e-9)
}

func TestAdvance_Segments(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Segments = []Segment{{From: 0, To: 0.5, Multiplier: 2}}
	cars := []Car{{Number: 1, LapTime: 72}}

	fast := Advance(State{Progress: map[int]float64{1: 0.1}}, 1, cars, cfg)
	assert.InDelta(t, 0.22, fast.Progress[1], 1e-9)
	normal := Advance(State{Progress: map[int]float64{1: 0.6}}, 1, cars, cfg)
	assert.InDelta(t, 0.66, normal.Progress[1], 1e-9)
}

func TestAdvance_MonotonicWraparound(t *testing.T) {
	cfg := DefaultConfig()
	s := Seed(testCars, cfg)
	wraps := 0
	prev := s.Progress[1]
	// 60Hz for 60 seconds: 3.6 laps at the reference lap time
	for i := 0; i < 3600; i++ {
		s = Advance(s, 1.0/60, testCars, cfg)
		cur := s.Progress[1]
		if cur < prev {
			wraps++
		}
		assert.GreaterOrEqual(t, cur, 0.0)
		assert.Less(t, cur, 1.0)
		sector := Sector(cur)
		assert.True(t, sector >= 1 && sector <= 3)
		prev = cur
	}
	assert.Equal(t, 4, wraps)
}

func TestSync(t *testing.T) {
	cfg := DefaultConfig()
	s := Seed(testCars, cfg)
	s = Advance(s, 2, testCars, cfg)
	advanced := s.Progress[1]

	t.Run("same roster keeps progress", func(t *testing.T) {
		reordered := []Car{testCars[2], testCars[0], testCars[1]}
		got := Sync(Sync(s, reordered, cfg), reordered, cfg)
		assert.InDelta(t, advanced, got.Progress[1], 1e-9)
	})
	t.Run("changed roster reseeds", func(t *testing.T) {
		changed := append([]Car{}, testCars[:2]...)
		changed = append(changed, Car{Number: 4, Code: "NOR", Position: 3})
		got := Sync(s, changed, cfg)
		assert.Equal(t, "1,4,44", got.Roster)
		assert.InDelta(t, 0.95, got.Progress[1], 1e-9)
		assert.InDelta(t, 0.85, got.Progress[4], 1e-9)
	})
	t.Run("empty state seeds", func(t *testing.T) {
		got := Sync(State{}, testCars, cfg)
		assert.InDelta(t, 0.95, got.Progress[1], 1e-9)
	})
}

func TestCarsFromDrivers(t *testing.T) {
	drivers := make([]model.DriverRecord, 10)
	for i := range drivers {
		drivers[i] = model.DriverRecord{Number: i + 1, Code: string(rune('A' + i)), Position: i + 1}
	}
	laps := model.LapTimeMatrix{
		{Lap: 1, Times: map[string]float64{"A": 80.0}},
		{Lap: 2, Times: map[string]float64{"A": 79.5}},
	}
	cars := CarsFromDrivers(drivers, laps, DefaultConfig())
	require.Len(t, cars, 8)
	assert.InDelta(t, 79.5, cars[0].LapTime, 1e-9)
	assert.InDelta(t, 72.6, cars[1].LapTime, 1e-9)
}

func TestAnimator(t *testing.T) {
	now := time.Date(2024, 5, 26, 13, 0, 0, 0, time.UTC)
	a := NewAnimator(WithClock(func() time.Time { return now }))
	vm := &model.DashboardViewModel{Drivers: []model.DriverRecord{
		{Number: 1, Code: "VER", Position: 1},
		{Number: 44, Code: "HAM", Position: 2},
	}}
	a.Observe(vm)
	frame := a.Snapshot()
	require.Len(t, frame, 2)
	assert.InDelta(t, 0.95, frame[0].Progress, 1e-9)
	assert.Equal(t, 3, frame[0].Sector)
	assert.Equal(t, 296, frame[0].Speed)

	a.Step(now.Add(time.Second))
	frame = a.Snapshot()
	// passed the finish line
	assert.InDelta(t, 0.95+0.06*72/72.3-1, frame[0].Progress, 1e-9)
	assert.Equal(t, 1, frame[0].Sector)

	// a new poll result with the same cars does not restart the animation
	a.Observe(vm)
	assert.Equal(t, frame, a.Snapshot())

	a.Observe(nil)
	assert.Empty(t, a.Snapshot())
}
