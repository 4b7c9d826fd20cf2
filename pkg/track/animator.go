package track

import (
	"context"
	"sync"
	"time"

	"github.com/mpapenbr/f1-dashboard-service/log"
	"github.com/mpapenbr/f1-dashboard-service/pkg/model"
)

const DefaultTick = 50 * time.Millisecond

// Animator drives the interpolation with a fixed tick. It keeps advancing
// with the most recently observed cars, independent of poll timing.
type Animator struct {
	cfg   Config
	now   func() time.Time
	l     *log.Logger
	mu    sync.Mutex
	cars  []Car
	state State
	last  time.Time
}

type Option func(*Animator)

func WithConfig(arg Config) Option {
	return func(a *Animator) {
		a.cfg = arg
	}
}

func WithClock(arg func() time.Time) Option {
	return func(a *Animator) {
		a.now = arg
	}
}

func WithLogger(arg *log.Logger) Option {
	return func(a *Animator) {
		a.l = arg
	}
}

func NewAnimator(opts ...Option) *Animator {
	ret := &Animator{
		cfg: DefaultConfig(),
		now: time.Now,
		l:   log.Default().Named("track"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Observe takes over the cars of a new view model. Progress is kept unless
// the set of cars changed.
func (a *Animator) Observe(vm *model.DashboardViewModel) {
	var cars []Car
	if vm != nil {
		cars = CarsFromDrivers(vm.Drivers, vm.LapTimes, a.cfg)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	before := a.state.Roster
	a.cars = cars
	a.state = Sync(a.state, cars, a.cfg)
	if before != a.state.Roster {
		a.l.Debug("roster changed, reseeded", log.String("roster", a.state.Roster))
	}
	if a.last.IsZero() {
		a.last = a.now()
	}
}

// Step advances the state to t
func (a *Animator) Step(t time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.last.IsZero() {
		a.last = t
		return
	}
	dt := t.Sub(a.last).Seconds()
	a.last = t
	a.state = Advance(a.state, dt, a.cars, a.cfg)
}

// Snapshot returns the current frame in standings order
func (a *Animator) Snapshot() []CarProgress {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Frame(a.state, a.cars)
}

// Run steps the animation every tick until ctx is done
func (a *Animator) Run(ctx context.Context, tick time.Duration) {
	if tick <= 0 {
		tick = DefaultTick
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Step(a.now())
		}
	}
}
