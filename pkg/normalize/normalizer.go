package normalize

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mpapenbr/f1-dashboard-service/log"
	"github.com/mpapenbr/f1-dashboard-service/pkg/model"
	"github.com/mpapenbr/f1-dashboard-service/pkg/openf1"
)

// Source provides the raw telemetry of a session.
// *openf1.Client implements it.
type Source interface {
	Drivers(ctx context.Context, sessionKey int) ([]openf1.DriverRecord, error)
	Positions(ctx context.Context, sessionKey int) ([]openf1.PositionRecord, error)
	Intervals(ctx context.Context, sessionKey int) ([]openf1.IntervalRecord, error)
	Laps(ctx context.Context, sessionKey int, driverNumbers ...int) ([]openf1.LapRecord, error)
	Weather(ctx context.Context, sessionKey int) ([]openf1.WeatherRecord, error)
	Stints(ctx context.Context, sessionKey int) ([]openf1.StintRecord, error)
}

type (
	Normalizer struct {
		src Source
		l   *log.Logger
	}
	Option func(*Normalizer)
)

func WithLogger(arg *log.Logger) Option {
	return func(n *Normalizer) {
		n.l = arg
	}
}

func NewNormalizer(src Source, opts ...Option) *Normalizer {
	ret := &Normalizer{
		src: src,
		l:   log.Default().Named("normalize"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Build fetches all sub-resources of the session concurrently and produces the
// view model. A failing sub-fetch only leaves its own field empty.
// The live flag is not set here.
//
//nolint:funlen // keeps the fetches together
func (n *Normalizer) Build(ctx context.Context, s *model.Session) *model.DashboardViewModel {
	var (
		roster    []openf1.DriverRecord
		positions []openf1.PositionRecord
		intervals []openf1.IntervalRecord
		laps      []openf1.LapRecord
		weather   []openf1.WeatherRecord
		stints    []openf1.StintRecord
	)
	key := s.Key
	l := n.l.With(log.Int("session", key))
	degrade := func(what string, err error) {
		l.Warn("sub-fetch failed, leaving field empty",
			log.String("resource", what), log.ErrorField(err))
	}

	var g errgroup.Group
	g.Go(func() (err error) {
		if roster, err = n.src.Drivers(ctx, key); err != nil {
			degrade("drivers", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if positions, err = n.src.Positions(ctx, key); err != nil {
			degrade("position", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if intervals, err = n.src.Intervals(ctx, key); err != nil {
			degrade("intervals", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if laps, err = n.src.Laps(ctx, key); err != nil {
			degrade("laps", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if weather, err = n.src.Weather(ctx, key); err != nil {
			degrade("weather", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if stints, err = n.src.Stints(ctx, key); err != nil {
			degrade("stints", err)
		}
		return nil
	})
	//nolint:errcheck // sub-fetches never return an error
	g.Wait()

	ret := &model.DashboardViewModel{
		Session:  *s,
		Drivers:  BuildDrivers(roster, positions, intervals),
		LapTimes: BuildLapMatrix(roster, laps),
		Weather:  LatestWeather(weather),
		Stints:   BuildStints(roster, stints),
	}
	ret.Session.LapCount = len(ret.LapTimes)
	l.Debug("normalized",
		log.Int("drivers", len(ret.Drivers)),
		log.Int("laps", len(ret.LapTimes)),
		log.Bool("weather", ret.Weather != nil))
	return ret
}
