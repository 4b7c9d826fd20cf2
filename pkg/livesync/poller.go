package livesync

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/mpapenbr/f1-dashboard-service/log"
	"github.com/mpapenbr/f1-dashboard-service/pkg/model"
)

const (
	DefaultInterval     = 10 * time.Second
	DefaultFetchTimeout = 30 * time.Second
)

type (
	// FetchFunc runs one complete fetch cycle
	FetchFunc func(ctx context.Context) (*model.DashboardViewModel, error)

	// State is what consumers of the poller see.
	// Loading is only true until the first tick produced a result.
	State struct {
		Data      *model.DashboardViewModel
		Loading   bool
		Err       error
		IsLive    bool
		UpdatedAt time.Time
		Seq       uint64
	}

	Poller struct {
		fetch        FetchFunc
		now          func() time.Time
		fetchTimeout time.Duration
		unavailable  func(error) bool
		l            *log.Logger
		success      metric.Int64Counter
		failure      metric.Int64Counter
		stale        metric.Int64Counter
	}
	Option func(*Poller)
)

func WithLogger(arg *log.Logger) Option {
	return func(p *Poller) {
		p.l = arg
	}
}

func WithClock(arg func() time.Time) Option {
	return func(p *Poller) {
		p.now = arg
	}
}

// WithFetchTimeout bounds a single fetch cycle. 0 means no limit.
func WithFetchTimeout(arg time.Duration) Option {
	return func(p *Poller) {
		p.fetchTimeout = arg
	}
}

// WithUnavailable marks errors after which the previous data is dropped
// instead of retained, e.g. when no session exists at all.
func WithUnavailable(arg func(error) bool) Option {
	return func(p *Poller) {
		p.unavailable = arg
	}
}

func NewPoller(fetch FetchFunc, opts ...Option) *Poller {
	ret := &Poller{
		fetch:       fetch,
		now:         time.Now,
		unavailable: func(error) bool { return false },
		l:           log.Default().Named("livesync"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.setupMetrics()
	return ret
}

func (p *Poller) setupMetrics() {
	meter := otel.GetMeterProvider().Meter("f1d.livesync")
	var err error
	if p.success, err = meter.Int64Counter("f1d.poll.success",
		metric.WithDescription("Number of successful fetch cycles")); err != nil {
		p.l.Error("failed to register metric", log.ErrorField(err))
	}
	if p.failure, err = meter.Int64Counter("f1d.poll.failure",
		metric.WithDescription("Number of failed fetch cycles")); err != nil {
		p.l.Error("failed to register metric", log.ErrorField(err))
	}
	if p.stale, err = meter.Int64Counter("f1d.poll.stale",
		metric.WithDescription("Number of results discarded for a newer tick")); err != nil {
		p.l.Error("failed to register metric", log.ErrorField(err))
	}
}

// Start fetches once immediately and then on every interval until the
// returned handle is cancelled or ctx is done.
// Ticks may overlap. The result of the most recently issued tick wins, older
// results arriving later are discarded. onUpdate is called sequentially and
// must not call Cancel.
//
//nolint:whitespace // can't make both editor and linter happy
func (p *Poller) Start(
	ctx context.Context,
	interval time.Duration,
	onUpdate func(State),
) *Handle {
	if interval <= 0 {
		interval = DefaultInterval
	}
	loopCtx, cancel := context.WithCancel(ctx)
	h := &Handle{
		p:        p,
		onUpdate: onUpdate,
		state:    State{Loading: true},
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	// in-flight fetches are not aborted on cancel
	fetchCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(h.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		h.tick(fetchCtx)
		for {
			select {
			case <-loopCtx.Done():
				h.markCancelled()
				p.l.Debug("poller stopped")
				return
			case <-ticker.C:
				h.tick(fetchCtx)
			}
		}
	}()
	return h
}

// Handle controls a running poll loop
type Handle struct {
	p        *Poller
	onUpdate func(State)
	cancel   context.CancelFunc
	done     chan struct{}
	once     sync.Once

	mu        sync.Mutex
	state     State
	issued    uint64
	applied   uint64
	cancelled bool
}

// Cancel stops the poll loop. Once Cancel returns no further callback is
// made, even if a fetch is still in flight.
func (h *Handle) Cancel() {
	h.once.Do(func() {
		h.markCancelled()
		h.cancel()
		<-h.done
	})
}

// Done is closed once the poll loop has stopped
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// State returns the current state
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *Handle) markCancelled() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cancelled = true
}

func (h *Handle) tick(ctx context.Context) {
	h.mu.Lock()
	if h.cancelled {
		h.mu.Unlock()
		return
	}
	h.issued++
	seq := h.issued
	h.mu.Unlock()

	go func() {
		fctx := ctx
		if h.p.fetchTimeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(ctx, h.p.fetchTimeout)
			defer cancel()
		}
		data, err := h.p.fetch(fctx)
		h.apply(ctx, seq, data, err)
	}()
}

//nolint:whitespace // can't make both editor and linter happy
func (h *Handle) apply(
	ctx context.Context,
	seq uint64,
	data *model.DashboardViewModel,
	err error,
) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancelled {
		return
	}
	if seq <= h.applied {
		h.p.l.Debug("discarding stale result",
			log.Uint64("seq", seq), log.Uint64("applied", h.applied))
		h.p.stale.Add(ctx, 1)
		return
	}
	h.applied = seq

	next := h.state
	next.Loading = false
	next.Seq = seq
	next.UpdatedAt = h.p.now()
	switch {
	case err == nil:
		h.p.success.Add(ctx, 1)
		next.Data = data
		next.Err = nil
	case h.p.unavailable(err):
		h.p.failure.Add(ctx, 1)
		h.p.l.Info("no data available", log.ErrorField(err))
		next.Data = nil
		next.Err = err
	default:
		h.p.failure.Add(ctx, 1)
		h.p.l.Warn("fetch failed, keeping previous data", log.ErrorField(err))
		next.Err = err
	}
	next.IsLive = next.Data != nil && next.Data.IsLive
	h.state = next
	if h.onUpdate != nil {
		h.onUpdate(next)
	}
}
