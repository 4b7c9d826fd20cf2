package broadcast

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mpapenbr/f1-dashboard-service/log"
)

// Server fans out every message of a source channel to all subscribers.
// A subscriber that does not accept a message within the send timeout misses
// that message.
type Server[T any] interface {
	Subscribe() <-chan T
	CancelSubscription(<-chan T)
	Close()
}

type server[T any] struct {
	name           string
	source         <-chan T
	listeners      []chan T
	addListener    chan chan T
	removeListener chan (<-chan T)
	ctx            context.Context
	cancel         context.CancelFunc
	sendTimeout    time.Duration
	l              *log.Logger
	numRcv         atomic.Int64
	numSnd         atomic.Int64
	numSkip        atomic.Int64
	numListeners   atomic.Int64
}

type Option[T any] func(*server[T])

func WithSendTimeout[T any](arg time.Duration) Option[T] {
	return func(b *server[T]) {
		b.sendTimeout = arg
	}
}

func WithLogger[T any](arg *log.Logger) Option[T] {
	return func(b *server[T]) {
		b.l = arg
	}
}

// NewServer starts serving until Close is called or source is closed
func NewServer[T any](name string, source <-chan T, opts ...Option[T]) Server[T] {
	ctx, cancel := context.WithCancel(context.Background())
	b := &server[T]{
		name:           name,
		source:         source,
		addListener:    make(chan chan T),
		removeListener: make(chan (<-chan T)),
		ctx:            ctx,
		cancel:         cancel,
		sendTimeout:    50 * time.Millisecond,
		l:              log.Default().Named("broadcast"),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.setupMetrics()
	go b.serve()
	return b
}

// Subscribe returns a channel receiving all future messages.
// The channel is closed when the server is closed.
func (b *server[T]) Subscribe() <-chan T {
	ch := make(chan T, 1)
	select {
	case b.addListener <- ch:
	case <-b.ctx.Done():
		close(ch)
	}
	return ch
}

func (b *server[T]) CancelSubscription(ch <-chan T) {
	select {
	case b.removeListener <- ch:
	case <-b.ctx.Done():
	}
}

func (b *server[T]) Close() {
	b.l.Info("closing broadcast server",
		log.String("name", b.name),
		log.Int64("rcv", b.numRcv.Load()),
		log.Int64("snd", b.numSnd.Load()),
		log.Int64("skip", b.numSkip.Load()))
	b.cancel()
}

func (b *server[T]) setupMetrics() {
	meter := otel.GetMeterProvider().Meter("f1d.broadcast")
	attrs := metric.WithAttributes(attribute.String("name", b.name))
	type data struct {
		name  string
		desc  string
		value *atomic.Int64
	}
	for _, d := range []data{
		{"f1d.broadcast.rcv", "Number of received messages", &b.numRcv},
		{"f1d.broadcast.snd", "Number of sent messages", &b.numSnd},
		{"f1d.broadcast.skip", "Number of skipped messages", &b.numSkip},
		{"f1d.broadcast.listener", "Number of listeners", &b.numListeners},
	} {
		value := d.value
		if _, err := meter.Int64ObservableGauge(
			d.name,
			metric.WithDescription(d.desc),
			metric.WithUnit("{count}"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				o.Observe(value.Load(), attrs)
				return nil
			})); err != nil {
			b.l.Error("failed to register metric",
				log.String("metric", d.name), log.ErrorField(err))
		}
	}
}

//nolint:cyclop // by design
func (b *server[T]) serve() {
	defer func() {
		b.l.Debug("closing listeners", log.String("name", b.name))
		for _, listener := range b.listeners {
			close(listener)
		}
		b.listeners = nil
		b.numListeners.Store(0)
	}()
	for {
		select {
		case <-b.ctx.Done():
			return
		case ch := <-b.addListener:
			b.listeners = append(b.listeners, ch)
			b.numListeners.Store(int64(len(b.listeners)))
		case ch := <-b.removeListener:
			for i, listener := range b.listeners {
				if listener == ch {
					b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
					close(listener)
					break
				}
			}
			b.numListeners.Store(int64(len(b.listeners)))
		case msg, ok := <-b.source:
			if !ok {
				b.l.Debug("source closed", log.String("name", b.name))
				b.cancel()
				return
			}
			b.numRcv.Add(1)
			for _, listener := range b.listeners {
				select {
				case listener <- msg:
					b.numSnd.Add(1)
				case <-time.After(b.sendTimeout):
					b.numSkip.Add(1)
				}
			}
		}
	}
}
