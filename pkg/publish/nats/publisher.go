package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/mpapenbr/f1-dashboard-service/log"
	"github.com/mpapenbr/f1-dashboard-service/pkg/livesync"
	"github.com/mpapenbr/f1-dashboard-service/pkg/model"
	"github.com/mpapenbr/f1-dashboard-service/pkg/utils/broadcast"
)

const SubjectPrefix = "f1d.dashboard"

type (
	// Conn is the part of *nats.Conn used for publishing
	Conn interface {
		Publish(subj string, data []byte) error
	}
	Publisher struct {
		ctx   context.Context
		conn  Conn
		l     *log.Logger
		mutex sync.Mutex
		// last published update per session key
		published map[int]time.Time
	}
	Option func(*Publisher)
)

// Connect opens a connection that keeps reconnecting in the background
func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("f1-dashboard-service"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second))
}

func NewPublisher(conn Conn, opts ...Option) *Publisher {
	ret := &Publisher{
		ctx:       context.Background(),
		conn:      conn,
		l:         log.Default().Named("nats"),
		published: make(map[int]time.Time),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func WithContext(ctx context.Context) Option {
	return func(p *Publisher) {
		p.ctx = ctx
	}
}

func WithLogger(l *log.Logger) Option {
	return func(p *Publisher) {
		p.l = l
	}
}

func Subject(sessionKey int) string {
	return fmt.Sprintf("%s.%d", SubjectPrefix, sessionKey)
}

// Publish sends the view model carried by s.
// States without data or already published updates are skipped.
func (p *Publisher) Publish(s livesync.State) (bool, error) {
	if s.Data == nil {
		return false, nil
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	key := s.Data.Session.Key
	if last, ok := p.published[key]; ok && !s.UpdatedAt.After(last) {
		return false, nil
	}
	data, err := json.Marshal(s.Data)
	if err != nil {
		return false, err
	}
	if err := p.conn.Publish(Subject(key), data); err != nil {
		return false, err
	}
	p.published[key] = s.UpdatedAt
	return true, nil
}

// Run publishes every update received from source until the context is done
// or the source is closed.
//
//nolint:whitespace // can't make both editor and linter happy
func (p *Publisher) Run(
	ctx context.Context,
	source broadcast.Server[livesync.State],
) {
	ch := source.Subscribe()
	defer source.CancelSubscription(ch)
	for {
		select {
		case <-ctx.Done():
			p.l.Debug("context done, stopping publisher")
			return
		case <-p.ctx.Done():
			return
		case s, ok := <-ch:
			if !ok {
				p.l.Debug("update channel closed, stopping publisher")
				return
			}
			sent, err := p.Publish(s)
			if err != nil {
				p.l.Warn("could not publish dashboard",
					log.Int("session", sessionKey(s.Data)),
					log.ErrorField(err))
				continue
			}
			if sent {
				p.l.Debug("published dashboard",
					log.String("subject", Subject(s.Data.Session.Key)))
			}
		}
	}
}

func sessionKey(vm *model.DashboardViewModel) int {
	if vm == nil {
		return 0
	}
	return vm.Session.Key
}
