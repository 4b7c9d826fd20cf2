package openf1

import (
	"context"
	"fmt"
	"time"

	"github.com/mpapenbr/f1-dashboard-service/log"
	"github.com/mpapenbr/f1-dashboard-service/pkg/model"
)

const DefaultSessionName = "Race"

type (
	// SessionResolver determines the session all other queries are keyed on
	SessionResolver struct {
		client *Client
		year   int
		name   string
		now    func() time.Time
		l      *log.Logger
	}
	ResolverOption func(*SessionResolver)
)

// WithYear pins the season. A value <= 0 means the year of the current time.
func WithYear(arg int) ResolverOption {
	return func(r *SessionResolver) {
		r.year = arg
	}
}

func WithSessionName(arg string) ResolverOption {
	return func(r *SessionResolver) {
		r.name = arg
	}
}

func WithResolverClock(arg func() time.Time) ResolverOption {
	return func(r *SessionResolver) {
		r.now = arg
	}
}

func NewSessionResolver(client *Client, opts ...ResolverOption) *SessionResolver {
	ret := &SessionResolver{
		client: client,
		name:   DefaultSessionName,
		now:    time.Now,
		l:      log.Default().Named("openf1.session"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Resolve returns the last session of the configured season and type.
// Any failure yields an error matching ErrNoSession. If the upstream could
// not be reached the error also matches ErrUpstreamUnavailable.
func (r *SessionResolver) Resolve(ctx context.Context) (*model.Session, error) {
	year := r.year
	if year <= 0 {
		year = r.now().Year()
	}
	sessions, err := r.client.Sessions(ctx, year, r.name)
	if err != nil {
		r.l.Warn("could not fetch sessions",
			log.Int("year", year), log.String("name", r.name), log.ErrorField(err))
		return nil, fmt.Errorf("%w: %w", ErrNoSession, err)
	}
	if len(sessions) == 0 {
		r.l.Debug("no sessions found", log.Int("year", year), log.String("name", r.name))
		return nil, ErrNoSession
	}
	return ToSession(&sessions[len(sessions)-1]), nil
}

// IsLive reports whether now lies within the session start and end (inclusive)
func (r *SessionResolver) IsLive(s *model.Session) bool {
	return s.IsLiveAt(r.now())
}

func ToSession(rec *SessionRecord) *model.Session {
	return &model.Session{
		Key:        rec.SessionKey,
		MeetingKey: rec.MeetingKey,
		Name:       rec.SessionName,
		Location:   rec.Location,
		Country:    rec.CountryName,
		Circuit:    rec.CircuitShortName,
		StartDate:  rec.DateStart,
		EndDate:    rec.DateEnd,
		Type:       rec.SessionType,
		Year:       rec.Year,
	}
}
