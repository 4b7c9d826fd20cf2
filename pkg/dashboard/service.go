package dashboard

import (
	"context"

	"github.com/mpapenbr/f1-dashboard-service/log"
	"github.com/mpapenbr/f1-dashboard-service/pkg/model"
)

type (
	SessionResolver interface {
		Resolve(ctx context.Context) (*model.Session, error)
		IsLive(s *model.Session) bool
	}
	Builder interface {
		Build(ctx context.Context, s *model.Session) *model.DashboardViewModel
	}
)

// Service chains session resolution and normalization into one fetch cycle
type Service struct {
	resolver SessionResolver
	builder  Builder
	l        *log.Logger
}

type ServiceOption func(*Service)

func WithLogger(arg *log.Logger) ServiceOption {
	return func(s *Service) {
		s.l = arg
	}
}

func NewService(resolver SessionResolver, builder Builder, opts ...ServiceOption) *Service {
	ret := &Service{
		resolver: resolver,
		builder:  builder,
		l:        log.Default().Named("dashboard"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Fetch resolves the current session and builds its view model.
// The error matches openf1.ErrNoSession if no session could be resolved.
func (s *Service) Fetch(ctx context.Context) (*model.DashboardViewModel, error) {
	session, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	vm := s.builder.Build(ctx, session)
	vm.IsLive = s.resolver.IsLive(session)
	s.l.Debug("fetched view model",
		log.Int("session", session.Key),
		log.Bool("live", vm.IsLive),
		log.Int("drivers", len(vm.Drivers)))
	return vm, nil
}
