package dashboard

import (
	"context"
	"net/http"
	"slices"
	"time"

	"connectrpc.com/connect"

	"github.com/mpapenbr/f1-dashboard-service/log"
	dash "github.com/mpapenbr/f1-dashboard-service/pkg/dashboard"
	"github.com/mpapenbr/f1-dashboard-service/pkg/livesync"
	"github.com/mpapenbr/f1-dashboard-service/pkg/model"
	"github.com/mpapenbr/f1-dashboard-service/pkg/track"
	"github.com/mpapenbr/f1-dashboard-service/pkg/utils/broadcast"
)

const (
	ServiceName             = "f1d.dashboard.v1.DashboardService"
	GetDashboardProcedure   = "/" + ServiceName + "/GetDashboard"
	WatchDashboardProcedure = "/" + ServiceName + "/WatchDashboard"
	GetTrackProcedure       = "/" + ServiceName + "/GetTrack"
)

type (
	GetDashboardRequest   struct{}
	WatchDashboardRequest struct {
		// SkipInitial suppresses the current state as first message
		SkipInitial bool `json:"skipInitial"`
	}
	GetTrackRequest  struct{}
	GetTrackResponse struct {
		Cars []track.CarProgress `json:"cars"`
	}
)

func NewServer(opts ...Option) *dashboardServer {
	ret := &dashboardServer{
		state: func() livesync.State { return livesync.State{Loading: true} },
		demo:  func() *model.DashboardViewModel { return dash.DefaultDemo(time.Now()) },
		frame: func() []track.CarProgress { return nil },
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

type Option func(*dashboardServer)

func WithState(arg func() livesync.State) Option {
	return func(srv *dashboardServer) {
		srv.state = arg
	}
}

func WithDemo(arg func() *model.DashboardViewModel) Option {
	return func(srv *dashboardServer) {
		srv.demo = arg
	}
}

func WithUpdates(arg broadcast.Server[livesync.State]) Option {
	return func(srv *dashboardServer) {
		srv.updates = arg
	}
}

func WithTrack(arg func() []track.CarProgress) Option {
	return func(srv *dashboardServer) {
		srv.frame = arg
	}
}

// WithDebugWire logs every message sent to a stream
func WithDebugWire(arg bool) Option {
	return func(srv *dashboardServer) {
		srv.debugWire = arg
	}
}

type dashboardServer struct {
	state     func() livesync.State
	demo      func() *model.DashboardViewModel
	frame     func() []track.CarProgress
	updates   broadcast.Server[livesync.State]
	debugWire bool
}

// NewHandler builds the http handler serving all procedures of the service
//
//nolint:whitespace // can't make both editor and linter happy
func NewHandler(
	srv *dashboardServer,
	opts ...connect.HandlerOption,
) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec())}, opts...)
	readOpts := append(slices.Clone(opts),
		connect.WithIdempotency(connect.IdempotencyNoSideEffects))
	mux := http.NewServeMux()
	mux.Handle(GetDashboardProcedure, connect.NewUnaryHandler(
		GetDashboardProcedure, srv.GetDashboard, readOpts...))
	mux.Handle(WatchDashboardProcedure, connect.NewServerStreamHandler(
		WatchDashboardProcedure, srv.WatchDashboard, opts...))
	mux.Handle(GetTrackProcedure, connect.NewUnaryHandler(
		GetTrackProcedure, srv.GetTrack, readOpts...))
	return "/" + ServiceName + "/", mux
}

//nolint:whitespace // can't make both editor and linter happy
func (s *dashboardServer) GetDashboard(
	ctx context.Context,
	req *connect.Request[GetDashboardRequest],
) (*connect.Response[dash.Snapshot], error) {
	snap := dash.SnapshotOf(s.state(), s.demo())
	return connect.NewResponse(&snap), nil
}

//nolint:whitespace // can't make both editor and linter happy
func (s *dashboardServer) GetTrack(
	ctx context.Context,
	req *connect.Request[GetTrackRequest],
) (*connect.Response[GetTrackResponse], error) {
	cars := s.frame()
	if cars == nil {
		cars = []track.CarProgress{}
	}
	return connect.NewResponse(&GetTrackResponse{Cars: cars}), nil
}

// WatchDashboard sends the current snapshot followed by a snapshot for every
// poller update until the client disconnects.
//
//nolint:whitespace // can't make both editor and linter happy
func (s *dashboardServer) WatchDashboard(
	ctx context.Context,
	req *connect.Request[WatchDashboardRequest],
	stream *connect.ServerStream[dash.Snapshot],
) error {
	l := log.GetFromContext(ctx)
	if s.updates == nil {
		return connect.NewError(connect.CodeUnavailable, errNoUpdates)
	}
	dataChan := s.updates.Subscribe()
	defer s.updates.CancelSubscription(dataChan)

	if !req.Msg.SkipInitial {
		snap := dash.SnapshotOf(s.state(), s.demo())
		if err := stream.Send(&snap); err != nil {
			return err
		}
	}
	for {
		select {
		case <-ctx.Done():
			l.Debug("WatchDashboard client gone")
			return nil
		case st, ok := <-dataChan:
			if !ok {
				l.Debug("WatchDashboard updates closed")
				return nil
			}
			snap := dash.SnapshotOf(st, s.demo())
			if s.debugWire {
				l.Debug("Send dashboard snapshot",
					log.String("source", string(snap.Source)),
					log.Uint64("seq", st.Seq))
			}
			if err := stream.Send(&snap); err != nil {
				return err
			}
		}
	}
}
