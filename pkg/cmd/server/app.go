package server

import (
	"context"
	"errors"
	"net/http"
	"os"

	"connectrpc.com/connect"
	"connectrpc.com/grpchealth"
	"connectrpc.com/otelconnect"

	"github.com/mpapenbr/f1-dashboard-service/log"
	"github.com/mpapenbr/f1-dashboard-service/pkg/chat"
	"github.com/mpapenbr/f1-dashboard-service/pkg/config"
	"github.com/mpapenbr/f1-dashboard-service/pkg/dashboard"
	"github.com/mpapenbr/f1-dashboard-service/pkg/endpoints/public"
	dashsrv "github.com/mpapenbr/f1-dashboard-service/pkg/grpc/server/dashboard"
	"github.com/mpapenbr/f1-dashboard-service/pkg/grpc/server/util"
	"github.com/mpapenbr/f1-dashboard-service/pkg/livesync"
	"github.com/mpapenbr/f1-dashboard-service/pkg/normalize"
	"github.com/mpapenbr/f1-dashboard-service/pkg/openf1"
	"github.com/mpapenbr/f1-dashboard-service/pkg/publish/nats"
	"github.com/mpapenbr/f1-dashboard-service/pkg/track"
	"github.com/mpapenbr/f1-dashboard-service/pkg/utils/broadcast"
)

// app holds the wired components of the service
type app struct {
	client     *openf1.Client
	resolver   *openf1.SessionResolver
	normalizer *normalize.Normalizer
	service    *dashboard.Service
	demo       *dashboard.DemoStore
	animator   *track.Animator
	chat       *chat.Client
	poller     *livesync.Poller
	handle     *livesync.Handle
	updateCh   chan livesync.State
	updates    broadcast.Server[livesync.State]
	publisher  *nats.Publisher
	l          *log.Logger
}

// upstreamUnavailable decides which poll errors clear the displayed data
func upstreamUnavailable(err error) bool {
	return errors.Is(err, openf1.ErrNoSession) &&
		!errors.Is(err, openf1.ErrUpstreamUnavailable)
}

func chatAPIKey() string {
	if config.ChatAPIKey != "" {
		return config.ChatAPIKey
	}
	for _, env := range config.ChatAPIKeyEnv {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return ""
}

func newApp() (*app, error) {
	l := log.Default()
	ret := &app{l: l.Named("app")}
	ret.client = openf1.NewClient(
		openf1.WithBaseURL(config.OpenF1URL),
		openf1.WithCacheTTL(config.DurationOrDefault(config.CacheTTL,
			openf1.DefaultCacheTTL)),
		openf1.WithLogger(l.Named("openf1")),
	)
	ret.resolver = openf1.NewSessionResolver(ret.client,
		openf1.WithYear(config.SessionYear),
		openf1.WithSessionName(config.SessionName))
	ret.normalizer = normalize.NewNormalizer(ret.client,
		normalize.WithLogger(l.Named("normalize")))
	ret.service = dashboard.NewService(ret.resolver, ret.normalizer,
		dashboard.WithLogger(l.Named("dashboard")))

	var err error
	ret.demo, err = dashboard.NewDemoStore(
		dashboard.WithDemoFile(config.DemoFile),
		dashboard.WithDemoLogger(l.Named("demo")))
	if err != nil {
		return nil, err
	}
	ret.animator = track.NewAnimator(track.WithLogger(l.Named("track")))
	ret.chat = chat.NewClient(
		chat.WithURL(config.ChatURL),
		chat.WithModel(config.ChatModel),
		chat.WithAPIKey(chatAPIKey()),
		chat.WithTopN(config.ChatTopN),
		chat.WithLogger(l.Named("chat")))
	if !ret.chat.Configured() {
		ret.l.Warn("no chat credential configured, chat replies will be apologies")
	}
	ret.poller = livesync.NewPoller(ret.service.Fetch,
		livesync.WithFetchTimeout(config.DurationOrDefault(config.FetchTimeout,
			livesync.DefaultFetchTimeout)),
		livesync.WithUnavailable(upstreamUnavailable),
		livesync.WithLogger(l.Named("livesync")))
	ret.updateCh = make(chan livesync.State, 1)
	ret.updates = broadcast.NewServer("dashboard", ret.updateCh,
		broadcast.WithLogger[livesync.State](l.Named("broadcast")))

	if config.NatsURL != "" {
		conn, err := nats.Connect(config.NatsURL)
		if err != nil {
			return nil, err
		}
		ret.publisher = nats.NewPublisher(conn, nats.WithLogger(l.Named("nats")))
	}
	return ret, nil
}

// start launches the background loops. They stop when ctx is done.
func (a *app) start(ctx context.Context) {
	go func() {
		if err := a.demo.Watch(ctx); err != nil {
			a.l.Warn("demo file is not watched", log.ErrorField(err))
		}
	}()
	a.animator.Observe(a.demo.Current())
	go a.animator.Run(ctx, config.DurationOrDefault(config.TrackTick,
		track.DefaultTick))
	if a.publisher != nil {
		go a.publisher.Run(ctx, a.updates)
	}
	a.handle = a.poller.Start(ctx,
		config.DurationOrDefault(config.PollInterval, livesync.DefaultInterval),
		func(s livesync.State) {
			a.animator.Observe(dashboard.SnapshotOf(s, a.demo.Current()).Data)
			select {
			case a.updateCh <- s:
			case <-ctx.Done():
			}
		})
}

func (a *app) stop() {
	if a.handle != nil {
		a.handle.Cancel()
	}
	a.updates.Close()
}

func (a *app) state() livesync.State {
	if a.handle == nil {
		return livesync.State{Loading: true}
	}
	return a.handle.State()
}

func (a *app) routes() (*http.ServeMux, error) {
	mux := http.NewServeMux()
	myOtel, err := otelconnect.NewInterceptor()
	if err != nil {
		return nil, err
	}
	interceptors := connect.WithInterceptors(
		myOtel,
		util.NewTraceIDInterceptor(),
		util.NewLoggerInterceptor(a.l.Named("connect")),
	)
	srv := dashsrv.NewServer(
		dashsrv.WithState(a.state),
		dashsrv.WithDemo(a.demo.Current),
		dashsrv.WithUpdates(a.updates),
		dashsrv.WithTrack(a.animator.Snapshot),
		dashsrv.WithDebugWire(config.DebugWire),
	)
	mux.Handle(dashsrv.NewHandler(srv, interceptors))
	mux.Handle(grpchealth.NewHandler(
		grpchealth.NewStaticChecker(dashsrv.ServiceName)))

	pub := public.NewHandler(
		public.WithTelemetry(a.client),
		public.WithSessionResolver(a.resolver),
		public.WithBuilder(a.normalizer),
		public.WithState(a.state),
		public.WithDemo(a.demo.Current),
		public.WithTrack(a.animator.Snapshot),
		public.WithChat(a.chat),
		public.WithLogger(a.l.Named("http")),
	)
	mux.Handle("/", pub.Routes())
	return mux, nil
}
