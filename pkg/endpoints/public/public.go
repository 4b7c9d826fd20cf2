package public

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mpapenbr/f1-dashboard-service/log"
	"github.com/mpapenbr/f1-dashboard-service/pkg/chat"
	"github.com/mpapenbr/f1-dashboard-service/pkg/dashboard"
	"github.com/mpapenbr/f1-dashboard-service/pkg/livesync"
	"github.com/mpapenbr/f1-dashboard-service/pkg/model"
	"github.com/mpapenbr/f1-dashboard-service/pkg/normalize"
	"github.com/mpapenbr/f1-dashboard-service/pkg/openf1"
	"github.com/mpapenbr/f1-dashboard-service/pkg/track"
	"github.com/mpapenbr/f1-dashboard-service/version"
)

const RequestIDHeader = "X-Request-ID"

type (
	// Telemetry is the part of the OpenF1 client used for the sub-slices
	Telemetry interface {
		normalize.Source
		Pits(ctx context.Context, sessionKey int) ([]openf1.PitRecord, error)
		RaceControl(ctx context.Context, sessionKey int) ([]openf1.RaceControlRecord, error)
	}
	SessionResolver interface {
		Resolve(ctx context.Context) (*model.Session, error)
		IsLive(s *model.Session) bool
	}
	Builder interface {
		Build(ctx context.Context, s *model.Session) *model.DashboardViewModel
	}
	ChatRelay interface {
		Configured() bool
		//nolint:lll // readability
		Complete(ctx context.Context, messages []chat.Message, vm *model.DashboardViewModel) (*chat.Reply, error)
	}
)

// Handler serves the JSON API consumed by the dashboard
type Handler struct {
	telemetry Telemetry
	resolver  SessionResolver
	builder   Builder
	state     func() livesync.State
	demo      func() *model.DashboardViewModel
	frame     func() []track.CarProgress
	chat      ChatRelay
	l         *log.Logger
}

type Option func(*Handler)

func WithTelemetry(arg Telemetry) Option {
	return func(h *Handler) {
		h.telemetry = arg
	}
}

func WithSessionResolver(arg SessionResolver) Option {
	return func(h *Handler) {
		h.resolver = arg
	}
}

func WithBuilder(arg Builder) Option {
	return func(h *Handler) {
		h.builder = arg
	}
}

// WithState provides the current poller state
func WithState(arg func() livesync.State) Option {
	return func(h *Handler) {
		h.state = arg
	}
}

func WithDemo(arg func() *model.DashboardViewModel) Option {
	return func(h *Handler) {
		h.demo = arg
	}
}

func WithTrack(arg func() []track.CarProgress) Option {
	return func(h *Handler) {
		h.frame = arg
	}
}

func WithChat(arg ChatRelay) Option {
	return func(h *Handler) {
		h.chat = arg
	}
}

func WithLogger(arg *log.Logger) Option {
	return func(h *Handler) {
		h.l = arg
	}
}

func NewHandler(opts ...Option) *Handler {
	ret := &Handler{
		state: func() livesync.State { return livesync.State{Loading: true} },
		demo:  func() *model.DashboardViewModel { return dashboard.DefaultDemo(time.Now()) },
		frame: func() []track.CarProgress { return nil },
		l:     log.Default().Named("api"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Routes registers all endpoints below /api
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/f1-data", h.f1Data)
	mux.HandleFunc("GET /api/dashboard", h.dashboardState)
	mux.HandleFunc("GET /api/track", h.trackFrame)
	mux.HandleFunc("POST /api/chat", h.chatMessage)
	mux.HandleFunc("GET /api/version", h.versionInfo)
	return h.withRequestID(mux)
}

func (h *Handler) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		l := h.l.With(log.String("requestId", id))
		l.Debug("request", log.String("method", r.Method), log.String("path", r.URL.Path))
		next.ServeHTTP(w, r.WithContext(log.AddToContext(r.Context(), l)))
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Live  bool   `json:"live"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.GetFromContext(ctx).Warn("could not write response", log.ErrorField(err))
	}
}

func (h *Handler) versionInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{
		"version":   version.Version,
		"commit":    version.GitCommit,
		"buildDate": version.BuildDate,
	})
}

// dashboardState returns the poller state with demo data substituted if
// there is no live data
func (h *Handler) dashboardState(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, dashboard.SnapshotOf(h.state(), h.demo()))
}

func (h *Handler) trackFrame(w http.ResponseWriter, r *http.Request) {
	cars := h.frame()
	if cars == nil {
		cars = []track.CarProgress{}
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]any{"cars": cars})
}

type chatRequest struct {
	Messages  []chat.Message            `json:"messages"`
	Dashboard *model.DashboardViewModel `json:"dashboard,omitempty"`
}

type chatResponse struct {
	*chat.Reply
	Error string `json:"error,omitempty"`
}

func (h *Handler) chatMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := log.GetFromContext(ctx)
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if len(req.Messages) == 0 {
		writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: "no messages"})
		return
	}
	vm := req.Dashboard
	if vm == nil {
		vm, _ = dashboard.Select(h.state().Data, h.demo())
	}
	if h.chat == nil || !h.chat.Configured() {
		l.Warn("chat requested but no api key configured")
		writeJSON(ctx, w, http.StatusOK, chatResponse{
			Reply: chat.NewReply(chat.MissingKeyReply),
			Error: chat.ErrMissingCredential.Error(),
		})
		return
	}
	reply, err := h.chat.Complete(ctx, req.Messages, vm)
	switch {
	case errors.Is(err, chat.ErrMissingCredential):
		writeJSON(ctx, w, http.StatusOK, chatResponse{
			Reply: chat.NewReply(chat.MissingKeyReply),
			Error: err.Error(),
		})
	case err != nil:
		l.Error("chat completion failed", log.ErrorField(err))
		writeJSON(ctx, w, http.StatusBadGateway, errorResponse{Error: "Failed to get AI response"})
	default:
		writeJSON(ctx, w, http.StatusOK, chatResponse{Reply: reply})
	}
}
