package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mpapenbr/f1-dashboard-service/log"
	"github.com/mpapenbr/f1-dashboard-service/pkg/normalize"
	"github.com/mpapenbr/f1-dashboard-service/pkg/openf1"
)

// selectors maps the type parameter to the key of the result and its loader
var selectors = map[string]struct {
	key  string
	load func(ctx context.Context, t Telemetry, sessionKey int) (any, error)
}{
	"positions": {"positions", func(ctx context.Context, t Telemetry, key int) (any, error) {
		recs, err := t.Positions(ctx, key)
		if err != nil {
			return nil, err
		}
		return normalize.LatestPositions(recs).Values(), nil
	}},
	"laps": {"laps", func(ctx context.Context, t Telemetry, key int) (any, error) {
		return t.Laps(ctx, key)
	}},
	"intervals": {"intervals", func(ctx context.Context, t Telemetry, key int) (any, error) {
		recs, err := t.Intervals(ctx, key)
		if err != nil {
			return nil, err
		}
		return normalize.LatestIntervals(recs).Values(), nil
	}},
	"stints": {"stints", func(ctx context.Context, t Telemetry, key int) (any, error) {
		return t.Stints(ctx, key)
	}},
	"pits": {"pits", func(ctx context.Context, t Telemetry, key int) (any, error) {
		return t.Pits(ctx, key)
	}},
	"race_control": {"raceControl", func(ctx context.Context, t Telemetry, key int) (any, error) {
		return t.RaceControl(ctx, key)
	}},
}

var ErrInvalidType = errors.New("invalid type parameter")

// IsValidType reports whether kind is "all", empty or a known sub-slice
func IsValidType(kind string) bool {
	_, known := selectors[kind]
	return kind == "" || kind == "all" || known
}

// LoadF1Data resolves the current session and returns either the complete
// view model (kind "all" or empty) or one sub-slice wrapped as
// {"live": bool, <key>: records}.
//
//nolint:whitespace // can't make both editor and linter happy
func LoadF1Data(
	ctx context.Context,
	t Telemetry,
	resolver SessionResolver,
	builder Builder,
	kind string,
) (any, error) {
	if !IsValidType(kind) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, kind)
	}
	session, err := resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	live := resolver.IsLive(session)
	if kind == "" || kind == "all" {
		vm := builder.Build(ctx, session)
		vm.IsLive = live
		return vm, nil
	}
	sel := selectors[kind]
	data, err := sel.load(ctx, t, session.Key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	return map[string]any{"live": live, sel.key: data}, nil
}

// f1Data returns the full view model of the current session or one sub-slice
// selected by the type parameter.
func (h *Handler) f1Data(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind := r.URL.Query().Get("type")
	data, err := LoadF1Data(ctx, h.telemetry, h.resolver, h.builder, kind)
	switch {
	case err == nil:
		writeJSON(ctx, w, http.StatusOK, data)
	case errors.Is(err, ErrInvalidType):
		writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: "Invalid type parameter"})
	case errors.Is(err, openf1.ErrNoSession) &&
		!errors.Is(err, openf1.ErrUpstreamUnavailable):
		writeJSON(ctx, w, http.StatusNotFound, errorResponse{Error: "No session data available"})
	default:
		log.GetFromContext(ctx).Error("could not fetch F1 data",
			log.String("type", kind), log.ErrorField(err))
		writeJSON(ctx, w, http.StatusInternalServerError,
			errorResponse{Error: "Failed to fetch F1 data"})
	}
}
