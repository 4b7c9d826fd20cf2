package openf1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mpapenbr/f1-dashboard-service/log"
	"github.com/mpapenbr/f1-dashboard-service/pkg/utils/cache"
	"github.com/mpapenbr/f1-dashboard-service/pkg/utils/cache/loadercache"
)

const (
	DefaultBaseURL  = "https://api.openf1.org/v1"
	DefaultCacheTTL = 5 * time.Second
)

var (
	ErrUpstreamUnavailable = errors.New("telemetry upstream unavailable")
	ErrNoSession           = errors.New("no session data available")
)

// Client wraps the OpenF1 endpoints with a short lived cache.
// A failed request is answered with the last known payload for the same
// endpoint and query if there is one.
type Client struct {
	baseURL    string
	httpClient *http.Client
	ttl        time.Duration
	now        func() time.Time
	cache      cache.Cache[string, []byte]
	tracer     trace.Tracer
	l          *log.Logger
}

type Option func(*Client)

func WithBaseURL(arg string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(arg, "/")
	}
}

func WithHTTPClient(arg *http.Client) Option {
	return func(c *Client) {
		c.httpClient = arg
	}
}

func WithCacheTTL(arg time.Duration) Option {
	return func(c *Client) {
		c.ttl = arg
	}
}

// WithClock is used by the cache to decide about freshness
func WithClock(arg func() time.Time) Option {
	return func(c *Client) {
		c.now = arg
	}
}

func WithLogger(arg *log.Logger) Option {
	return func(c *Client) {
		c.l = arg
	}
}

func NewClient(opts ...Option) *Client {
	ret := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		ttl:    DefaultCacheTTL,
		now:    time.Now,
		tracer: otel.Tracer("f1d/openf1"),
		l:      log.Default().Named("openf1"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.cache = loadercache.New(
		loadercache.WithName[string, []byte]("openf1"),
		loadercache.WithExpiration[string, []byte](ret.ttl),
		loadercache.WithClock[string, []byte](ret.now),
		loadercache.WithLogger[string, []byte](ret.l.Named("cache")),
		loadercache.WithLoader(ret.load),
	)
	return ret
}

// CacheKey derives the cache key from endpoint and query parameters.
// url.Values.Encode sorts by key, so equal queries yield equal keys.
func CacheKey(endpoint string, params url.Values) string {
	if len(params) == 0 {
		return endpoint
	}
	return endpoint + "?" + params.Encode()
}

// Fetch returns the raw JSON payload of an endpoint. The returned slice is
// shared with the cache and must not be modified.
//
//nolint:whitespace // can't make both editor and linter happy
func (c *Client) Fetch(
	ctx context.Context,
	endpoint string,
	params url.Values,
) ([]byte, error) {
	return c.cache.Get(ctx, CacheKey(endpoint, params))
}

// ClearCache drops all cached payloads, forcing the next calls to hit the upstream
func (c *Client) ClearCache(ctx context.Context) {
	c.cache.InvalidateAll(ctx)
}

func (c *Client) load(ctx context.Context, key string) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "openf1.fetch",
		trace.WithAttributes(attribute.String("openf1.key", key)))
	defer span.End()

	data, err := c.get(ctx, key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("openf1.bytes", len(data)))
	return data, nil
}

func (c *Client) get(ctx context.Context, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+key, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrUpstreamUnavailable, key, err)
	}
	c.l.Debug("fetched",
		log.String("key", key),
		log.Int("status", resp.StatusCode),
		log.Int("bytes", len(data)),
		log.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned status %d",
			ErrUpstreamUnavailable, key, resp.StatusCode)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s returned invalid json", ErrUpstreamUnavailable, key)
	}
	return data, nil
}

//nolint:whitespace // can't make both editor and linter happy
func fetchList[T any](
	ctx context.Context,
	c *Client,
	endpoint string,
	params url.Values,
) ([]T, error) {
	data, err := c.Fetch(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	var ret []T
	if err := json.Unmarshal(data, &ret); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", endpoint, err)
	}
	return ret, nil
}

func sessionParams(sessionKey int) url.Values {
	return url.Values{"session_key": []string{strconv.Itoa(sessionKey)}}
}

func (c *Client) Sessions(ctx context.Context, year int, name string) ([]SessionRecord, error) {
	params := url.Values{}
	if name != "" {
		params.Set("session_name", name)
	}
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}
	return fetchList[SessionRecord](ctx, c, "/sessions", params)
}

func (c *Client) Drivers(ctx context.Context, sessionKey int) ([]DriverRecord, error) {
	return fetchList[DriverRecord](ctx, c, "/drivers", sessionParams(sessionKey))
}

func (c *Client) Positions(ctx context.Context, sessionKey int) ([]PositionRecord, error) {
	return fetchList[PositionRecord](ctx, c, "/position", sessionParams(sessionKey))
}

func (c *Client) Intervals(ctx context.Context, sessionKey int) ([]IntervalRecord, error) {
	return fetchList[IntervalRecord](ctx, c, "/intervals", sessionParams(sessionKey))
}

// Laps returns the lap records of a session, restricted to the given drivers if any
//
//nolint:whitespace // can't make both editor and linter happy
func (c *Client) Laps(
	ctx context.Context,
	sessionKey int,
	driverNumbers ...int,
) ([]LapRecord, error) {
	params := sessionParams(sessionKey)
	if len(driverNumbers) > 0 {
		nums := make([]string, len(driverNumbers))
		for i, n := range driverNumbers {
			nums[i] = strconv.Itoa(n)
		}
		params.Set("driver_number", strings.Join(nums, ","))
	}
	return fetchList[LapRecord](ctx, c, "/laps", params)
}

func (c *Client) Weather(ctx context.Context, sessionKey int) ([]WeatherRecord, error) {
	return fetchList[WeatherRecord](ctx, c, "/weather", sessionParams(sessionKey))
}

func (c *Client) Stints(ctx context.Context, sessionKey int) ([]StintRecord, error) {
	return fetchList[StintRecord](ctx, c, "/stints", sessionParams(sessionKey))
}

func (c *Client) Pits(ctx context.Context, sessionKey int) ([]PitRecord, error) {
	return fetchList[PitRecord](ctx, c, "/pit", sessionParams(sessionKey))
}

//nolint:whitespace // can't make both editor and linter happy
func (c *Client) RaceControl(ctx context.Context, sessionKey int) (
	[]RaceControlRecord, error,
) {
	return fetchList[RaceControlRecord](ctx, c, "/race_control", sessionParams(sessionKey))
}
