package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"

	"github.com/mpapenbr/f1-dashboard-service/log"
	"github.com/mpapenbr/f1-dashboard-service/pkg/model"
)

const (
	DefaultURL       = "https://api.groq.com/openai/v1/chat/completions"
	DefaultModel     = "llama-3.3-70b-versatile"
	FallbackReply    = "Sorry, I could not generate a response."
	MissingKeyReply  = "Sorry, the assistant is not configured on this server."
	defaultMaxTokens = 500
	defaultTemp      = 0.7
)

var (
	ErrMissingCredential = errors.New("chat api key not configured")
	ErrProvider          = errors.New("chat provider request failed")
)

const systemPrompt = `You are a Formula 1 race analyst assistant embedded in a telemetry dashboard.
Answer questions about the race data shown on the dashboard. Be specific and use numbers.
Keep answers concise and use bullet points where they help.

You can point the user to a chart by mentioning it:
- "lap times chart"
- "standings table"
- "gap chart"
- "tyre strategy"
- "circuit visualization"

The current dashboard data follows.`

var contentPath = jp.MustParseString("$.choices[0].message.content")

type (
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	Reply struct {
		ID       string   `json:"id"`
		Message  string   `json:"message"`
		ChartRef ChartRef `json:"chartRef,omitempty"`
	}
	completionRequest struct {
		Model       string    `json:"model"`
		Messages    []Message `json:"messages"`
		Temperature float64   `json:"temperature"`
		MaxTokens   int       `json:"max_tokens"`
	}
)

// Client relays chat messages to an OpenAI compatible completion endpoint
type Client struct {
	url         string
	model       string
	apiKey      string
	temperature float64
	maxTokens   int
	topN        int
	base        http.RoundTripper
	timeout     time.Duration
	l           *log.Logger
}

type Option func(*Client)

func WithURL(arg string) Option {
	return func(c *Client) {
		c.url = arg
	}
}

func WithModel(arg string) Option {
	return func(c *Client) {
		c.model = arg
	}
}

func WithAPIKey(arg string) Option {
	return func(c *Client) {
		c.apiKey = arg
	}
}

func WithTemperature(arg float64) Option {
	return func(c *Client) {
		c.temperature = arg
	}
}

func WithMaxTokens(arg int) Option {
	return func(c *Client) {
		c.maxTokens = arg
	}
}

// WithTopN limits the number of drivers put into the context
func WithTopN(arg int) Option {
	return func(c *Client) {
		c.topN = arg
	}
}

// WithTransport replaces the underlying transport. The bearer credential is
// added on top of it.
func WithTransport(arg http.RoundTripper) Option {
	return func(c *Client) {
		c.base = arg
	}
}

func WithLogger(arg *log.Logger) Option {
	return func(c *Client) {
		c.l = arg
	}
}

func NewClient(opts ...Option) *Client {
	ret := &Client{
		url:         DefaultURL,
		model:       DefaultModel,
		temperature: defaultTemp,
		maxTokens:   defaultMaxTokens,
		topN:        DefaultTopN,
		base:        otelhttp.NewTransport(http.DefaultTransport),
		timeout:     30 * time.Second,
		l:           log.Default().Named("chat"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Complete sends the conversation together with a snapshot of vm and returns
// the reply. An empty completion yields FallbackReply.
//
//nolint:whitespace // can't make both editor and linter happy
func (c *Client) Complete(
	ctx context.Context,
	messages []Message,
	vm *model.DashboardViewModel,
) (*Reply, error) {
	if !c.Configured() {
		return nil, ErrMissingCredential
	}
	body, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    c.conversation(messages, vm),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProvider, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProvider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.l.Warn("provider returned error",
			log.Int("status", resp.StatusCode), log.String("body", truncate(string(data), 512)))
		return nil, fmt.Errorf("%w: status %d", ErrProvider, resp.StatusCode)
	}

	text, err := extractContent(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProvider, err)
	}
	if text == "" {
		text = FallbackReply
	}
	return NewReply(text), nil
}

// NewReply wraps text into a reply with a fresh id and detected chart reference
func NewReply(text string) *Reply {
	return &Reply{
		ID:       uuid.Must(uuid.NewV7()).String(),
		Message:  text,
		ChartRef: ExtractChartRef(text),
	}
}

//nolint:whitespace // can't make both editor and linter happy
func (c *Client) conversation(
	messages []Message,
	vm *model.DashboardViewModel,
) []Message {
	ret := make([]Message, 0, len(messages)+1)
	ret = append(ret, Message{
		Role:    "system",
		Content: systemPrompt + "\n\n" + BuildContext(vm, c.topN),
	})
	for _, m := range messages {
		if m.Role == "system" || m.Content == "" {
			continue
		}
		ret = append(ret, m)
	}
	return ret
}

func (c *Client) httpClient() *http.Client {
	return &http.Client{
		Timeout: c.timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.apiKey}),
			Base:   c.base,
		},
	}
}

func extractContent(data []byte) (string, error) {
	obj, err := oj.Parse(data)
	if err != nil {
		return "", err
	}
	for _, v := range contentPath.Get(obj) {
		if s, ok := v.(string); ok {
			return s, nil
		}
	}
	return "", nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
