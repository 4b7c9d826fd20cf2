package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	Addr              string // listen addr for the HTTP/connect server
	WaitForServices   string // duration to wait for other services to be ready
	LogLevel          string // sets the log level (zap log level values)
	LogFormat         string // text vs json
	LogFilter         string // zapfilter rules
	EnableTelemetry   bool   // enable telemetry
	TelemetryEndpoint string // endpoint for telemetry (host:port or "stdout")
	ProfilingPort     int    // port for profiling
	TLSServerAddr     string // listen addr for the server (tls)
	TLSCertFile       string // path to TLS certificate
	TLSKeyFile        string // path to TLS key
	TLSCAFile         string // path to TLS CA

	OpenF1URL     string // base URL of the telemetry API
	CacheTTL      string // lifetime of cached upstream responses
	FetchTimeout  string // timeout for a single dashboard fetch
	PollInterval  string // interval between two dashboard fetches
	SessionYear   int    // year used to resolve the session (0: current year)
	SessionName   string // session name used to resolve the session
	DemoFile      string // optional demo fixture file (yaml)
	TrackTick     string // tick of the track animation
	ChatURL       string // chat completion endpoint
	ChatModel     string // chat model
	ChatAPIKey    string // credential for the chat provider
	ChatTopN      int    // number of drivers put into the chat context
	NatsURL       string // if set, dashboards are published to this NATS server
	OpenBrowser   bool   // open the dashboard in the default browser
	PrintQR       bool   // print the dashboard URL as QR code
	PublicURL     string // URL used for --open-browser/--print-qr
	DebugWire     bool   // log every streamed message on debug level
	SnapshotType  string // selector used by the snapshot command
	SnapshotChat  bool   // snapshot command prints the chat context
	ChatAPIKeyEnv = []string{"F1D_CHAT_API_KEY", "GROQ_API_KEY"}
)
