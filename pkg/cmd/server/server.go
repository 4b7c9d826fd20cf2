package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // by design
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/cli/browser"
	"github.com/rs/cors"
	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mpapenbr/f1-dashboard-service/log"
	"github.com/mpapenbr/f1-dashboard-service/pkg/config"
	"github.com/mpapenbr/f1-dashboard-service/pkg/utils"
)

//nolint:funlen // by design
func NewServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "starts the dashboard server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&config.Addr,
		"addr",
		"a",
		"localhost:8080",
		"server listen address")
	cmd.Flags().StringVar(&config.TLSServerAddr,
		"tls-addr",
		"",
		"listen address for TLS (requires --tls-cert and --tls-key)")
	cmd.Flags().StringVar(&config.TLSCertFile,
		"tls-cert",
		"",
		"path to TLS certificate")
	cmd.Flags().StringVar(&config.TLSKeyFile,
		"tls-key",
		"",
		"path to TLS key")
	cmd.Flags().StringVar(&config.TLSCAFile,
		"tls-ca",
		"",
		"path to TLS CA used to verify client certificates")
	cmd.Flags().StringVar(&config.PollInterval,
		"poll-interval",
		"10s",
		"interval between two dashboard refreshes")
	cmd.Flags().StringVar(&config.TrackTick,
		"track-tick",
		"50ms",
		"tick of the track animation")
	cmd.Flags().StringVar(&config.DemoFile,
		"demo-file",
		"",
		"yaml file with demo data (reloaded on change)")
	cmd.Flags().StringVar(&config.ChatURL,
		"chat-url",
		"https://api.groq.com/openai/v1/chat/completions",
		"chat completion endpoint")
	cmd.Flags().StringVar(&config.ChatModel,
		"chat-model",
		"llama-3.3-70b-versatile",
		"chat model")
	cmd.Flags().StringVar(&config.ChatAPIKey,
		"chat-api-key",
		"",
		"credential for the chat provider (default from F1D_CHAT_API_KEY or GROQ_API_KEY)")
	cmd.Flags().IntVar(&config.ChatTopN,
		"chat-top-n",
		10,
		"number of drivers put into the chat context")
	cmd.Flags().StringVar(&config.NatsURL,
		"nats-url",
		"",
		"publish dashboards to this NATS server")
	cmd.Flags().BoolVar(&config.EnableTelemetry,
		"enable-telemetry",
		false,
		"enables telemetry")
	cmd.Flags().StringVar(&config.TelemetryEndpoint,
		"telemetry-endpoint",
		"localhost:4317",
		"Endpoint that receives open telemetry data (use 'stdout' to print)")
	cmd.Flags().IntVar(&config.ProfilingPort,
		"profiling-port",
		0,
		"port to use for providing profiling data")
	cmd.Flags().BoolVar(&config.OpenBrowser,
		"open-browser",
		false,
		"open the dashboard in the default browser")
	cmd.Flags().BoolVar(&config.PrintQR,
		"print-qr",
		false,
		"print the dashboard URL as QR code")
	cmd.Flags().StringVar(&config.PublicURL,
		"public-url",
		"",
		"dashboard URL used by --open-browser and --print-qr (default derived from --addr)")
	cmd.Flags().BoolVar(&config.DebugWire,
		"debug-wire",
		false,
		"if true and log level is debug, streamed messages will be logged")
	return cmd
}

//nolint:funlen // by design
func startServer(ctx context.Context) error {
	logger, err := config.NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	log.ResetDefault(logger)
	log.Debug("Config:",
		log.String("openf1", config.OpenF1URL),
		log.String("addr", config.Addr),
		log.String("chat-url", config.ChatURL),
		log.Bool("nats", config.NatsURL != ""),
	)

	if config.ProfilingPort > 0 {
		log.Info("Starting profiling server on port", log.Int("port", config.ProfilingPort))
		go func() {
			//nolint:gosec // by design
			err := http.ListenAndServe(
				fmt.Sprintf("localhost:%d", config.ProfilingPort),
				nil)
			if err != nil {
				log.Error("Profiling server stopped", log.ErrorField(err))
			}
		}()
	}

	if err := waitForRequiredServices(); err != nil {
		return err
	}

	var telemetry *config.Telemetry
	if config.EnableTelemetry {
		log.Info("Enabling telemetry")
		if telemetry, err = config.SetupTelemetry(context.Background()); err != nil {
			log.Warn("Could not setup telemetry", log.ErrorField(err))
		} else {
			defer telemetry.Shutdown()
		}
		err = otlpruntime.Start(otlpruntime.WithMinimumReadMemStatsInterval(time.Second))
		if err != nil {
			log.Warn("Could not start runtime metrics", log.ErrorField(err))
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.AddToContext(ctx, logger)

	a, err := newApp()
	if err != nil {
		log.Error("server could not be started", log.ErrorField(err))
		return err
	}
	mux, err := a.routes()
	if err != nil {
		return err
	}
	a.start(ctx)
	defer a.stop()
	setupGoRoutinesDump()

	handler := h2c.NewHandler(newCORS().Handler(mux), &http2.Server{})
	servers := []*http.Server{newHTTPServer(ctx, config.Addr, handler)}
	var tlsServer *http.Server
	if config.TLSServerAddr != "" {
		tlsCfg, err := newTLSConfig(ctx,
			config.TLSCertFile, config.TLSKeyFile, config.TLSCAFile)
		if err != nil {
			log.Error("could not setup TLS", log.ErrorField(err))
			return err
		}
		tlsServer = newHTTPServer(ctx, config.TLSServerAddr, handler)
		tlsServer.TLSConfig = tlsCfg
		servers = append(servers, tlsServer)
	}

	g, gCtx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			log.Info("Starting server", log.String("addr", srv.Addr),
				log.Bool("tls", srv == tlsServer))
			var err error
			if srv == tlsServer {
				err = srv.ListenAndServeTLS("", "")
			} else {
				err = srv.ListenAndServe()
			}
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		})
	}
	g.Go(func() error {
		<-gCtx.Done()
		log.Debug("shutting down servers")
		shutdownCtx, cancel := context.WithTimeout(
			context.WithoutCancel(gCtx), 5*time.Second)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn("server shutdown", log.ErrorField(err))
			}
		}
		return nil
	})

	announce(os.Stdout, dashboardURL(config.PublicURL, config.Addr))

	if err := g.Wait(); err != nil {
		log.Error("server stopped", log.ErrorField(err))
		return err
	}
	log.Info("Server terminated")
	return nil
}

//nolint:whitespace // can't make both editor and linter happy
func newHTTPServer(
	ctx context.Context, addr string, handler http.Handler,
) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

// dashboardURL returns publicURL or, if empty, a URL derived from the
// listen address.
func dashboardURL(publicURL, addr string) string {
	if publicURL != "" {
		return publicURL
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// announce opens the browser and prints the QR code if requested
func announce(w io.Writer, url string) {
	if config.PrintQR {
		if err := printQR(w, url); err != nil {
			log.Warn("could not create QR code", log.ErrorField(err))
		}
	}
	if config.OpenBrowser {
		if err := browser.OpenURL(url); err != nil {
			log.Warn("could not open browser", log.String("url", url), log.ErrorField(err))
		}
	}
}

func printQR(w io.Writer, url string) error {
	q, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n%s\n", q.ToSmallString(false), url)
	return err
}

func setupGoRoutinesDump() {
	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGQUIT)
		buf := make([]byte, 1<<20)
		for {
			<-sigs
			stacklen := runtime.Stack(buf, true)
			fmt.Printf("=== received SIGQUIT ===\n*** goroutine dump...\n%s\n*** end\n",
				buf[:stacklen])
		}
	}()
}

// waitForRequiredServices checks that the telemetry API and, if configured,
// the NATS server are reachable.
func waitForRequiredServices() error {
	timeout := config.DurationOrDefault(config.WaitForServices, 0)
	if timeout == 0 {
		return nil
	}
	g := errgroup.Group{}
	if addr := utils.ExtractHostPort(config.OpenF1URL); addr != "" {
		g.Go(func() error { return utils.WaitForTCP(addr, timeout) })
	}
	if addr := utils.ExtractHostPort(config.NatsURL); addr != "" {
		g.Go(func() error { return utils.WaitForTCP(addr, timeout) })
	}
	log.Debug("Waiting for connection checks to return")
	if err := g.Wait(); err != nil {
		log.Error("required services not ready", log.ErrorField(err))
		return err
	}
	log.Debug("Required services are available")
	return nil
}

func newCORS() *cors.Cors {
	// To let web developers play with the service from browsers, we need a
	// very permissive CORS setup.
	return cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowOriginFunc: func(origin string) bool {
			// Allow all origins, which effectively disables CORS.
			return true
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{
			// Content-Type is in the default safelist.
			"Accept",
			"Accept-Encoding",
			"Accept-Post",
			"Connect-Accept-Encoding",
			"Connect-Content-Encoding",
			"Content-Encoding",
			"Grpc-Accept-Encoding",
			"Grpc-Encoding",
			"Grpc-Message",
			"Grpc-Status",
			"Grpc-Status-Details-Bin",
			"X-Request-Id",
			"X-Trace-Id",
		},
		// Let browsers cache CORS information for longer, which reduces the number
		// of preflight requests. Any changes to ExposedHeaders won't take effect
		// until the cached data expires. FF caps this value at 24h, and modern
		// Chrome caps it at 2h.
		MaxAge: int(2 * time.Hour / time.Second),
	})
}
