// Package app wires configuration, authentication, transport and telemetry
// into the SDK used by the pnp commands.
package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dheniges/pnp-client/internal/auth"
	"github.com/dheniges/pnp-client/internal/config"
	"github.com/dheniges/pnp-client/internal/logger"
	"github.com/dheniges/pnp-client/pkg/graph"
	"github.com/dheniges/pnp-client/pkg/odata"
	"github.com/dheniges/pnp-client/pkg/sp"
	"github.com/dheniges/pnp-client/pkg/telemetry"
	"github.com/dheniges/pnp-client/pkg/transport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

// App is the per-invocation state shared by the commands.
type App struct {
	Config *config.Configuration
	Logger logger.Logger
	Auth   *auth.Authenticator
	SDK    SDK
}

var (
	registry    = prometheus.NewRegistry()
	metricsOnce sync.Once
	metrics     *telemetry.Metrics
	metricsErr  error
)

// Registry holds the request metrics of this process.
func Registry() *prometheus.Registry {
	return registry
}

// WriteMetrics dumps the registry in the Prometheus text format.
func WriteMetrics(path string) error {
	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}

func requestMetrics() (*telemetry.Metrics, error) {
	metricsOnce.Do(func() {
		metrics, metricsErr = telemetry.NewMetrics(registry)
	})
	return metrics, metricsErr
}

// requestObserver logs and counts every request. Spans are left to library
// callers that install a TracerProvider and add telemetry.NewTracing.
func requestObserver(log logger.Logger) (odata.Observer, error) {
	m, err := requestMetrics()
	if err != nil {
		return nil, fmt.Errorf("registering metrics: %w", err)
	}
	return odata.Observers(telemetry.Logging(log), m), nil
}

// NewApp loads configuration, applies the command's global flags and builds
// the SDK. No token is requested until the first API call.
func NewApp(cmd *cobra.Command) (*App, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	applyFlags(cmd, cfg)

	log := logger.NewDefaultLogger(cfg.Debug, cfg.LogFormat)
	a := &App{
		Config: cfg,
		Logger: log,
		Auth: auth.New(auth.Settings{
			Tenant:       cfg.Tenant,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
		}, config.NewTokenStore(cfg.Dir()), auth.WithLogger(log)),
	}

	observer, err := requestObserver(log)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	g := graph.New(a.executor(ctx, cfg.GraphURL),
		graph.WithBaseURL(cfg.GraphURL),
		graph.WithObserver(observer),
		graph.WithLogger(log),
	)
	var site *sp.Root
	if cfg.SiteURL != "" {
		site = sp.New(a.executor(ctx, cfg.SiteURL), cfg.SiteURL,
			sp.WithObserver(observer),
			sp.WithLogger(log),
		)
	}
	a.SDK = NewLiveSDK(g, site)
	return a, nil
}

// applyFlags lets explicitly passed global flags override the loaded file.
func applyFlags(cmd *cobra.Command, cfg *config.Configuration) {
	flags := cmd.Flags()
	if debug, _ := flags.GetBool("debug"); debug {
		cfg.Debug = true
	}
	if flags.Changed("site") {
		cfg.SiteURL, _ = flags.GetString("site")
	}
	if flags.Changed("output") {
		cfg.Output, _ = flags.GetString("output")
	}
	cfg.SiteURL = strings.TrimSuffix(cfg.SiteURL, "/")
}

func (a *App) executor(ctx context.Context, resource string) *transport.Client {
	h := a.Config.HTTP
	return transport.New(
		transport.WithTokenSource(&lazyTokenSource{acquire: func() (oauth2.TokenSource, error) {
			return a.Auth.TokenSource(ctx, resource)
		}}),
		transport.WithTimeout(h.Timeout),
		transport.WithRetry(h.RetryAttempts, h.RetryDelay, h.MaxRetryDelay),
		transport.WithRateLimit(h.RateLimit, h.Burst),
		transport.WithLogger(a.Logger),
	)
}

// lazyTokenSource defers reading the token store to the first request, so
// commands that never call the API work without a login.
type lazyTokenSource struct {
	once    sync.Once
	acquire func() (oauth2.TokenSource, error)
	ts      oauth2.TokenSource
	err     error
}

func (l *lazyTokenSource) Token() (*oauth2.Token, error) {
	l.once.Do(func() { l.ts, l.err = l.acquire() })
	if l.err != nil {
		return nil, l.err
	}
	return l.ts.Token()
}
