package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/absmach/fldash/dashboard"
	"github.com/absmach/fldash/dashboard/api"
	"github.com/absmach/fldash/dashboard/middleware"
	"github.com/absmach/fldash/pkg/metrics"
	"github.com/absmach/fldash/pkg/mqtt"
	"github.com/absmach/fldash/pkg/sdk"
	"github.com/absmach/fldash/pkg/storage"
	"github.com/absmach/supermq/pkg/jaeger"
	"github.com/absmach/supermq/pkg/prometheus"
	"github.com/absmach/supermq/pkg/server"
	httpserver "github.com/absmach/supermq/pkg/server/http"
	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"
)

const (
	svcName       = "dashboard"
	defHTTPPort   = "8080"
	envPrefixHTTP = "DASHBOARD_HTTP_"
	pathEnv       = ".env"
)

type envConfig struct {
	LogLevel        string        `env:"DASHBOARD_LOG_LEVEL"         envDefault:"info"`
	InstanceID      string        `env:"DASHBOARD_INSTANCE_ID"`
	BackendURL      string        `env:"DASHBOARD_BACKEND_URL"       envDefault:"http://localhost:8000"`
	BackendToken    string        `env:"DASHBOARD_BACKEND_TOKEN"`
	AuthScheme      string        `env:"DASHBOARD_AUTH_SCHEME"       envDefault:"Basic"`
	BackendTimeout  time.Duration `env:"DASHBOARD_BACKEND_TIMEOUT"   envDefault:"30s"`
	TLSVerification bool          `env:"DASHBOARD_TLS_VERIFICATION"  envDefault:"true"`
	PollInterval    time.Duration `env:"DASHBOARD_POLL_INTERVAL"     envDefault:"10s"`
	MissingValues   string        `env:"DASHBOARD_MISSING_VALUES"    envDefault:"zero"`
	MQTTAddress     string        `env:"DASHBOARD_MQTT_ADDRESS"`
	MQTTQoS         uint8         `env:"DASHBOARD_MQTT_QOS"          envDefault:"1"`
	MQTTTimeout     time.Duration `env:"DASHBOARD_MQTT_TIMEOUT"      envDefault:"30s"`
	MQTTUsername    string        `env:"DASHBOARD_MQTT_USERNAME"`
	MQTTPassword    string        `env:"DASHBOARD_MQTT_PASSWORD"`
	MQTTTopicPrefix string        `env:"DASHBOARD_MQTT_TOPIC_PREFIX" envDefault:"fl"`
	Storage         storage.Config
	OTELURL         url.URL `env:"DASHBOARD_OTEL_URL"`
	TraceRatio      float64 `env:"DASHBOARD_TRACE_RATIO" envDefault:"1.0"`
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	if _, err := os.Stat(pathEnv); err == nil {
		_ = godotenv.Load(pathEnv)
	}

	cfg := envConfig{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to load configuration : %s", err.Error())
	}

	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		log.Fatalf("failed to parse log level: %s", err.Error())
	}
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	policy, err := metrics.ParseMissingValuePolicy(cfg.MissingValues)
	if err != nil {
		logger.Error("failed to parse missing value policy", slog.String("error", err.Error()))

		return
	}

	var tp trace.TracerProvider
	switch {
	case cfg.OTELURL == (url.URL{}):
		tp = noop.NewTracerProvider()
	default:
		sdktp, err := jaeger.NewProvider(ctx, svcName, cfg.OTELURL, cfg.InstanceID, cfg.TraceRatio)
		if err != nil {
			logger.Error("failed to initialize opentelemetry", slog.String("error", err.Error()))

			return
		}
		defer func() {
			if err := sdktp.Shutdown(ctx); err != nil {
				logger.Error("error shutting down tracer provider", slog.Any("error", err))
			}
		}()
		tp = sdktp
	}
	tracer := tp.Tracer(svcName)

	repos, err := storage.NewRepositories(cfg.Storage)
	if err != nil {
		logger.Error("failed to initialize storage", slog.String("error", err.Error()))

		return
	}
	if repos.Closer != nil {
		defer repos.Closer.Close()
	}

	pubsub := mqtt.NewNoop()
	if cfg.MQTTAddress != "" {
		clientID := fmt.Sprintf("%s-%s", svcName, cfg.InstanceID)
		pubsub, err = mqtt.NewPubSub(cfg.MQTTAddress, cfg.MQTTQoS, clientID, cfg.MQTTUsername, cfg.MQTTPassword, cfg.MQTTTopicPrefix, cfg.MQTTTimeout, logger)
		if err != nil {
			logger.Error("failed to initialize mqtt pubsub", slog.String("error", err.Error()))

			return
		}
		defer func() {
			if err := pubsub.Disconnect(context.Background()); err != nil {
				logger.Error("failed to disconnect mqtt pubsub", slog.Any("error", err))
			}
		}()
	}

	backend := sdk.NewSDK(sdk.Config{
		BackendURL:      cfg.BackendURL,
		AuthScheme:      cfg.AuthScheme,
		TLSVerification: cfg.TLSVerification,
		Timeout:         cfg.BackendTimeout,
	})

	svc := dashboard.NewService(backend, repos.Snapshots, repos.Trainings, metrics.NewBuilder(metrics.WithMissingValuePolicy(policy)), logger)
	svc = middleware.Logging(logger, svc)
	svc = middleware.Tracing(tracer, svc)
	counter, latency := prometheus.MakeMetrics(svcName, "api")
	svc = middleware.Metrics(counter, latency, svc)

	httpServerConfig := server.Config{Port: defHTTPPort}
	if err := env.ParseWithOptions(&httpServerConfig, env.Options{Prefix: envPrefixHTTP}); err != nil {
		logger.Error(fmt.Sprintf("failed to load %s HTTP server configuration : %s", svcName, err.Error()))

		return
	}

	hs := httpserver.NewServer(ctx, cancel, svcName, httpServerConfig, api.MakeHandler(svc, logger, cfg.InstanceID), logger)

	g.Go(func() error {
		return hs.Start()
	})

	if cfg.BackendToken != "" {
		poller := dashboard.NewPoller(svc, backend, repos.Trainings, pubsub, cfg.BackendToken, cfg.MQTTTopicPrefix, cfg.PollInterval, logger)
		g.Go(func() error {
			return poller.Start(ctx)
		})
	} else {
		logger.Info("training poller disabled, no backend token configured")
	}

	g.Go(func() error {
		return server.StopSignalHandler(ctx, cancel, logger, svcName, hs)
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("%s service exited with error: %s", svcName, err))
	}
}
