package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/dunamismax/imgbox/internal/backend"
	"github.com/dunamismax/imgbox/internal/config"
	"github.com/dunamismax/imgbox/internal/domain"
	"github.com/dunamismax/imgbox/internal/logging"
	"github.com/dunamismax/imgbox/internal/metrics"
	"github.com/dunamismax/imgbox/internal/pipeline"
	"github.com/dunamismax/imgbox/internal/storage"
	"github.com/dunamismax/imgbox/internal/store"
	"github.com/dunamismax/imgbox/internal/telemetry"
	"github.com/dunamismax/imgbox/internal/viewer"
	"github.com/dunamismax/imgbox/internal/webhook"
	"github.com/dunamismax/imgbox/internal/worker"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()
	logger := logging.New(os.Stdout, logrus.InfoLevel)

	rootCmd := &cobra.Command{
		Use:          "worker",
		Short:        "Run queued imgbox command lines",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), logger, config.Load())
		},
	}

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Errorf("worker failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *logrus.Logger, cfg config.Config) error {
	logger.WithFields(logrus.Fields{
		"concurrency":     cfg.Worker.Concurrency,
		"max_active_runs": cfg.Worker.MaxActiveRuns,
		"queue":           cfg.Queue.Name,
		"redis":           cfg.Queue.RedisAddr,
		"backend":         cfg.CLI.Backend,
	}).Info("starting worker")

	shutdownTracing, err := telemetry.SetupTracing(ctx, telemetry.TraceConfig{
		ServiceName:  "imgbox-worker",
		Exporter:     cfg.Tracing.Exporter,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		OTLPInsecure: cfg.Tracing.OTLPInsecure,
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warnf("tracing shutdown: %v", err)
		}
	}()

	b, err := backend.Open(cfg.CLI.Backend)
	if err != nil {
		return err
	}
	defer backend.Shutdown()

	var storageClient *storage.Client
	if cfg.Storage.Enabled() {
		storageClient, err = storage.NewClient(storage.Config{
			Endpoint: cfg.Storage.Endpoint,
			Access:   cfg.Storage.AccessKey,
			Secret:   cfg.Storage.SecretKey,
			UseSSL:   cfg.Storage.UseSSL,
		})
		if err != nil {
			return err
		}
	}

	runStore, closeStore, err := openRunStore(ctx, logger, cfg.Database)
	if err != nil {
		return err
	}
	defer closeStore()

	m := metrics.New(true)
	seq := pipeline.NewSequencer(
		b,
		pipeline.NewRouteFetcher(storageClient),
		pipeline.NewRouteEmitter(storageClient),
		pipeline.WithViewer(viewer.Headless{Log: logger}),
		pipeline.WithMetrics(m),
		pipeline.WithQuality(cfg.CLI.JPEGQuality),
	)

	srv, err := worker.NewServer(
		logger,
		cfg.Queue,
		cfg.Worker,
		seq,
		m,
		webhook.NewClient(webhook.Config{
			SigningSecret:  cfg.Webhook.Secret,
			MaxAttempts:    4,
			InitialBackoff: time.Second,
			MaxBackoff:     8 * time.Second,
		}),
		runStore,
	)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", srv.MetricsHandler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	httpServer := &http.Server{
		Addr:              cfg.Worker.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Infof("metrics listening on %s", cfg.Worker.MetricsAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("metrics server failed: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	// asynq's Run blocks until SIGINT or SIGTERM.
	return srv.Run()
}

// openRunStore uses Postgres when a DSN is configured and falls back to an
// in-memory history otherwise.
func openRunStore(ctx context.Context, logger *logrus.Logger, cfg config.DatabaseConfig) (store.RunStore, func(), error) {
	if cfg.DSN == "" {
		logger.Warn("POSTGRES_DSN is not set; run history is kept in memory")
		return lenientStore{store.NewMemoryRunStore()}, func() {}, nil
	}
	pg, err := store.NewPostgresRunStore(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	return pg, func() { _ = pg.Close() }, nil
}

// lenientStore creates runs it has not seen, so a worker without a shared
// database still tracks the runs it processes.
type lenientStore struct {
	*store.MemoryRunStore
}

func (s lenientStore) UpdateStatus(ctx context.Context, id string, update domain.StatusUpdate) (domain.Run, error) {
	run, err := s.MemoryRunStore.UpdateStatus(ctx, id, update)
	if errors.Is(err, store.ErrRunNotFound) {
		now := time.Now().UTC()
		if err := s.Create(ctx, domain.Run{ID: id, CreatedAt: now, UpdatedAt: now}); err != nil {
			return domain.Run{}, err
		}
		return s.MemoryRunStore.UpdateStatus(ctx, id, update)
	}
	return run, err
}
