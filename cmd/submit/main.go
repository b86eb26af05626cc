package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dunamismax/imgbox/internal/config"
	"github.com/dunamismax/imgbox/internal/domain"
	"github.com/dunamismax/imgbox/internal/id"
	"github.com/dunamismax/imgbox/internal/logging"
	"github.com/dunamismax/imgbox/internal/queue"
	"github.com/dunamismax/imgbox/internal/store"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()
	logger := logging.New(os.Stdout, logrus.InfoLevel)

	var webhookURL string
	rootCmd := &cobra.Command{
		Use:   "submit [--webhook URL] <input> [commands...]",
		Short: "Queue an imgbox command line for the worker",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit(cmd.Context(), logger, domain.SubmitRequest{
				Input:      args[0],
				Args:       args[1:],
				WebhookURL: webhookURL,
			})
		},
		SilenceUsage: true,
	}
	rootCmd.Flags().StringVar(&webhookURL, "webhook", "", "URL notified when the run finishes")
	// Everything after the input belongs to the operation list.
	rootCmd.Flags().SetInterspersed(false)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func submit(ctx context.Context, logger *logrus.Logger, req domain.SubmitRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	cfg := config.Load()
	runStore, closeStore, err := openRunStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer closeStore()

	now := time.Now().UTC()
	run := domain.Run{
		ID:         id.New(),
		Status:     domain.RunStatusCreated,
		Input:      req.Input,
		Args:       req.Args,
		WebhookURL: req.WebhookURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := runStore.Create(ctx, run); err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	queueClient := queue.NewClient(cfg.Queue.RedisClientOpt(), cfg.Queue.Name)
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Warnf("queue client close error: %v", err)
		}
	}()

	info, err := queueClient.EnqueueRunSequence(ctx, queue.RunSequencePayload{
		RunID:       run.ID,
		Input:       run.Input,
		Args:        run.Args,
		WebhookURL:  run.WebhookURL,
		RequestedAt: now,
	})
	if err != nil {
		_, _ = runStore.UpdateStatus(ctx, run.ID, domain.StatusUpdate{Status: domain.RunStatusFailed, Error: err.Error()})
		return fmt.Errorf("enqueue run: %w", err)
	}
	if _, err := runStore.UpdateStatus(ctx, run.ID, domain.StatusUpdate{Status: domain.RunStatusQueued}); err != nil {
		logger.Warnf("run status update failed: %v", err)
	}

	logger.WithFields(logrus.Fields{
		"queue": info.Queue,
		"task":  info.ID,
	}).Infof("Queued run %s.", run.ID)
	return nil
}

// openRunStore returns the Postgres store when a DSN is configured. Without
// one the run is recorded in memory, which only lives as long as this
// process.
func openRunStore(ctx context.Context, cfg config.DatabaseConfig) (store.RunStore, func(), error) {
	if cfg.DSN == "" {
		return store.NewMemoryRunStore(), func() {}, nil
	}
	pg, err := store.NewPostgresRunStore(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	return pg, func() { _ = pg.Close() }, nil
}
