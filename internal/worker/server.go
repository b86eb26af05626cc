package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dunamismax/imgbox/internal/command"
	"github.com/dunamismax/imgbox/internal/config"
	"github.com/dunamismax/imgbox/internal/domain"
	"github.com/dunamismax/imgbox/internal/logging"
	"github.com/dunamismax/imgbox/internal/metrics"
	"github.com/dunamismax/imgbox/internal/pipeline"
	"github.com/dunamismax/imgbox/internal/queue"
	"github.com/dunamismax/imgbox/internal/store"
	"github.com/dunamismax/imgbox/internal/webhook"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Server struct {
	logger        *logrus.Logger
	server        *asynq.Server
	sem           chan struct{}
	sequencer     sequenceRunner
	outputDir     string
	webhookClient webhookSender
	runStore      store.RunStore
	metrics       *metrics.Metrics
	workerMetrics *workerMetrics
	tracer        trace.Tracer
}

type sequenceRunner interface {
	Run(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
}

type webhookSender interface {
	Send(ctx context.Context, endpoint string, event webhook.Event) error
}

func NewServer(
	logger *logrus.Logger,
	queueCfg config.QueueConfig,
	workerCfg config.WorkerConfig,
	sequencer *pipeline.Sequencer,
	m *metrics.Metrics,
	webhookClient *webhook.Client,
	runStore store.RunStore,
) (*Server, error) {
	if sequencer == nil {
		return nil, errors.New("sequencer is required")
	}
	if runStore == nil {
		return nil, errors.New("run store is required")
	}

	s := &Server{
		logger: logger,
		server: asynq.NewServer(
			queueCfg.RedisClientOpt(),
			asynq.Config{
				Concurrency: workerCfg.Concurrency,
				Queues: map[string]int{
					queueCfg.Name: 1,
				},
				LogLevel: asynq.InfoLevel,
				Logger:   logger,
				ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
					retried, _ := asynq.GetRetryCount(ctx)
					maxRetry, _ := asynq.GetMaxRetry(ctx)
					logger.WithFields(logrus.Fields{
						"type":  task.Type(),
						"retry": fmt.Sprintf("%d/%d", retried, maxRetry),
					}).Errorf("task failed: %v", err)
				}),
			},
		),
		sem:           make(chan struct{}, max(1, workerCfg.MaxActiveRuns)),
		sequencer:     sequencer,
		outputDir:     workerCfg.LocalOutputDir,
		webhookClient: webhookClient,
		runStore:      runStore,
		metrics:       m,
		workerMetrics: newWorkerMetrics(m),
		tracer:        otel.Tracer("imgbox/worker"),
	}
	return s, nil
}

func (s *Server) Run() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypeRunSequence, s.handleRunSequence)
	return s.server.Run(mux)
}

func (s *Server) Shutdown() {
	s.server.Shutdown()
}

func (s *Server) MetricsHandler() http.Handler {
	return s.metrics.Handler()
}

func (s *Server) handleRunSequence(ctx context.Context, task *asynq.Task) error {
	startedAt := time.Now()
	outcome := domain.RunStatusFailed

	payload, err := queue.ParseRunSequencePayload(task)
	if err != nil {
		return fmt.Errorf("parse payload: %v: %w", err, asynq.SkipRetry)
	}

	ctx, span := s.tracer.Start(ctx, "worker.run_sequence", trace.WithSpanKind(trace.SpanKindConsumer))
	span.SetAttributes(
		attribute.String("run.id", payload.RunID),
		attribute.String("run.input", payload.Input),
		attribute.Int("run.tokens", len(payload.Args)),
	)
	defer span.End()
	defer func() {
		s.workerMetrics.taskDuration.WithLabelValues(outcome).Observe(time.Since(startedAt).Seconds())
		s.workerMetrics.tasksTotal.WithLabelValues(outcome).Inc()
	}()

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.sem }()

	log := s.logger.WithField("run_id", payload.RunID)
	log.WithField("input", payload.Input).Infof("Working... tokens=%d", len(payload.Args))
	s.updateRunStatus(ctx, payload.RunID, domain.StatusUpdate{Status: domain.RunStatusProcessing})

	// Each run gets its own logger: the verbose operation changes the level.
	runLog := logging.New(s.logger.Out, s.logger.GetLevel())
	computeStart := time.Now()
	result, err := s.sequencer.Run(ctx, pipeline.Request{
		RunID:     payload.RunID,
		Input:     payload.Input,
		Args:      payload.Args,
		OutputDir: s.outputDir,
		Logger:    runLog,
	})
	usage := summarize(result, time.Since(computeStart))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sequence failed")

		retryable := !permanent(err)
		if retryable && !finalAttempt(ctx) {
			log.Warnf("Sequence failed, will retry: %v", err)
			return fmt.Errorf("run sequence: %w", err)
		}

		s.updateRunStatus(ctx, payload.RunID, domain.StatusUpdate{
			Status:  domain.RunStatusFailed,
			Outputs: outputPaths(result),
			Error:   err.Error(),
		})
		s.dispatchWebhook(ctx, payload, webhook.Event{
			RunID:      payload.RunID,
			Status:     domain.RunStatusFailed,
			Input:      payload.Input,
			Outputs:    outputPaths(result),
			Error:      err.Error(),
			Usage:      usage,
			FinishedAt: time.Now().UTC(),
		})
		if !retryable {
			return fmt.Errorf("run sequence: %v: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("run sequence: %w", err)
	}

	outputs := outputPaths(result)
	log.Infof("Processed outputs=%d size=%dx%d", len(outputs), result.Width, result.Height)
	s.updateRunStatus(ctx, payload.RunID, domain.StatusUpdate{
		Status:  domain.RunStatusSucceeded,
		Outputs: outputs,
	})
	s.workerMetrics.observeUsage(usage)

	s.dispatchWebhook(ctx, payload, webhook.Event{
		RunID:      payload.RunID,
		Status:     domain.RunStatusSucceeded,
		Input:      payload.Input,
		Outputs:    outputs,
		Usage:      usage,
		FinishedAt: time.Now().UTC(),
	})

	outcome = domain.RunStatusSucceeded
	span.SetStatus(codes.Ok, "processed")
	return nil
}

func (s *Server) updateRunStatus(ctx context.Context, runID string, update domain.StatusUpdate) {
	if _, err := s.runStore.UpdateStatus(ctx, runID, update); err != nil {
		s.logger.WithFields(logrus.Fields{
			"run_id": runID,
			"status": update.Status,
		}).Errorf("run status update failed: %v", err)
	}
}

// dispatchWebhook logs delivery failures instead of returning them, so a
// broken receiver does not re-run image work that already succeeded.
func (s *Server) dispatchWebhook(ctx context.Context, payload queue.RunSequencePayload, event webhook.Event) {
	if payload.WebhookURL == "" || s.webhookClient == nil {
		return
	}

	if err := s.webhookClient.Send(ctx, payload.WebhookURL, event); err != nil {
		s.logger.WithFields(logrus.Fields{
			"run_id": payload.RunID,
			"event":  event.Name(),
		}).Errorf("webhook delivery failed: %v", err)
	}
}

// permanent reports failures that a retry cannot fix: malformed tokens and
// missing inputs.
func permanent(err error) bool {
	var argErr *command.ArgumentError
	return errors.As(err, &argErr) || errors.Is(err, command.ErrFileNotFound)
}

func finalAttempt(ctx context.Context) bool {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return true
	}
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	if !ok {
		return true
	}
	return retried >= maxRetry
}

func outputPaths(result pipeline.Result) []string {
	paths := make([]string, 0, len(result.Outputs))
	for _, out := range result.Outputs {
		paths = append(paths, out.Path)
	}
	return paths
}

func summarize(result pipeline.Result, computeDuration time.Duration) domain.Usage {
	usage := domain.Usage{
		SourceBytes:   int64(result.SourceBytes),
		Operations:    len(result.Applied),
		ComputeTimeMS: max(1, computeDuration.Milliseconds()),
	}
	for _, out := range result.Outputs {
		usage.OutputBytes += int64(out.Bytes)
		usage.PixelsOut += int64(out.Width) * int64(out.Height)
	}
	return usage
}
