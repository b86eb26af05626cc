package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dunamismax/imgbox/internal/backend"
	"github.com/dunamismax/imgbox/internal/command"
	"github.com/dunamismax/imgbox/internal/logging"
	"github.com/dunamismax/imgbox/internal/metrics"
	"github.com/dunamismax/imgbox/internal/ops"
	"github.com/dunamismax/imgbox/internal/viewer"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Request struct {
	RunID string
	Input string
	// Args are the operation tokens that follow the input name.
	Args []string
	// OutputDir, when set, confines local outputs to OutputDir/<RunID>/.
	OutputDir string
	// Logger is the run's logger. The verbose operation raises its level.
	Logger *logrus.Logger
}

type Output struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	Bytes  int    `json:"bytes"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type Result struct {
	SourceBytes int
	Width       int
	Height      int
	Applied     []command.Operation
	Outputs     []Output
}

// Sequencer decodes one input and applies operations to its handle in
// argument order. Each token window is parsed right before it is applied, so
// operations ahead of a malformed token have already run when it fails.
type Sequencer struct {
	backend backend.Backend
	fetcher Fetcher
	emitter Emitter
	viewer  viewer.Viewer
	metrics *metrics.Metrics
	tracer  trace.Tracer
	quality int
}

type Option func(*Sequencer)

func WithViewer(v viewer.Viewer) Option {
	return func(s *Sequencer) { s.viewer = v }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Sequencer) { s.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Sequencer) { s.tracer = t }
}

// WithQuality sets the JPEG/WebP quality used when saving.
func WithQuality(q int) Option {
	return func(s *Sequencer) { s.quality = q }
}

func NewSequencer(b backend.Backend, f Fetcher, e Emitter, opts ...Option) *Sequencer {
	s := &Sequencer{
		backend: b,
		fetcher: f,
		emitter: e,
		tracer:  otel.Tracer("imgbox/pipeline"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Exists reports whether input names a readable file or object.
func (s *Sequencer) Exists(ctx context.Context, input string) (bool, error) {
	return s.fetcher.Exists(ctx, input)
}

func (s *Sequencer) Run(ctx context.Context, req Request) (result Result, err error) {
	log := req.Logger
	if log == nil {
		log = logging.Discard()
	}
	if strings.TrimSpace(req.Input) == "" {
		return Result{}, errors.New("input is required")
	}

	finish := s.metrics.StartRun()
	ctx, span := s.tracer.Start(ctx, "imgbox.run")
	span.SetAttributes(
		attribute.String("run.id", req.RunID),
		attribute.String("run.input", req.Input),
		attribute.Int("run.tokens", len(req.Args)),
	)
	defer func() {
		finish(err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "run failed")
		}
		span.End()
	}()

	exists, err := s.fetcher.Exists(ctx, req.Input)
	if err != nil {
		return Result{}, &command.FileError{Path: req.Input, Err: err}
	}
	if !exists {
		return Result{}, &command.FileError{Path: req.Input}
	}

	source, err := s.fetcher.Fetch(ctx, req.Input)
	if err != nil {
		return Result{}, fmt.Errorf("fetch stage: %w", err)
	}

	img, err := s.backend.Decode(source)
	if err != nil {
		return Result{}, fmt.Errorf("decode stage: %w", err)
	}
	defer img.Close()

	result = Result{
		SourceBytes: len(source),
		Applied:     make([]command.Operation, 0, len(req.Args)),
	}
	cur := command.NewCursor(req.Args)
	for !cur.Done() {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		op, err := command.Next(cur)
		if err != nil {
			return result, err
		}
		if err := s.apply(ctx, req, log, img, op, &result); err != nil {
			return result, fmt.Errorf("apply %s: %w", op, err)
		}
		result.Applied = append(result.Applied, op)
	}

	result.Width = img.Width()
	result.Height = img.Height()
	return result, nil
}

func (s *Sequencer) apply(ctx context.Context, req Request, log *logrus.Logger, img backend.Image, op command.Operation, result *Result) error {
	ctx, span := s.tracer.Start(ctx, "imgbox."+op.Kind.String())
	span.SetAttributes(
		attribute.String("operation", op.String()),
		attribute.Int("image.width", img.Width()),
		attribute.Int("image.height", img.Height()),
	)
	defer span.End()

	started := time.Now()
	err := s.dispatch(ctx, req, log, img, op, result)
	s.metrics.ObserveOperation(op.Kind.String(), err, time.Since(started))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
	return err
}

func (s *Sequencer) dispatch(ctx context.Context, req Request, log *logrus.Logger, img backend.Image, op command.Operation, result *Result) error {
	lib := ops.New(log)

	switch op.Kind {
	case command.KindSetVerbose:
		if !log.IsLevelEnabled(logrus.InfoLevel) {
			log.SetLevel(logrus.InfoLevel)
		}
		log.Info("Verbose mode on.")
		return nil
	case command.KindShow:
		log.Info("Display.")
		return s.show(ctx, log, img)
	case command.KindBlur:
		log.Infof("Blur %d%%.", op.Percent)
		return lib.Blur(img, op.Percent)
	case command.KindDim:
		log.Infof("Dim %d%%.", op.Percent)
		return lib.Dim(img, op.Percent)
	case command.KindCropRect:
		log.Infof("Crop to rectangle %s", op.Size)
		return lib.CropRect(img, op.Size)
	case command.KindCropRatio:
		log.Infof("Crop to ratio %s", op.Ratio)
		return lib.CropRatio(img, op.Ratio)
	case command.KindEnlargeRatio:
		log.Infof("Enlarge to ratio %s with %d%% blur.", op.Ratio, op.Percent)
		return lib.Enlarge(img, op.Ratio, op.Percent)
	case command.KindResize:
		log.Infof("Resize %s side to %d.", op.Mode, op.Side)
		return lib.Resize(img, op.Side, op.Mode == command.ResizeMax)
	case command.KindSave:
		out, err := s.save(ctx, req, img, op.Path)
		if err != nil {
			return err
		}
		result.Outputs = append(result.Outputs, out)
		log.Infof("Saved to %s.", out.Path)
		return nil
	default:
		return fmt.Errorf("unhandled operation %s", op.Kind)
	}
}

func (s *Sequencer) show(ctx context.Context, log *logrus.Logger, img backend.Image) error {
	v := s.viewer
	if v == nil {
		v = viewer.Headless{Log: log}
	}
	data, err := img.Encode("png", 0)
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	return v.Show(ctx, data)
}

func (s *Sequencer) save(ctx context.Context, req Request, img backend.Image, target string) (Output, error) {
	format := backend.FormatFromPath(target)
	data, err := img.Encode(format, s.quality)
	if err != nil {
		return Output{}, fmt.Errorf("encode stage: %w", err)
	}

	written, err := s.emitter.Emit(ctx, req, target, data, format)
	if err != nil {
		return Output{}, fmt.Errorf("emit stage: %w", err)
	}
	s.metrics.ObserveOutput(len(data))

	return Output{
		Path:   written,
		Format: format,
		Bytes:  len(data),
		Width:  img.Width(),
		Height: img.Height(),
	}, nil
}
