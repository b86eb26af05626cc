// Package app runs one command line: an input image followed by operation
// tokens.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dunamismax/imgbox/internal/backend"
	"github.com/dunamismax/imgbox/internal/command"
	"github.com/dunamismax/imgbox/internal/config"
	"github.com/dunamismax/imgbox/internal/id"
	"github.com/dunamismax/imgbox/internal/logging"
	"github.com/dunamismax/imgbox/internal/metrics"
	"github.com/dunamismax/imgbox/internal/pipeline"
	"github.com/dunamismax/imgbox/internal/storage"
	"github.com/dunamismax/imgbox/internal/viewer"
	"github.com/sirupsen/logrus"
)

const (
	ExitOK    = 0
	ExitError = 1
)

type Options struct {
	Prog   string
	Stdout io.Writer
	Config config.Config
	// Sequencer overrides the one built from Config.
	Sequencer *pipeline.Sequencer
	Metrics   *metrics.Metrics
}

// Run executes args (without the program name) and returns the process exit
// status. Every message goes to opts.Stdout as a "[LEVEL] message" line.
func Run(ctx context.Context, args []string, opts Options) int {
	prog := opts.Prog
	if prog == "" {
		prog = "imgbox"
	}

	if len(args) == 0 || isHelp(args[0]) {
		fmt.Fprint(opts.Stdout, Usage(prog))
		return ExitOK
	}

	level := logrus.WarnLevel
	if opts.Config.CLI.Verbose {
		level = logrus.InfoLevel
	}
	log := logging.New(opts.Stdout, level)

	seq := opts.Sequencer
	if seq == nil {
		built, cleanup, err := Build(opts.Config, log, opts.Metrics)
		if err != nil {
			log.Error(err.Error())
			return ExitError
		}
		defer cleanup()
		seq = built
	}

	input := args[0]
	exists, err := seq.Exists(ctx, input)
	if err != nil || !exists {
		log.Error((&command.FileError{Path: input, Err: err}).Error())
		return ExitError
	}
	if len(args) == 1 {
		log.Warnf("No commands were passed after an image.\nConsult `%s --help` for usage.", prog)
	}

	_, err = seq.Run(ctx, pipeline.Request{
		RunID:  id.New(),
		Input:  input,
		Args:   args[1:],
		Logger: log,
	})
	writeMetrics(log, opts)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, command.ErrUnknownArgument) {
			msg += fmt.Sprintf("\nTry `%s --help`.", prog)
		}
		log.Error(msg)
		return ExitError
	}
	return ExitOK
}

// Build wires a sequencer from configuration. The cleanup func releases the
// backend runtime.
func Build(cfg config.Config, log *logrus.Logger, m *metrics.Metrics) (*pipeline.Sequencer, func(), error) {
	b, err := backend.Open(cfg.CLI.Backend)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {}
	if b.Name() == backend.NameGovips {
		cleanup = backend.Shutdown
	}

	var client *storage.Client
	if cfg.Storage.Enabled() {
		client, err = storage.NewClient(storage.Config{
			Endpoint: cfg.Storage.Endpoint,
			Access:   cfg.Storage.AccessKey,
			Secret:   cfg.Storage.SecretKey,
			UseSSL:   cfg.Storage.UseSSL,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("initialize object storage: %w", err)
		}
	}

	seq := pipeline.NewSequencer(
		b,
		pipeline.NewRouteFetcher(client),
		pipeline.NewRouteEmitter(client),
		pipeline.WithViewer(viewer.Command{Name: cfg.CLI.Viewer, Log: log}),
		pipeline.WithMetrics(m),
		pipeline.WithQuality(cfg.CLI.JPEGQuality),
	)
	return seq, cleanup, nil
}

func writeMetrics(log *logrus.Logger, opts Options) {
	path := opts.Config.CLI.MetricsFile
	if path == "" || opts.Metrics == nil {
		return
	}
	if err := opts.Metrics.WriteTextfile(path); err != nil {
		log.Warnf("Could not write metrics to %s: %v", path, err)
	}
}
