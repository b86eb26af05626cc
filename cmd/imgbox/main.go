package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dunamismax/imgbox/internal/app"
	"github.com/dunamismax/imgbox/internal/config"
	"github.com/dunamismax/imgbox/internal/logging"
	"github.com/dunamismax/imgbox/internal/metrics"
	"github.com/dunamismax/imgbox/internal/telemetry"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()
	prog := filepath.Base(os.Args[0])
	exitCode := app.ExitOK

	rootCmd := &cobra.Command{
		Use:   prog + " <input_filename> [commands...]",
		Short: "A small image toolbox",
		// Operation tokens such as -b and -c are positional commands, not
		// flags, so cobra passes everything through untouched.
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode = run(cmd.Context(), prog, args)
			return nil
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.New(os.Stdout, logrus.ErrorLevel).Error(err.Error())
		exitCode = app.ExitError
	}
	stop()
	os.Exit(exitCode)
}

func run(ctx context.Context, prog string, args []string) int {
	cfg := config.Load()

	shutdownTracing, err := telemetry.SetupTracing(ctx, telemetry.TraceConfig{
		ServiceName:  "imgbox",
		Exporter:     cfg.Tracing.Exporter,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		OTLPInsecure: cfg.Tracing.OTLPInsecure,
	}, logging.New(os.Stderr, logrus.WarnLevel))
	if err != nil {
		logging.New(os.Stdout, logrus.ErrorLevel).Error(err.Error())
		return app.ExitError
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	var m *metrics.Metrics
	if cfg.CLI.MetricsFile != "" {
		m = metrics.New(false)
	}

	return app.Run(ctx, args, app.Options{
		Prog:    prog,
		Stdout:  os.Stdout,
		Config:  cfg,
		Metrics: m,
	})
}
