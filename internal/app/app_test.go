package app

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dunamismax/imgbox/internal/backend"
	"github.com/dunamismax/imgbox/internal/config"
	"github.com/dunamismax/imgbox/internal/logging"
	"github.com/dunamismax/imgbox/internal/metrics"
	"github.com/dunamismax/imgbox/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPrintsUsage(t *testing.T) {
	for _, args := range [][]string{nil, {"-h"}, {"--help"}, {"-?"}, {"--help", "in.png"}} {
		var out bytes.Buffer
		code := Run(context.Background(), args, Options{Prog: "imgbox", Stdout: &out})

		assert.Equal(t, ExitOK, code, "args %v", args)
		assert.True(t, strings.HasPrefix(out.String(), "A small image toolbox.\nUsage:\nimgbox [-h | --help | -?]"), "args %v", args)
	}
}

func TestRunMissingInput(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.png")

	out, code := runWith(t, config.Config{}, missing, "-b", "5")

	assert.Equal(t, ExitError, code)
	assert.Equal(t, "[ERROR] Not a file: "+missing+"\n", out)
}

func TestRunWarnsWithoutCommands(t *testing.T) {
	input := writePNG(t, 20, 10)

	out, code := runWith(t, config.Config{}, input)

	assert.Equal(t, ExitOK, code)
	assert.Equal(t, "[WARN] No commands were passed after an image.\nConsult `imgbox --help` for usage.\n", out)
}

func TestRunReportsMalformedArgument(t *testing.T) {
	input := writePNG(t, 20, 10)
	after := filepath.Join(filepath.Dir(input), "after.png")

	out, code := runWith(t, config.Config{}, input, "--blur", "abc", after)

	assert.Equal(t, ExitError, code)
	assert.Equal(t, "[ERROR] Wrong argument to blur: expected <percent>: Int, received abc\n", out)
	assert.NoFileExists(t, after)
}

func TestRunReportsUnknownArgument(t *testing.T) {
	input := writePNG(t, 20, 10)

	out, code := runWith(t, config.Config{}, input, "-v", "bogus")

	assert.Equal(t, ExitError, code)
	assert.Contains(t, out, "[INFO] Verbose mode on.\n")
	assert.True(t, strings.HasSuffix(out, "[ERROR] Unknown command or misplaced argument: bogus.\nTry `imgbox --help`.\n"), out)
}

func TestRunIsQuietOnSuccess(t *testing.T) {
	input := writePNG(t, 1920, 1080)
	output := filepath.Join(filepath.Dir(input), "square.png")

	out, code := runWith(t, config.Config{}, input, "--crop", "1:1", output)

	assert.Equal(t, ExitOK, code)
	assert.Empty(t, out)
	assertSize(t, output, 1080, 1080)
}

func TestRunVerboseFromConfig(t *testing.T) {
	input := writePNG(t, 400, 300)
	output := filepath.Join(filepath.Dir(input), "small.png")

	cfg := config.Config{CLI: config.CLIConfig{Verbose: true}}
	out, code := runWith(t, cfg, input, "-r", "min", "100", output)

	assert.Equal(t, ExitOK, code)
	assert.Contains(t, out, "[INFO] Resizing image...\n")
	assert.Contains(t, out, "[INFO] Saved to "+output+".\n")
	assertSize(t, output, 133, 100)
}

func TestRunWritesMetricsFile(t *testing.T) {
	input := writePNG(t, 40, 30)
	metricsPath := filepath.Join(t.TempDir(), "imgbox.prom")
	m := metrics.New(false)

	var out bytes.Buffer
	code := Run(context.Background(), []string{input, "-d", "20", filepath.Join(filepath.Dir(input), "dim.png")}, Options{
		Stdout:    &out,
		Config:    config.Config{CLI: config.CLIConfig{MetricsFile: metricsPath}},
		Sequencer: pipeline.NewSequencer(backend.Imaging{}, pipeline.LocalFileFetcher{}, pipeline.LocalFileEmitter{}, pipeline.WithMetrics(m)),
		Metrics:   m,
	})
	require.Equal(t, ExitOK, code, out.String())

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `imgbox_operations_total{operation="dim",status="ok"} 1`)
	assert.Contains(t, string(data), "imgbox_outputs_written_total 1")
}

func TestBuildRejectsUnknownBackend(t *testing.T) {
	_, _, err := Build(config.Config{CLI: config.CLIConfig{Backend: "magick"}}, logging.Discard(), nil)
	assert.ErrorIs(t, err, backend.ErrUnknownBackend)
}

func TestBuildDefaults(t *testing.T) {
	seq, cleanup, err := Build(config.Config{}, logging.Discard(), nil)
	require.NoError(t, err)
	defer cleanup()

	input := writePNG(t, 8, 8)
	ok, err := seq.Exists(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = seq.Exists(context.Background(), "s3://bucket/in.png")
	assert.Error(t, err, "object storage is unavailable without an endpoint")
}

func runWith(t *testing.T, cfg config.Config, args ...string) (string, int) {
	t.Helper()
	var out bytes.Buffer
	code := Run(context.Background(), args, Options{
		Prog:      "imgbox",
		Stdout:    &out,
		Config:    cfg,
		Sequencer: pipeline.NewSequencer(backend.Imaging{}, pipeline.LocalFileFetcher{}, pipeline.LocalFileEmitter{}),
	})
	return out.String(), code
}

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: 60, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	path := filepath.Join(t.TempDir(), "in.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func assertSize(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, w, cfg.Width)
	assert.Equal(t, h, cfg.Height)
}
