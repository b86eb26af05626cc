package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/dunamismax/imgbox/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetupTracingDisabled(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), TraceConfig{Exporter: ExporterNone}, logging.Discard())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupTracingRejectsUnknownExporter(t *testing.T) {
	_, err := SetupTracing(context.Background(), TraceConfig{Exporter: "zipkin"}, nil)
	assert.Error(t, err)
}

func TestSetupTracingRequiresOTLPEndpoint(t *testing.T) {
	_, err := SetupTracing(context.Background(), TraceConfig{Exporter: ExporterOTLP}, nil)
	assert.Error(t, err)
}

func TestSetupTracingStdout(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := SetupTracing(context.Background(), TraceConfig{
		ServiceName:  "imgbox-test",
		Exporter:     ExporterStdout,
		StdoutWriter: &buf,
	}, nil)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "blur")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "\"Name\": \"blur\"")
}
