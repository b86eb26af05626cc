package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveOperation(t *testing.T) {
	m := New(false)
	m.ObserveOperation("blur", nil, 10*time.Millisecond)
	m.ObserveOperation("blur", errors.New("boom"), time.Millisecond)
	m.ObserveOperation("resize", nil, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("blur", StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("blur", StatusFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("resize", StatusOK)))
}

func TestStartRun(t *testing.T) {
	m := New(false)
	done := m.StartRun()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeRuns))

	done(nil)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.activeRuns))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runsTotal.WithLabelValues(StatusOK)))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.ObserveOperation("blur", nil, time.Second)
	m.ObserveOutput(10)
	m.StartRun()(nil)
}

func TestWriteTextfile(t *testing.T) {
	m := New(false)
	m.ObserveOutput(2048)

	path := filepath.Join(t.TempDir(), "imgbox.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "imgbox_outputs_written_total 1")
	assert.Contains(t, string(data), "imgbox_output_bytes_total 2048")
}

func TestHandler(t *testing.T) {
	m := New(true)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
