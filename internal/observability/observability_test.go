package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", "json")

	logger.Info("hidden")
	logger.Warn("shown", "well", "12A")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "12A", rec["well"])
}

func TestNewLogger_TextDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "bogus", "")

	logger.Debug("hidden")
	logger.Info("figure written", "path", "all-GI-data.eps")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=\"figure written\"")
	assert.Contains(t, out, "path=all-GI-data.eps")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	m.WellsLoaded.Add(3)
	m.WellsSkipped.WithLabelValues(SkipMalformed).Inc()
	m.FiguresWritten.WithLabelValues("well").Add(2)
	m.RunSucceeded.Set(1)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.WellsLoaded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WellsSkipped.WithLabelValues(SkipMalformed)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FiguresWritten.WithLabelValues("well")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunSucceeded))

	// A second instance has its own registry.
	require.NotPanics(t, func() { NewMetrics() })
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.WellsLoaded.Inc()

	path := filepath.Join(t.TempDir(), "run.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "gi_pumptest_wells_loaded_total 1")
}
