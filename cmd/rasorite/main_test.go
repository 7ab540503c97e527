package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chemiclast/rasorite/internal/config"
	"github.com/chemiclast/rasorite/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const export = `Experience ID,4711

Breakdown,Date,Visits
Total,2024-05-01,120
Total,2024-05-02,135
Total,2024-05-03,128
Benchmark P50,2024-05-01,100
Benchmark P50,2024-05-02,0
Benchmark P50,2024-05-03,110
`

const noBenchmark = `Experience ID,4711
Breakdown,Date,Visits
Total,2024-05-01,120
Total,2024-05-02,135
`

func testConfig(t *testing.T, content, output string) *config.Config {
	t.Helper()

	dir := t.TempDir()
	input := filepath.Join(dir, "Visits, May 1 2024 - May 3 2024.csv")
	require.NoError(t, os.WriteFile(input, []byte(content), 0o600))

	return &config.Config{
		Input:    input,
		Output:   filepath.Join(dir, output),
		MaxTicks: config.DefaultMaxTicks,
		Width:    800,
		Height:   600,
		Timeout:  5 * time.Second,
		LogLevel: config.LogLevelError,
	}
}

func readOutput(t *testing.T, cfg *config.Config) string {
	t.Helper()

	data, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	return string(data)
}

func TestRunPlain(t *testing.T) {
	cfg := testConfig(t, export, "plot.svg")

	require.NoError(t, run(context.Background(), cfg))

	out := readOutput(t, cfg)
	assert.Contains(t, out, "Visits for Experience ID 4711")
	assert.Contains(t, out, "Benchmark P50")
}

func TestRunNormalized(t *testing.T) {
	cfg := testConfig(t, export, "plot.png")
	cfg.Normalize = true

	require.NoError(t, run(context.Background(), cfg))
	assert.Contains(t, readOutput(t, cfg), "PNG")
}

func TestRunMissingBenchmark(t *testing.T) {
	cfg := testConfig(t, noBenchmark, "plot.svg")

	err := run(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrMissingSeries))
}

func TestRunMissingInput(t *testing.T) {
	cfg := testConfig(t, export, "plot.svg")
	cfg.Input = filepath.Join(t.TempDir(), "Visits, none.csv")

	err := run(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrLoadData))
}

func TestRunFetchBenchmark(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "4711", r.URL.Query().Get("universeId"))
		assert.Equal(t, "Visits", r.URL.Query().Get("kpiType"))
		fmt.Fprint(w, `{
			"benchmarkPercentile": "P90",
			"data": {
				"2024-05-01T00:00:00.000Z": 300,
				"2024-05-02T00:00:00.000Z": 310,
				"2024-05-03T00:00:00.000Z": 320
			}
		}`)
	}))
	defer srv.Close()

	cfg := testConfig(t, noBenchmark, "plot.svg")
	cfg.FetchBenchmark = true
	cfg.Cookie = "secret"
	cfg.BenchmarkURL = srv.URL

	require.NoError(t, run(context.Background(), cfg))
	assert.Contains(t, readOutput(t, cfg), "Benchmark P90")
}

func TestRunFetchBenchmarkCached(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"benchmarkPercentile": "P50", "data": {"2024-05-01T00:00:00.000Z": 90}}`)
	}))
	defer srv.Close()

	cfg := testConfig(t, noBenchmark, "plot.svg")
	cfg.FetchBenchmark = true
	cfg.Cookie = "secret"
	cfg.BenchmarkURL = srv.URL
	cfg.Cache = true
	cfg.CacheDB = filepath.Join(t.TempDir(), "benchmarks.db")
	cfg.CacheTTL = time.Hour

	require.NoError(t, run(context.Background(), cfg))
	require.NoError(t, run(context.Background(), cfg))
	assert.Equal(t, int32(1), calls.Load())
}

func TestRunFetchWithoutCookie(t *testing.T) {
	cfg := testConfig(t, noBenchmark, "plot.svg")
	cfg.FetchBenchmark = true
	cfg.BenchmarkURL = "http://127.0.0.1:0"

	err := run(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrFetchBench))
}
