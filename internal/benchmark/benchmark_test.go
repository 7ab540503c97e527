package benchmark_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chemiclast/rasorite/internal/benchmark"
	"github.com/chemiclast/rasorite/internal/errors"
	"github.com/chemiclast/rasorite/internal/series"
	"github.com/chemiclast/rasorite/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okBody = `{
	"benchmarkPercentile": "P50",
	"kpiType": "Visits",
	"universeKpiPercentile": 42,
	"data": {
		"2024-05-03T00:00:00.000Z": 130,
		"2024-05-01T00:00:00Z": 110,
		"2024-05-02T00:00:00.5Z": {"Float": 120.5}
	}
}`

var query = benchmark.Query{
	UniverseID: 4711,
	KPI:        "Visits",
	Start:      time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	End:        time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC),
}

func newClient(url, cookie string, opts ...benchmark.ClientOption) *benchmark.Client {
	opts = append([]benchmark.ClientOption{
		benchmark.WithBaseURL(url),
		benchmark.WithRetries(2, time.Millisecond),
	}, opts...)
	return benchmark.NewClient(cookie, opts...)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, ".ROBLOSECURITY=secret", r.Header.Get("Cookie"))

		q := r.URL.Query()
		assert.Equal(t, "4711", q.Get("universeId"))
		assert.Equal(t, "Visits", q.Get("kpiType"))
		assert.Equal(t, "2024-05-01T00:00:00.000Z", q.Get("startTime"))
		assert.Equal(t, "2024-05-03T00:00:00.000Z", q.Get("endTime"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, okBody)
	}))
	defer srv.Close()

	b, err := newClient(srv.URL, "secret").Fetch(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, uint64(50), b.Percentile)
	require.NotNil(t, b.UniverseKPIPercentile)
	assert.Equal(t, uint64(42), *b.UniverseKPIPercentile)

	require.Len(t, b.Points, 3)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), b.Points[0].Time)
	assert.Equal(t, value.FromFloat64(110), b.Points[0].Value)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 500_000_000, time.UTC), b.Points[1].Time)
	assert.Equal(t, value.FromFloat64(120.5), b.Points[1].Value)
	assert.Equal(t, value.FromFloat64(130), b.Points[2].Value)
}

func TestFetchMixedNumbers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
	"benchmarkPercentile": "P50",
	"data": {
		"2024-05-01T00:00:00Z": 2,
		"2024-05-02T00:00:00Z": 2.5,
		"2024-05-03T00:00:00Z": 0
	}
}`)
	}))
	defer srv.Close()

	b, err := newClient(srv.URL, "secret").Fetch(context.Background(), query)
	require.NoError(t, err)

	require.Len(t, b.Points, 3)
	assert.Equal(t, value.FromFloat64(2), b.Points[0].Value)
	assert.Equal(t, value.FromFloat64(2.5), b.Points[1].Value)
	for _, p := range b.Points {
		assert.NotEqual(t, value.KindInteger, p.Value.Kind())
	}
}

func TestFetchKeepsFullCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, ".ROBLOSECURITY=abc", r.Header.Get("Cookie"))
		fmt.Fprint(w, okBody)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL, " .ROBLOSECURITY=abc ").Fetch(context.Background(), query)
	require.NoError(t, err)
}

func TestFetchMissingCookie(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL, "").Fetch(context.Background(), query)
	require.Error(t, err)
	assert.Equal(t, benchmark.ErrCookie, errors.CodeOf(err))
	assert.Zero(t, calls.Load())
}

func TestFetchRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, okBody)
	}))
	defer srv.Close()

	b, err := newClient(srv.URL, "secret").Fetch(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), b.Percentile)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL, "secret").Fetch(context.Background(), query)
	require.Error(t, err)
	assert.Equal(t, benchmark.ErrRetriesExhaust, errors.CodeOf(err))
	assert.Equal(t, int32(3), calls.Load())

	var statusErr *benchmark.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
}

func TestFetchNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, "bad cookie")
	}))
	defer srv.Close()

	_, err := newClient(srv.URL, "secret").Fetch(context.Background(), query)
	require.Error(t, err)
	assert.Equal(t, benchmark.ErrStatus, errors.CodeOf(err))
	assert.Equal(t, int32(1), calls.Load())

	var statusErr *benchmark.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, "bad cookie", statusErr.Body)
	assert.False(t, statusErr.IsRetryable())
}

func TestFetchCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newClient(srv.URL, "secret", benchmark.WithRetries(5, time.Hour)).Fetch(ctx, query)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFetchInvalidResponse(t *testing.T) {
	bodies := map[string]string{
		"not json":       `<html>`,
		"bad timestamp":  `{"benchmarkPercentile": "P50", "data": {"yesterday": 1}}`,
		"bad percentile": `{"benchmarkPercentile": "median", "data": {}}`,
		"bad value":      `{"benchmarkPercentile": "P50", "data": {"2024-05-01T00:00:00Z": "lots"}}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, body)
			}))
			defer srv.Close()

			_, err := newClient(srv.URL, "secret").Fetch(context.Background(), query)
			require.Error(t, err)
			assert.Equal(t, benchmark.ErrInvalidResponse, errors.CodeOf(err))
		})
	}
}

func TestBenchmarkSeries(t *testing.T) {
	b := &benchmark.Benchmark{
		Percentile: 90,
		Points: []series.Point{
			{Time: query.Start, Value: value.Integer(1)},
		},
	}

	assert.Equal(t, "Benchmark P90", b.Name())
	s := b.Series()
	assert.Equal(t, "Benchmark P90", s.Name)
	assert.True(t, s.IsBenchmark())
	require.Len(t, s.Points, 1)

	ds := series.NewDataset()
	ds.Append("Total", series.Point{Time: query.Start, Value: value.Integer(5)})
	b.Merge(ds)

	got, ok := ds.Benchmark()
	require.True(t, ok)
	assert.Equal(t, "Benchmark P90", got.Name)
	assert.Equal(t, []string{"Total", "Benchmark P90"}, ds.Names())
}
