// Package benchmark retrieves reference series for an experience from the
// developer analytics benchmark API.
package benchmark

import (
	"context"
	"encoding/json"
	"net/url"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chemiclast/rasorite/internal/errors"
	"github.com/chemiclast/rasorite/internal/series"
	"github.com/chemiclast/rasorite/internal/value"
)

// timeLayout is used for query parameters. Response timestamps may carry
// any number of fractional digits.
const (
	timeLayout         = "2006-01-02T15:04:05.000Z"
	responseTimeLayout = "2006-01-02T15:04:05.999999999Z"
)

// Query selects a benchmark.
type Query struct {
	UniverseID uint64
	KPI        string
	Start      time.Time
	End        time.Time
}

// Benchmark is a reference series at some percentile of comparable
// experiences.
type Benchmark struct {
	Percentile uint64
	// UniverseKPIPercentile is the experience's own percentile, when the
	// API reports one.
	UniverseKPIPercentile *uint64
	// Points are in chronological order.
	Points []series.Point
}

// Source fetches benchmarks.
type Source interface {
	Fetch(ctx context.Context, q Query) (*Benchmark, error)
}

// Name is the series name the benchmark is plotted under.
func (b *Benchmark) Name() string {
	return series.BenchmarkPrefix + " P" + strconv.FormatUint(b.Percentile, 10)
}

// Series returns the benchmark as a named series.
func (b *Benchmark) Series() series.Series {
	points := make([]series.Point, len(b.Points))
	copy(points, b.Points)
	return series.Series{Name: b.Name(), Points: points}
}

// Merge adds the benchmark series to ds.
func (b *Benchmark) Merge(ds *series.Dataset) {
	ds.Set(b.Series())
}

type apiResponse struct {
	BenchmarkPercentile   string                 `json:"benchmarkPercentile"`
	KPIType               string                 `json:"kpiType"`
	UniverseKPIPercentile *uint64                `json:"universeKpiPercentile"`
	Data                  map[string]value.Value `json:"data"`
}

// Fetch retrieves the benchmark selected by q.
func (c *Client) Fetch(ctx context.Context, q Query) (*Benchmark, error) {
	if c.cookie == "" {
		return nil, errors.New().WithMessage(ErrCookie, "no "+cookieName+" cookie configured")
	}

	body, err := c.doWithRetry(ctx, q.values())
	if err != nil {
		return nil, err
	}

	b, err := decode(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Uint64("universe_id", q.UniverseID).
		Str("kpi", q.KPI).
		Uint64("percentile", b.Percentile).
		Int("points", len(b.Points)).
		Msg("Fetched benchmark")

	return b, nil
}

func (q Query) values() url.Values {
	return url.Values{
		"universeId": {strconv.FormatUint(q.UniverseID, 10)},
		"kpiType":    {q.KPI},
		"startTime":  {q.Start.UTC().Format(timeLayout)},
		"endTime":    {q.End.UTC().Format(timeLayout)},
	}
}

func decode(body []byte) (*Benchmark, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.New().Wrap(ErrInvalidResponse, err)
	}

	percentile, err := parsePercentile(resp.BenchmarkPercentile)
	if err != nil {
		return nil, err
	}

	points := make([]series.Point, 0, len(resp.Data))
	for stamp, v := range resp.Data {
		t, err := time.ParseInLocation(responseTimeLayout, stamp, time.UTC)
		if err != nil {
			return nil, errors.New().Wrap(ErrInvalidResponse, err).WithData(stamp)
		}
		points = append(points, series.Point{Time: t.UTC(), Value: v})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Time.Before(points[j].Time)
	})
	if err := unifyKinds(points); err != nil {
		return nil, err
	}

	return &Benchmark{
		Percentile:            percentile,
		UniverseKPIPercentile: resp.UniverseKPIPercentile,
		Points:                points,
	}, nil
}

// unifyKinds promotes Integer points to Fixed when any point is Fixed, so a
// response mixing 2 and 2.5 yields a single-kind series.
func unifyKinds(points []series.Point) error {
	hasFixed := slices.ContainsFunc(points, func(p series.Point) bool {
		return p.Value.Kind() == value.KindFixed
	})
	if !hasFixed {
		return nil
	}
	for i := range points {
		v, err := points[i].Value.ToFixed()
		if err != nil {
			return errors.New().Wrap(ErrInvalidResponse, err).WithData(points[i].Time)
		}
		points[i].Value = v
	}
	return nil
}

// parsePercentile reads labels like "P50" or "50th" by keeping only the
// digits.
func parsePercentile(label string) (uint64, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, label)

	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, errors.New().Wrap(ErrInvalidResponse, err).WithData(label)
	}
	return n, nil
}
