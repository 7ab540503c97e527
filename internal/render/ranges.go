package render

import (
	"fmt"
	"math"
	"time"

	"github.com/chemiclast/rasorite/internal/axis"
	"github.com/chemiclast/rasorite/internal/series"
	"github.com/chemiclast/rasorite/internal/value"
	"github.com/wcharczuk/go-chart/v2"
)

// valueRange is a chart.Range over a value axis. Its bounds are fixed by the
// axis: go-chart only calls SetMin and SetMax on ranges without ticks, and
// valueRange always provides its own.
type valueRange struct {
	axis     *axis.Axis
	maxTicks int
	domain   int
}

func newValueRange(a *axis.Axis, maxTicks int) *valueRange {
	return &valueRange{axis: a, maxTicks: maxTicks}
}

func (r *valueRange) String() string {
	return fmt.Sprintf("ValueRange %s => %d", r.axis.Span(), r.domain)
}

func (r *valueRange) IsZero() bool { return false }

func (r *valueRange) GetMin() float64 { return r.axis.Span().Low.Float64() }
func (r *valueRange) GetMax() float64 { return r.axis.Span().High.Float64() }
func (r *valueRange) SetMin(float64)  {}
func (r *valueRange) SetMax(float64)  {}

func (r *valueRange) GetDelta() float64 { return r.GetMax() - r.GetMin() }

func (r *valueRange) GetDomain() int       { return r.domain }
func (r *valueRange) SetDomain(domain int) { r.domain = domain }

func (r *valueRange) IsDescending() bool { return false }

// Translate maps v to a pixel offset from the bottom of the canvas.
func (r *valueRange) Translate(v float64) int {
	return r.axis.Map(domainValue(v), 0, r.domain)
}

// GetTicks implements chart.TicksProvider.
func (r *valueRange) GetTicks(chart.Renderer, chart.Style, chart.ValueFormatter) []chart.Tick {
	values := r.axis.TickPlan(r.maxTicks)
	ticks := make([]chart.Tick, len(values))
	for i, v := range values {
		ticks[i] = chart.Tick{Value: v.Float64(), Label: r.axis.Format(v)}
	}
	return ticks
}

// domainValue recovers a value from a plotted coordinate. Whole
// non-negative coordinates become counts so large counts keep their
// precision.
func domainValue(f float64) value.Value {
	if f >= 0 && f < math.MaxUint64 && f == math.Trunc(f) {
		return value.Integer(uint64(f))
	}
	return value.FromFloat64(f)
}

// timeRange is a chart.Range over a date span with ticks from
// axis.TimeTicks.
type timeRange struct {
	chart.ContinuousRange
	maxTicks int
}

func newTimeRange(span series.DateSpan, maxTicks int) *timeRange {
	if !span.End.After(span.Start) {
		span.End = span.Start.Add(24 * time.Hour)
	}
	return &timeRange{
		ContinuousRange: chart.ContinuousRange{
			Min: chart.TimeToFloat64(span.Start),
			Max: chart.TimeToFloat64(span.End),
		},
		maxTicks: maxTicks,
	}
}

func (r *timeRange) span() (time.Time, time.Time) {
	return time.Unix(0, int64(r.Min)).UTC(), time.Unix(0, int64(r.Max)).UTC()
}

// GetTicks implements chart.TicksProvider.
func (r *timeRange) GetTicks(chart.Renderer, chart.Style, chart.ValueFormatter) []chart.Tick {
	start, end := r.span()
	marks := axis.TimeTicks(start, end, r.maxTicks)
	ticks := make([]chart.Tick, len(marks))
	for i, m := range marks {
		ticks[i] = chart.Tick{Value: chart.TimeToFloat64(m.Time), Label: m.Label}
	}
	return ticks
}
