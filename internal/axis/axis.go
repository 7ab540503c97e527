// Package axis maps domain values onto pixel space and chooses readable
// tick marks for value and date axes.
package axis

import (
	"math"
	"strconv"

	"github.com/chemiclast/rasorite/internal/value"
)

// Axis is a value axis over a fixed span.
type Axis struct {
	span    value.Span
	integer bool
}

// New returns an axis covering span. Tick labels on a span whose bounds are
// counts are printed as whole numbers.
func New(span value.Span) *Axis {
	return &Axis{
		span:    span,
		integer: span.Low.Kind() != value.KindFixed && span.High.Kind() != value.KindFixed,
	}
}

// Span returns the covered interval.
func (a *Axis) Span() value.Span {
	return a.span
}

// Map projects v onto the pixel interval [p0, p1].
func (a *Axis) Map(v value.Value, p0, p1 int) int {
	return Map(v, a.span, p0, p1)
}

// Plan returns the full tick plan for at most maxPoints ticks. Count axes
// never step below 1.
func (a *Axis) Plan(maxPoints int) TickPlan {
	if a.integer {
		return ticks(a.span, maxPoints, 1)
	}
	return Ticks(a.span, maxPoints)
}

// TickPlan returns at most maxPoints tick values.
func (a *Axis) TickPlan(maxPoints int) []value.Value {
	return a.Plan(maxPoints).Values
}

// Format renders a tick label. Whole values on a count axis print without a
// fraction.
func (a *Axis) Format(v value.Value) string {
	if a.integer && isWhole(v) {
		return strconv.FormatUint(v.Uint64(), 10)
	}
	return v.String()
}

func isWhole(v value.Value) bool {
	f := v.Float64()
	return f >= 0 && f == math.Trunc(f)
}
