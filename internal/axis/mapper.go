package axis

import (
	"math"

	"github.com/chemiclast/rasorite/internal/value"
)

// mapEpsilon biases rounding outward so values sitting on a span boundary
// land on the boundary pixel.
const mapEpsilon = 1e-3

// maxPixelOffset bounds the offset from p0 for values far outside the span.
const maxPixelOffset = 1 << 30

// Map projects v from span onto the pixel interval [p0, p1]. p1 may be less
// than p0 for inverted axes. A degenerate span maps every value to the
// midpoint of the interval.
func Map(v value.Value, span value.Span, p0, p1 int) int {
	if span.IsDegenerate() {
		return (p0 + p1) / 2
	}

	lo, hi := span.Floats()
	f := (v.Float64() - lo) / (hi - lo)

	length := p1 - p0
	switch {
	case length == 0:
		return p1
	case math.IsNaN(f):
		return (p0 + p1) / 2
	case math.IsInf(f, 1):
		return p1
	case math.IsInf(f, -1):
		return p0
	}

	offset := math.Max(-maxPixelOffset, math.Min(maxPixelOffset, float64(length)*f))
	if length > 0 {
		return p0 + int(math.Floor(offset+mapEpsilon))
	}
	return p0 + int(math.Ceil(offset-mapEpsilon))
}
