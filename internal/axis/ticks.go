package axis

import (
	"math"

	"github.com/chemiclast/rasorite/internal/value"
)

// maxRefinePasses bounds the step refinement loop. Each fully accepted pass
// divides the granularity by ten, so 24 passes reach far below the
// resolution of a 32.32 fixed-point value.
const maxRefinePasses = 24

// refineDivisors are tried in order against the scale a pass started with.
var refineDivisors = [...]float64{2, 5, 10}

// TickPlan is the outcome of nice-tick selection.
type TickPlan struct {
	Values      []value.Value
	Step        float64
	Granularity float64
}

// Ticks picks at most maxPoints round tick values covering span. Steps are a
// power of ten times 1, 2 or 5, and every emitted value is snapped to the
// plan's granularity.
func Ticks(span value.Span, maxPoints int) TickPlan {
	return ticks(span, maxPoints, 0)
}

// ticks is Ticks with a lower bound on the step and granularity. Count axes
// pass 1 so no tick falls between two whole numbers.
func ticks(span value.Span, maxPoints int, minStep float64) TickPlan {
	if maxPoints <= 0 {
		return TickPlan{}
	}
	if span.IsDegenerate() {
		return TickPlan{Values: []value.Value{span.Low}}
	}

	lo, hi := span.Floats()
	if !isFinite(lo) || !isFinite(hi) {
		return TickPlan{}
	}
	if math.Abs(hi-lo) < epsilon {
		return TickPlan{Values: []value.Value{span.Low}}
	}

	scale, granularity := pickScale(lo, hi, maxPoints, minStep)
	return TickPlan{
		Values:      emit(lo, hi, scale, granularity, maxPoints),
		Step:        scale,
		Granularity: granularity,
	}
}

const epsilon = 0x1p-52

func pickScale(lo, hi float64, maxPoints int, minStep float64) (scale, granularity float64) {
	scale, granularity = refineScale(lo, hi, maxPoints, minStep)
	return scale, math.Max(granularity, minStep)
}

func refineScale(lo, hi float64, maxPoints int, minStep float64) (scale, granularity float64) {
	scale = math.Pow(10, math.Floor(math.Log10(hi-lo)))
	granularity = scale / 10

	if 1+int(math.Floor((hi-lo)/scale)) > maxPoints {
		scale *= 10
		granularity *= 10
	}

	for pass := 0; pass < maxRefinePasses; pass++ {
		base := scale
		for _, div := range refineDivisors {
			step := base / div
			if !usableStep(step) || step < minStep || countPoints(lo, hi, step) > float64(maxPoints) {
				return scale, granularity
			}
			scale = step
		}

		next := granularity / 10
		if !usableStep(next) {
			break
		}
		granularity = next
	}

	return scale, granularity
}

// countPoints reports how many multiples of step fall in [lo, hi].
func countPoints(lo, hi, step float64) float64 {
	left := alignUp(lo, step)
	right := hi - remEuclid(hi, step)
	return math.Round(1 + (right-left)/step)
}

func emit(lo, hi, scale, granularity float64, maxPoints int) []value.Value {
	left := alignUp(lo, scale)
	right := hi - remEuclid(hi, scale)
	tolerance := math.Max(epsilon, granularity/2)

	values := make([]value.Value, 0, maxPoints)
	for i := 0; len(values) < maxPoints; i++ {
		x := left + float64(i)*scale
		if x-right > tolerance {
			break
		}
		values = append(values, value.FromFloat64(snap(x, granularity)))
	}
	return values
}

// alignUp returns the smallest multiple of step that is >= x.
func alignUp(x, step float64) float64 {
	left := x - remEuclid(x, step)
	if left < x {
		left += step
	}
	return left
}

// remEuclid is the remainder of a/b with the sign of b, so that
// a - remEuclid(a, b) is always a multiple of b on the low side of a.
func remEuclid(a, b float64) float64 {
	var r float64
	if b > 0 {
		r = a - math.Floor(a/b)*b
	} else {
		r = a - math.Ceil(a/b)*b
	}
	if math.Abs(r-b) < epsilon {
		return 0
	}
	return r
}

// snap rounds x to the nearest multiple of granularity. Sub-unit
// granularities divide by their reciprocal, which lands on the nearest
// representable decimal rather than a product like 0.6000000000000001.
func snap(x, granularity float64) float64 {
	if granularity <= 0 {
		return x
	}
	k := math.Round(x / granularity)
	if granularity < 1 {
		inv := math.Round(1 / granularity)
		if isFinite(inv) && inv > 0 {
			x = k / inv
		}
	} else {
		x = k * granularity
	}
	if x == 0 {
		return 0
	}
	return x
}

func usableStep(step float64) bool {
	return step > 0 && isFinite(step)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
