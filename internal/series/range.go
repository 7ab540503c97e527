package series

import (
	"github.com/chemiclast/rasorite/internal/errors"
	"github.com/chemiclast/rasorite/internal/value"
)

const padDivisor = 10

// ComputeRange returns the time span and padded value span of points. The
// value span grows by a tenth of its width on each side, except that the
// low side of a non-negative span never drops below zero.
func ComputeRange(points []Point) (DateSpan, value.Span, error) {
	if len(points) == 0 {
		return DateSpan{}, value.Span{}, errors.New().WithMessage(ErrEmptyInput, "no points to compute a range over")
	}

	dates := DateSpan{Start: points[0].Time, End: points[0].Time}
	low, high := points[0].Value, points[0].Value
	for _, p := range points[1:] {
		if p.Time.Before(dates.Start) {
			dates.Start = p.Time
		}
		if p.Time.After(dates.End) {
			dates.End = p.Time
		}
		low = value.Min(low, p.Value)
		high = value.Max(high, p.Value)
	}

	span, err := padSpan(low, high)
	if err != nil {
		return DateSpan{}, value.Span{}, errors.New().Wrap(ErrRangeValue, err)
	}
	return dates, span, nil
}

func padSpan(low, high value.Value) (value.Span, error) {
	if mixedKinds(low, high) {
		var err error
		if low, err = low.ToFixed(); err != nil {
			return value.Span{}, err
		}
		if high, err = high.ToFixed(); err != nil {
			return value.Span{}, err
		}
	}

	width, err := value.Sub(high, low)
	if err != nil {
		return value.Span{}, err
	}
	pad, err := width.DivBy(padDivisor)
	if err != nil {
		return value.Span{}, err
	}

	lowPad := pad
	if !low.Less(value.Zero()) {
		lowPad = value.Min(pad, low)
	}

	paddedLow, err := value.Sub(low, lowPad)
	if err != nil {
		return value.Span{}, err
	}
	paddedHigh, err := value.Add(high, pad)
	if err != nil {
		return value.Span{}, err
	}
	return value.NewSpan(paddedLow, paddedHigh), nil
}

func mixedKinds(a, b value.Value) bool {
	return a.Kind() != b.Kind() && a.Kind() != value.KindZero && b.Kind() != value.KindZero
}
