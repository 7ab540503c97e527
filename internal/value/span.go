package value

import "fmt"

// Span is a closed interval [Low, High] with Low <= High. Low == High is a
// degenerate span.
type Span struct {
	Low  Value
	High Value
}

// NewSpan returns the span covering a and b in either order.
func NewSpan(a, b Value) Span {
	if Compare(b, a) < 0 {
		a, b = b, a
	}
	return Span{Low: a, High: b}
}

// IsDegenerate reports whether the span holds a single value.
func (s Span) IsDegenerate() bool {
	return Compare(s.Low, s.High) == 0
}

// Contains reports whether v lies within the span.
func (s Span) Contains(v Value) bool {
	return Compare(s.Low, v) <= 0 && Compare(v, s.High) <= 0
}

// Floats returns the bounds as float64.
func (s Span) Floats() (low, high float64) {
	return s.Low.Float64(), s.High.Float64()
}

func (s Span) String() string {
	return fmt.Sprintf("[%s, %s]", s.Low, s.High)
}
