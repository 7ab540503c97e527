package value

import (
	"math"
	"math/bits"

	"github.com/chemiclast/rasorite/internal/errors"
)

// Add returns a+b. Zero is the identity on either side; otherwise both
// operands must be of the same kind.
func Add(a, b Value) (Value, error) {
	switch {
	case a.kind == KindZero:
		return b, nil
	case b.kind == KindZero:
		return a, nil
	case a.kind != b.kind:
		return Value{}, mismatched("add", a, b)
	}

	if a.kind == KindInteger {
		sum, carry := bits.Add64(a.bits, b.bits, 0)
		if carry != 0 {
			return Value{}, overflow("add", a, b)
		}
		return Integer(sum), nil
	}

	x, y := a.raw(), b.raw()
	sum := x + y
	if (x > 0 && y > 0 && sum < 0) || (x < 0 && y < 0 && sum >= 0) {
		return Value{}, overflow("add", a, b)
	}
	return fixedRaw(sum), nil
}

// Sub returns a-b. Subtracting Zero leaves a unchanged and Zero minus a
// value is its negation; otherwise both operands must be of the same kind.
// Counts cannot go below zero.
func Sub(a, b Value) (Value, error) {
	switch {
	case b.kind == KindZero:
		return a, nil
	case a.kind == KindZero:
		if b.kind == KindInteger {
			if b.bits == 0 {
				return Zero(), nil
			}
			return Value{}, overflow("sub", a, b)
		}
		if b.raw() == math.MinInt64 {
			return Value{}, overflow("sub", a, b)
		}
		return fixedRaw(-b.raw()), nil
	case a.kind != b.kind:
		return Value{}, mismatched("sub", a, b)
	}

	if a.kind == KindInteger {
		diff, borrow := bits.Sub64(a.bits, b.bits, 0)
		if borrow != 0 {
			return Value{}, overflow("sub", a, b)
		}
		return Integer(diff), nil
	}

	x, y := a.raw(), b.raw()
	diff := x - y
	if (x >= 0 && y < 0 && diff < 0) || (x < 0 && y > 0 && diff >= 0) {
		return Value{}, overflow("sub", a, b)
	}
	return fixedRaw(diff), nil
}

// Mul returns a*b. Zero on either side absorbs; otherwise both operands must
// be of the same kind.
func Mul(a, b Value) (Value, error) {
	switch {
	case a.kind == KindZero || b.kind == KindZero:
		return Zero(), nil
	case a.kind != b.kind:
		return Value{}, mismatched("mul", a, b)
	}

	if a.kind == KindInteger {
		hi, lo := bits.Mul64(a.bits, b.bits)
		if hi != 0 {
			return Value{}, overflow("mul", a, b)
		}
		return Integer(lo), nil
	}

	x, y := a.raw(), b.raw()
	neg := (x < 0) != (y < 0)
	hi, lo := bits.Mul64(abs64(x), abs64(y))
	if hi>>fracBits != 0 {
		return Value{}, overflow("mul", a, b)
	}
	mag := hi<<fracBits | lo>>fracBits
	switch {
	case neg && mag > 1<<63:
		return Value{}, overflow("mul", a, b)
	case neg:
		return fixedRaw(int64(-mag)), nil
	case mag > math.MaxInt64:
		return Value{}, overflow("mul", a, b)
	}
	return fixedRaw(int64(mag)), nil
}

func abs64(x int64) uint64 {
	if x < 0 {
		return uint64(-x)
	}
	return uint64(x)
}

// DivBy divides v by a small unsigned integer, as used for averaging and
// padding. Integer division truncates; fixed-point division truncates
// toward zero.
func (v Value) DivBy(n uint32) (Value, error) {
	if n == 0 {
		return Value{}, errors.New().WithData(ErrDivideByZero, v.String())
	}

	switch v.kind {
	case KindInteger:
		return Integer(v.bits / uint64(n)), nil
	case KindFixed:
		return fixedRaw(v.raw() / int64(n)), nil
	default:
		return Zero(), nil
	}
}

// Sum adds values left to right.
func Sum(values []Value) (Value, error) {
	total := Zero()
	for _, v := range values {
		var err error
		if total, err = Add(total, v); err != nil {
			return Value{}, err
		}
	}
	return total, nil
}
