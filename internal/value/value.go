// Package value implements the hybrid numeric type used by the axis and
// series math: an exact unsigned count, a signed 32.32 fixed-point
// measurement, or an explicit exact zero.
package value

import (
	"cmp"
	"math"
	"strconv"
	"strings"

	"github.com/chemiclast/rasorite/internal/errors"
	"github.com/shopspring/decimal"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindZero Kind = iota
	KindInteger
	KindFixed
)

func (k Kind) String() string {
	switch k {
	case KindZero:
		return "zero"
	case KindInteger:
		return "integer"
	case KindFixed:
		return "fixed"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

const fracBits = 32

var fixedScale = decimal.NewFromInt(1 << fracBits)

// Value is an immutable numeric value. The zero Value is Zero.
//
// For KindInteger bits holds the count; for KindFixed it holds the two's
// complement raw fixed-point representation with 32 fractional bits.
type Value struct {
	kind Kind
	bits uint64
}

// Zero returns the exact additive identity.
func Zero() Value {
	return Value{}
}

// Integer returns an exact count.
func Integer(n uint64) Value {
	return Value{kind: KindInteger, bits: n}
}

func fixedRaw(raw int64) Value {
	return Value{kind: KindFixed, bits: uint64(raw)}
}

// FromFloat64 converts f to a Value. 0.0 and NaN become Zero; every other
// value becomes Fixed, saturating at the bounds of the 32.32 range.
func FromFloat64(f float64) Value {
	if f == 0 || math.IsNaN(f) {
		return Zero()
	}

	scaled := f * (1 << fracBits)
	switch {
	case scaled >= math.MaxInt64:
		return fixedRaw(math.MaxInt64)
	case scaled <= math.MinInt64:
		return fixedRaw(math.MinInt64)
	}
	return fixedRaw(int64(math.RoundToEven(scaled)))
}

// FromBits rebuilds a Value from the pair returned by Bits.
func FromBits(kind Kind, bits uint64) (Value, error) {
	switch kind {
	case KindZero:
		return Zero(), nil
	case KindInteger, KindFixed:
		return Value{kind: kind, bits: bits}, nil
	default:
		return Value{}, errors.New().WithData(ErrInvalidKind, kind)
	}
}

// Parse reads text as a Value. "0" is Zero, a run of decimal digits is an
// Integer, and anything else must be a plain decimal number (optional leading
// '-', no exponent) that fits the fixed-point range.
func Parse(text string) (Value, error) {
	if text == "0" {
		return Zero(), nil
	}

	if isDigits(text) {
		n, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return Value{}, cannotParse(text, err)
		}
		return Integer(n), nil
	}

	if !isDecimal(text) {
		return Value{}, errors.New().WithData(ErrCannotParse, text).
			WithMessage("not a plain decimal number")
	}
	return parseFixed(text)
}

func parseFixed(text string) (Value, error) {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return Value{}, cannotParse(text, err)
	}

	raw := d.Mul(fixedScale).Round(0).BigInt()
	if !raw.IsInt64() {
		return Value{}, errors.New().WithData(ErrCannotParse, text).
			WithMessage("value outside the fixed-point range")
	}
	return fixedRaw(raw.Int64()), nil
}

// isDecimal matches -?digits[.digits], with digits allowed on either side of
// the point but not both empty.
func isDecimal(s string) bool {
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return false
	}
	return (whole == "" || isDigits(whole)) && (frac == "" || isDigits(frac))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind {
	return v.kind
}

// Bits returns the variant and raw payload of v for lossless storage.
func (v Value) Bits() (Kind, uint64) {
	return v.kind, v.bits
}

func (v Value) raw() int64 {
	return int64(v.bits)
}

// IsZero reports whether v is numerically zero, whatever its kind.
func (v Value) IsZero() bool {
	return v.bits == 0
}

// Float64 converts v to a float for interpolation and statistics.
func (v Value) Float64() float64 {
	switch v.kind {
	case KindInteger:
		return float64(v.bits)
	case KindFixed:
		return float64(v.raw()) / (1 << fracBits)
	default:
		return 0
	}
}

// Uint64 converts v to a count, truncating any fraction. Negative values
// become 0.
func (v Value) Uint64() uint64 {
	switch v.kind {
	case KindInteger:
		return v.bits
	case KindFixed:
		if v.raw() < 0 {
			return 0
		}
		return v.bits >> fracBits
	default:
		return 0
	}
}

// ToFixed promotes an Integer to the equivalent Fixed value. Zero and Fixed
// values are returned unchanged.
func (v Value) ToFixed() (Value, error) {
	if v.kind != KindInteger {
		return v, nil
	}
	if v.bits > math.MaxInt32 {
		return Value{}, overflow("to_fixed", v, Zero())
	}
	return fixedRaw(int64(v.bits << fracBits)), nil
}

// Compare returns -1, 0 or +1 depending on whether a is less than, equal to
// or greater than b. Values of different kinds compare numerically.
func Compare(a, b Value) int {
	switch {
	case a.kind == KindFixed && b.kind == KindFixed:
		return cmp.Compare(a.raw(), b.raw())
	case a.kind != KindFixed && b.kind != KindFixed:
		return cmp.Compare(a.bits, b.bits)
	case a.kind == KindFixed:
		return -compareCountFixed(b.bits, a.raw())
	default:
		return compareCountFixed(a.bits, b.raw())
	}
}

func compareCountFixed(n uint64, raw int64) int {
	if raw < 0 {
		return 1
	}
	whole := uint64(raw) >> fracBits
	frac := uint64(raw) & (1<<fracBits - 1)
	switch {
	case n > whole:
		return 1
	case n < whole:
		return -1
	case frac > 0:
		return -1
	default:
		return 0
	}
}

// Equal reports whether a and b are numerically equal.
func (v Value) Equal(other Value) bool {
	return Compare(v, other) == 0
}

// Less reports whether v orders before other.
func (v Value) Less(other Value) bool {
	return Compare(v, other) < 0
}

// Min returns the smaller of a and b.
func Min(a, b Value) Value {
	if Compare(b, a) < 0 {
		return b
	}
	return a
}

// Max returns the larger of a and b.
func Max(a, b Value) Value {
	if Compare(b, a) > 0 {
		return b
	}
	return a
}
