package value

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	minFractionDigits = 1
	maxFractionDigits = 5
)

// String renders Zero and Integer values as plain decimal integers and Fixed
// values with one to five fractional digits, never in scientific notation.
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatUint(v.bits, 10)
	case KindFixed:
		return formatFixed(v.raw())
	default:
		return "0"
	}
}

func formatFixed(raw int64) string {
	s := decimal.NewFromInt(raw).Div(fixedScale).Round(maxFractionDigits).String()

	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return s + "." + strings.Repeat("0", minFractionDigits)
	}
	if pad := minFractionDigits - (len(s) - dot - 1); pad > 0 {
		s += strings.Repeat("0", pad)
	}
	return s
}
