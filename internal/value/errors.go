package value

import "github.com/chemiclast/rasorite/internal/errors"

const (
	// Parsing Errors
	ErrCannotParse = errors.ErrorCode("value_cannot_parse")

	// Arithmetic Errors
	ErrMismatchedKinds = errors.ErrorCode("value_mismatched_kinds")
	ErrOverflow        = errors.ErrorCode("value_overflow")
	ErrDivideByZero    = errors.ErrorCode("value_divide_by_zero")

	// Storage Errors
	ErrInvalidKind = errors.ErrorCode("value_invalid_kind")
)

func mismatched(op string, a, b Value) error {
	return errors.New().WithData(ErrMismatchedKinds, struct {
		Op    string
		Left  Kind
		Right Kind
	}{
		Op:    op,
		Left:  a.kind,
		Right: b.kind,
	}).WithMessage("mismatched value kinds")
}

func overflow(op string, a, b Value) error {
	return errors.New().WithData(ErrOverflow, struct {
		Op    string
		Left  string
		Right string
	}{
		Op:    op,
		Left:  a.String(),
		Right: b.String(),
	}).WithMessage("value out of range")
}

func cannotParse(text string, err error) error {
	return errors.New().Wrap(ErrCannotParse, err).
		WithMessage("cannot parse value").
		WithData(text)
}
