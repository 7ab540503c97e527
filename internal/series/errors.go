package series

import "github.com/chemiclast/rasorite/internal/errors"

const (
	// Range Errors
	ErrEmptyInput = errors.ErrorCode("series_empty_input")
	ErrRangeValue = errors.ErrorCode("series_range_failed")

	// Normalization Errors
	ErrNormalize = errors.ErrorCode("series_normalize_failed")
)
