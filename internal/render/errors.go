package render

import "github.com/chemiclast/rasorite/internal/errors"

const (
	// Output Errors
	ErrUnsupportedFormat = errors.ErrorCode("render_unsupported_format")
	ErrWriteFile         = errors.ErrorCode("render_write_file_failed")

	// Chart Errors
	ErrEmptyPlot = errors.ErrorCode("render_empty_plot")
	ErrDraw      = errors.ErrorCode("render_draw_failed")
)
