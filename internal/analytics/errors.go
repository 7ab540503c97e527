package analytics

import "github.com/chemiclast/rasorite/internal/errors"

const (
	// File Errors
	ErrUnreadableFile = errors.ErrorCode("analytics_unreadable_file")
	ErrEmptyFile      = errors.ErrorCode("analytics_empty_file")

	// Header Errors
	ErrMissingHeader = errors.ErrorCode("analytics_missing_header")
	ErrInvalidHeader = errors.ErrorCode("analytics_invalid_header")

	// KPI Errors
	ErrMissingKPI      = errors.ErrorCode("analytics_missing_kpi")
	ErrIncompatibleKPI = errors.ErrorCode("analytics_incompatible_kpi")

	// Record Errors
	ErrInvalidRecord = errors.ErrorCode("analytics_invalid_record")
)
