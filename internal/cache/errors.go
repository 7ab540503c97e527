package cache

import "github.com/chemiclast/rasorite/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrInvalidConfig
	ErrInvalidDBPath = errors.ErrorCode("cache_invalid_db_path")

	// Schema Errors
	ErrSchemaInitFailed       = errors.ErrorCode("cache_schema_init_failed")
	ErrSchemaValidationFailed = errors.ErrorCode("cache_schema_validation_failed")
	ErrSchemaMigrationFailed  = errors.ErrorCode("cache_schema_migration_failed")
	ErrTransactionFailed      = errors.ErrorCode("cache_transaction_failed")

	// Storage Errors
	ErrStorageAccess = errors.ErrorCode("cache_storage_access_failed")
	ErrStorageInit   = errors.ErrInitFailed
	ErrStorageClose  = errors.ErrShutdownFailed

	// Entry Errors
	ErrInvalidEntry = errors.ErrorCode("cache_invalid_entry")

	// Operation Errors
	ErrOperationTimeout = errors.ErrTimeout
)
