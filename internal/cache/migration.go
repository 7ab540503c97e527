package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chemiclast/rasorite/internal/errors"
	"github.com/chemiclast/rasorite/internal/logger"
)

// cacheTables lists the tables in drop order.
var cacheTables = []string{"benchmark_points", "benchmarks", "schema_versions"}

// backupDatabase copies db into backupDir and returns the path of the copy.
func backupDatabase(db *sql.DB, version int, backupDir string, log logger.Logger) (string, error) {
	if err := os.MkdirAll(backupDir, defaultDirPerm); err != nil {
		return "", stepError(ErrSchemaMigrationFailed, "create_backup_dir", backupDir, err)
	}

	name := fmt.Sprintf("benchmarks_v%d_%s.db", version, time.Now().UTC().Format("20060102T150405Z"))
	path := filepath.Join(backupDir, name)

	// Must run outside a transaction.
	quoted := "'" + strings.ReplaceAll(path, "'", "''") + "'"
	if _, err := db.Exec("VACUUM INTO " + quoted); err != nil {
		return "", stepError(ErrSchemaMigrationFailed, "vacuum_into", path, err)
	}

	log.Info().
		Str("path", path).
		Int("version", version).
		Msg("Cache database backup created")

	return path, nil
}

// ValidateAndUpdateSchema makes sure db carries SchemaVersion. A database
// written by another version is copied into backupDir, then rebuilt empty.
func ValidateAndUpdateSchema(db *sql.DB, backupDir string, log logger.Logger) error {
	errFactory := errors.New()

	version, err := GetSchemaVersion(db)
	if err != nil {
		return errFactory.Wrap(ErrSchemaValidationFailed, err)
	}

	log.Debug().
		Int("version", version).
		Int("expected", SchemaVersion).
		Msg("Cache schema version")

	switch version {
	case SchemaVersion:
		return nil
	case 0:
	default:
		if _, err := backupDatabase(db, version, backupDir, log); err != nil {
			return err
		}
	}

	if err := dropTables(db, log); err != nil {
		return errFactory.Wrap(ErrSchemaMigrationFailed, err)
	}
	return InitSchema(db, log)
}

func dropTables(db *sql.DB, log logger.Logger) error {
	return withTx(context.Background(), db, log, func(tx *sql.Tx) error {
		for _, table := range cacheTables {
			if _, err := tx.Exec("DROP TABLE IF EXISTS " + table); err != nil {
				return stepError(ErrSchemaMigrationFailed, "drop_table", table, err)
			}
		}
		return nil
	})
}
