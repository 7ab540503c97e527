package cache

import (
	"context"
	"database/sql"

	"github.com/chemiclast/rasorite/internal/errors"
	"github.com/chemiclast/rasorite/internal/logger"
)

const (
	SchemaVersion = 1

	createTablesSQL = `
    CREATE TABLE IF NOT EXISTS schema_versions (
        version    INTEGER PRIMARY KEY,
        applied_at TEXT NOT NULL
    );
    CREATE TABLE IF NOT EXISTS benchmarks (
        id                  INTEGER PRIMARY KEY AUTOINCREMENT,
        universe_id         INTEGER NOT NULL,
        kpi                 TEXT NOT NULL,
        start_time          INTEGER NOT NULL,
        end_time            INTEGER NOT NULL,
        percentile          INTEGER NOT NULL,
        universe_percentile INTEGER,
        fetched_at          INTEGER NOT NULL,
        UNIQUE (universe_id, kpi, start_time, end_time)
    );
    CREATE TABLE IF NOT EXISTS benchmark_points (
        benchmark_id INTEGER NOT NULL REFERENCES benchmarks (id) ON DELETE CASCADE,
        seq          INTEGER NOT NULL,
        timestamp    INTEGER NOT NULL,
        kind         INTEGER NOT NULL CHECK (kind IN (0, 1, 2)),
        bits         INTEGER NOT NULL,
        PRIMARY KEY (benchmark_id, seq)
    );`

	selectBenchmarkSQL = `
    SELECT id, percentile, universe_percentile, fetched_at
    FROM benchmarks
    WHERE universe_id = ? AND kpi = ? AND start_time = ? AND end_time = ?`

	selectPointsSQL = `
    SELECT timestamp, kind, bits
    FROM benchmark_points
    WHERE benchmark_id = ?
    ORDER BY seq`

	deleteBenchmarkSQL = `
    DELETE FROM benchmarks
    WHERE universe_id = ? AND kpi = ? AND start_time = ? AND end_time = ?`

	insertBenchmarkSQL = `
    INSERT INTO benchmarks (
        universe_id, kpi, start_time, end_time,
        percentile, universe_percentile, fetched_at
    ) VALUES (?, ?, ?, ?, ?, ?, ?)`

	insertPointSQL = `
    INSERT INTO benchmark_points (
        benchmark_id, seq, timestamp, kind, bits
    ) VALUES (?, ?, ?, ?, ?)`

	insertVersionSQL = `
    INSERT INTO schema_versions (version, applied_at)
    VALUES (?, datetime('now'))`

	selectVersionSQL = `
    SELECT version FROM schema_versions
    ORDER BY version DESC LIMIT 1`

	tableExistsSQL = `
    SELECT count(*) > 0 FROM sqlite_master
    WHERE type = 'table' AND name = ?`
)

// InitSchema creates the cache tables and records SchemaVersion.
func InitSchema(db *sql.DB, log logger.Logger) error {
	log.Debug().Msg("Creating cache database...")

	err := withTx(context.Background(), db, log, func(tx *sql.Tx) error {
		if _, err := tx.Exec(createTablesSQL); err != nil {
			return stepError(ErrSchemaInitFailed, "create_tables", "", err)
		}
		if _, err := tx.Exec(insertVersionSQL, SchemaVersion); err != nil {
			return stepError(ErrSchemaInitFailed, "record_version", "", err)
		}
		return nil
	})
	if err != nil {
		return errors.New().Wrap(ErrSchemaInitFailed, err)
	}

	log.Debug().Int("version", SchemaVersion).Msg("Cache schema initialized")
	return nil
}

// GetSchemaVersion returns the recorded schema version, or 0 for an empty
// database.
func GetSchemaVersion(db *sql.DB) (int, error) {
	exists, err := TableExists(db, "schema_versions")
	if err != nil || !exists {
		return 0, err
	}

	var version int
	switch err := db.QueryRow(selectVersionSQL).Scan(&version); {
	case errors.Is(err, sql.ErrNoRows):
		return 0, nil
	case err != nil:
		return 0, stepError(ErrSchemaValidationFailed, "read_version", "schema_versions", err)
	}
	return version, nil
}

// TableExists reports whether the database has a table called name.
func TableExists(db *sql.DB, name string) (bool, error) {
	var exists bool
	if err := db.QueryRow(tableExistsSQL, name).Scan(&exists); err != nil {
		return false, stepError(ErrSchemaValidationFailed, "find_table", name, err)
	}
	return exists, nil
}
