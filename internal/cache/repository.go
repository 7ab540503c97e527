package cache

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chemiclast/rasorite/internal/benchmark"
	"github.com/chemiclast/rasorite/internal/errors"
	"github.com/chemiclast/rasorite/internal/logger"
	"github.com/chemiclast/rasorite/internal/series"
	"github.com/chemiclast/rasorite/internal/value"
	_ "github.com/mattn/go-sqlite3"
)

type repository struct {
	db     *sql.DB
	logger logger.Logger
	mu     sync.Mutex
}

// NewRepository opens (creating if needed) the SQLite cache at cfg.DBPath.
func NewRepository(cfg Config, log logger.Logger) (Store, error) {
	if cfg.DBPath == "" {
		return nil, errors.New().New(ErrInvalidDBPath)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, stepError(ErrStorageInit, "create_directory", cfg.DBPath, err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal=WAL&_foreign_keys=1")
	if err != nil {
		return nil, stepError(ErrStorageInit, "open_database", cfg.DBPath, err)
	}

	if err := ValidateAndUpdateSchema(db, cfg.backupDir(), log); err != nil {
		db.Close()
		return nil, errors.New().Wrap(ErrStorageInit, err)
	}

	log.Debug().
		Str("path", cfg.DBPath).
		Dur("ttl", cfg.TTL).
		Msg("Benchmark cache opened")

	return &repository{db: db, logger: log}, nil
}

func (r *repository) Get(ctx context.Context, q benchmark.Query) (*Entry, error) {
	errFactory := errors.New()

	var (
		id, percentile, fetchedAt int64
		universe                  sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, selectBenchmarkSQL, queryKey(q)...).
		Scan(&id, &percentile, &universe, &fetchedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}

	b := &benchmark.Benchmark{Percentile: uint64(percentile)}
	if universe.Valid {
		p := uint64(universe.Int64)
		b.UniverseKPIPercentile = &p
	}

	if b.Points, err = r.readPoints(ctx, id); err != nil {
		return nil, err
	}

	return &Entry{Benchmark: b, FetchedAt: time.Unix(0, fetchedAt).UTC()}, nil
}

func (r *repository) readPoints(ctx context.Context, id int64) ([]series.Point, error) {
	errFactory := errors.New()

	rows, err := r.db.QueryContext(ctx, selectPointsSQL, id)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}
	defer rows.Close()

	var points []series.Point
	for rows.Next() {
		var stamp, kind, bits int64
		if err := rows.Scan(&stamp, &kind, &bits); err != nil {
			return nil, errFactory.Wrap(ErrStorageAccess, err)
		}
		v, err := value.FromBits(value.Kind(kind), uint64(bits))
		if err != nil {
			return nil, errFactory.Wrap(ErrInvalidEntry, err)
		}
		points = append(points, series.Point{Time: time.Unix(0, stamp).UTC(), Value: v})
	}
	if err := rows.Err(); err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}
	return points, nil
}

// Put replaces whatever is stored for q with b.
func (r *repository) Put(ctx context.Context, q benchmark.Query, b *benchmark.Benchmark, fetchedAt time.Time) error {
	if b == nil {
		return errors.New().New(ErrInvalidEntry)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err := withTx(ctx, r.db, r.logger, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, deleteBenchmarkSQL, queryKey(q)...); err != nil {
			return err
		}

		var universe any
		if b.UniverseKPIPercentile != nil {
			universe = int64(*b.UniverseKPIPercentile)
		}
		args := append(queryKey(q), int64(b.Percentile), universe, fetchedAt.UnixNano())
		res, err := tx.ExecContext(ctx, insertBenchmarkSQL, args...)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, insertPointSQL)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for seq, p := range b.Points {
			kind, bits := p.Value.Bits()
			if _, err := stmt.ExecContext(ctx, id, seq, p.Time.UnixNano(), int64(kind), int64(bits)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to store benchmark")
		return errors.New().Wrap(ErrTransactionFailed, err)
	}

	r.logger.Debug().
		Uint64("universe_id", q.UniverseID).
		Str("kpi", q.KPI).
		Int("points", len(b.Points)).
		Msg("Stored benchmark in cache")

	return nil
}

func (r *repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return stepError(ErrStorageClose, "checkpoint_wal", "", err)
	}
	if err := r.db.Close(); err != nil {
		return stepError(ErrStorageClose, "close_database", "", err)
	}

	r.logger.Debug().Msg("Benchmark cache closed")
	return nil
}

func queryKey(q benchmark.Query) []any {
	return []any{int64(q.UniverseID), q.KPI, q.Start.UTC().UnixNano(), q.End.UTC().UnixNano()}
}
