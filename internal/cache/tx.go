package cache

import (
	"context"
	"database/sql"

	"github.com/chemiclast/rasorite/internal/errors"
	"github.com/chemiclast/rasorite/internal/logger"
)

// stepFailure is the data attached to storage errors.
type stepFailure struct {
	Step   string
	Target string `json:",omitempty"`
	Error  string
}

func stepError(code errors.ErrorCode, step, target string, err error) errors.Error {
	return errors.New().WithData(code, stepFailure{
		Step:   step,
		Target: target,
		Error:  err.Error(),
	})
}

// withTx runs fn inside a transaction and commits when fn succeeds.
func withTx(ctx context.Context, db *sql.DB, log logger.Logger, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Debug().Err(rbErr).Msg("Failed to roll back transaction")
		}
		return err
	}

	return tx.Commit()
}
