// Package cache keeps fetched benchmarks in a local SQLite database so
// repeated plots of the same export do not hit the benchmark API.
package cache

import (
	"context"
	"time"

	"github.com/chemiclast/rasorite/internal/benchmark"
	"github.com/chemiclast/rasorite/internal/errors"
	"github.com/chemiclast/rasorite/internal/logger"
)

// No-op implementation
type noopStore struct{}

// NewStore returns the SQLite store described by cfg, or a store that keeps
// nothing when the cache is disabled.
func NewStore(cfg Config, log logger.Logger) (Store, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		log.Debug().Msg("Benchmark cache disabled, using no-op store")
		return noopStore{}, nil
	}

	repo, err := NewRepository(cfg, log)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to create cache repository")
		return nil, err
	}

	return repo, nil
}

func (noopStore) Get(context.Context, benchmark.Query) (*Entry, error) {
	return nil, nil
}

func (noopStore) Put(context.Context, benchmark.Query, *benchmark.Benchmark, time.Time) error {
	return nil
}

func (noopStore) Close() error {
	return nil
}

// Source serves benchmarks from a Store while they are younger than the
// TTL and fetches them from the wrapped source otherwise.
type Source struct {
	next   benchmark.Source
	store  Store
	ttl    time.Duration
	logger logger.Logger
	now    func() time.Time
}

// NewSource wraps next with store. A zero ttl never expires entries.
func NewSource(next benchmark.Source, store Store, ttl time.Duration, log logger.Logger) *Source {
	return &Source{
		next:   next,
		store:  store,
		ttl:    ttl,
		logger: log,
		now:    time.Now,
	}
}

// Fetch implements benchmark.Source. Cache failures are logged and never
// fail the fetch.
func (s *Source) Fetch(ctx context.Context, q benchmark.Query) (*benchmark.Benchmark, error) {
	select {
	case <-ctx.Done():
		return nil, errors.New().Wrap(ErrOperationTimeout, ctx.Err())
	default:
	}

	entry, err := s.store.Get(ctx, q)
	switch {
	case err != nil:
		s.logger.Warn().Err(err).Msg("Failed to read benchmark cache")
	case entry != nil && s.fresh(entry):
		s.logger.Debug().
			Time("fetched_at", entry.FetchedAt).
			Msg("Using cached benchmark")
		return entry.Benchmark, nil
	case entry != nil:
		s.logger.Debug().
			Time("fetched_at", entry.FetchedAt).
			Msg("Cached benchmark expired")
	}

	b, err := s.next.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}

	if err := s.store.Put(ctx, q, b, s.now()); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to store benchmark in cache")
	}
	return b, nil
}

func (s *Source) fresh(e *Entry) bool {
	return s.ttl == 0 || s.now().Sub(e.FetchedAt) < s.ttl
}
