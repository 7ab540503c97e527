package cache

import (
	"context"
	"time"

	"github.com/chemiclast/rasorite/internal/benchmark"
)

// Store persists fetched benchmarks keyed by query.
type Store interface {
	// Get returns the entry for q, or nil if none is stored.
	Get(ctx context.Context, q benchmark.Query) (*Entry, error)
	Put(ctx context.Context, q benchmark.Query, b *benchmark.Benchmark, fetchedAt time.Time) error
	Close() error
}

// Entry is a stored benchmark.
type Entry struct {
	Benchmark *benchmark.Benchmark
	FetchedAt time.Time
}
