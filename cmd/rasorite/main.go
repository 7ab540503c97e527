package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chemiclast/rasorite/internal/analytics"
	"github.com/chemiclast/rasorite/internal/benchmark"
	"github.com/chemiclast/rasorite/internal/cache"
	"github.com/chemiclast/rasorite/internal/config"
	"github.com/chemiclast/rasorite/internal/errors"
	"github.com/chemiclast/rasorite/internal/logger"
	"github.com/chemiclast/rasorite/internal/render"
	"github.com/chemiclast/rasorite/internal/series"
	"github.com/spf13/pflag"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel.String())
	logger.Debug().Str("config", cfg.ConfigFile).Msg("Config loaded")

	ctx, cancel := context.WithCancel(context.Background())
	go handleSignals(cancel)

	err = run(ctx, cfg)
	cancel()
	if err != nil {
		logError(err)
		os.Exit(1)
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func logError(err error) {
	var appErr errors.Error
	if errors.As(err, &appErr) {
		logger.ErrorWithCode(appErr).Msg("rasorite failed")
		return
	}
	logger.Error().Err(err).Msg("rasorite failed")
}

// run plots the export named by cfg.Input.
func run(ctx context.Context, cfg *config.Config) error {
	errFactory := errors.New()

	data, err := analytics.ParseFile(cfg.Input, analytics.Options{
		SkipInvalidRecords: cfg.SkipInvalid,
		Logger:             logger.Default(),
	})
	if err != nil {
		return errFactory.Wrap(errors.ErrLoadData, err)
	}
	if data.Skipped > 0 {
		logger.Warn().Int("skipped", data.Skipped).Msg("Skipped invalid records")
	}

	primary, ok := data.Dataset.Primary()
	if !ok {
		return errFactory.WithData(errors.ErrMissingSeries, series.PrimaryPrefix)
	}

	var bench series.Series
	if cfg.FetchBenchmark {
		b, err := fetchBenchmark(ctx, cfg, data, primary)
		if err != nil {
			return errFactory.Wrap(errors.ErrFetchBench, err)
		}
		b.Merge(data.Dataset)
		bench = b.Series()
	} else if bench, ok = data.Dataset.Benchmark(); !ok {
		return errFactory.WithData(errors.ErrMissingSeries, series.BenchmarkPrefix).
			WithMessage("No benchmark series in export, use --fetch-benchmark")
	}

	logger.Debug().
		Str("primary", primary.Name).
		Int("primary_points", primary.Len()).
		Str("benchmark", bench.Name).
		Int("benchmark_points", bench.Len()).
		Msg("Series selected")

	plot, err := buildPlot(cfg, data, primary, bench)
	if err != nil {
		return err
	}

	opts := render.Options{
		Width:    cfg.Width,
		Height:   cfg.Height,
		MaxTicks: cfg.MaxTicks,
	}
	if err := render.RenderFile(cfg.Output, plot, opts); err != nil {
		if errors.HasCode(err, render.ErrWriteFile) {
			return errFactory.Wrap(errors.ErrWriteOutput, err)
		}
		return errFactory.Wrap(errors.ErrRenderChart, err)
	}

	logger.Info().Str("output", cfg.Output).Msg("Chart written")
	return nil
}

func buildPlot(cfg *config.Config, data *analytics.Data, primary, bench series.Series) (render.Plot, error) {
	kpi := data.KPI.String()
	if !cfg.Normalize {
		return render.NewPlot(kpi, data.UniverseID, primary, bench), nil
	}

	normalized, err := series.Normalize(primary, bench)
	if err != nil {
		return render.Plot{}, errors.New().Wrap(errors.ErrRenderChart, err)
	}
	logger.Debug().
		Int("points", normalized.Len()).
		Int("dropped", bench.Len()-normalized.Len()).
		Msg("Normalized analytics series")

	return render.NewNormalizedPlot(kpi, data.UniverseID, normalized, bench.Name), nil
}

// fetchBenchmark asks the benchmark API for the period covered by primary,
// going through the local cache when it is enabled.
func fetchBenchmark(ctx context.Context, cfg *config.Config, data *analytics.Data, primary series.Series) (*benchmark.Benchmark, error) {
	dates, _, err := series.ComputeRange(primary.Points)
	if err != nil {
		return nil, err
	}

	log := logger.Default()
	client := benchmark.NewClient(cfg.Cookie,
		benchmark.WithBaseURL(cfg.BenchmarkURL),
		benchmark.WithTimeout(cfg.Timeout),
		benchmark.WithLogger(log),
	)

	store, err := cache.NewStore(cfg.CacheConfig(), log)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close benchmark cache")
		}
	}()

	src := cache.NewSource(client, store, cfg.CacheTTL, log)
	return src.Fetch(ctx, benchmark.Query{
		UniverseID: data.UniverseID,
		KPI:        data.KPI.String(),
		Start:      dates.Start,
		End:        dates.End,
	})
}
