package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/riskibarqy/sportunion-stats/internal/app"
	"github.com/riskibarqy/sportunion-stats/internal/config"
	"github.com/riskibarqy/sportunion-stats/internal/domain/stats"
	"github.com/riskibarqy/sportunion-stats/internal/infrastructure/export"
	"github.com/riskibarqy/sportunion-stats/internal/platform/logging"
)

func main() {
	var (
		outDir   = flag.String("out", "out", "directory for the exported JSON tables (empty disables export)")
		persist  = flag.Bool("persist", false, "replace season rows in PostgreSQL (requires DB_ENABLED=true)")
		refresh  = flag.Bool("refresh", false, "allow network fetch for refreshable seasons")
		payload  = flag.Bool("payload", false, "print the text payload to stdout")
		maxChars = flag.Int("max-chars", 0, "payload character limit (0 uses PAYLOAD_MAX_CHARS)")
		workers  = flag.Int("workers", 4, "export worker pool size")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(2)
	}
	if *persist && !cfg.DBEnabled {
		fmt.Fprintln(os.Stderr, "-persist requires DB_ENABLED=true")
		os.Exit(2)
	}

	logger := logging.NewJSONWriter(cfg.LogLevel, os.Stderr).With("service", cfg.ServiceName+"-etl")
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *outDir, *persist, *refresh, *payload, *maxChars, *workers); err != nil {
		logger.Error("etl run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *logging.Logger, outDir string, persist, refresh, printPayload bool, maxChars, workers int) error {
	rt, err := app.NewRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	var combined stats.Combined
	if refresh {
		combined, err = rt.Stats.Refresh(ctx)
	} else {
		combined, err = rt.Stats.Current(ctx)
	}
	if err != nil {
		return err
	}

	for _, report := range combined.Seasons {
		logger.Info("season summary",
			"season", report.Season,
			"loaded", report.Loaded,
			"fetched", report.Fetched,
			"skip_reason", report.SkipReason,
			"players", report.Players,
			"matches", report.Matches,
			"scoring_events", report.ScoringEvents,
		)
	}

	if outDir != "" {
		files, err := export.NewWriter(outDir, workers, logger).Write(ctx, combined)
		if err != nil {
			return err
		}
		for _, f := range files {
			logger.Info("table exported", "file", f.Path, "rows", f.Rows, "bytes", f.Bytes)
		}
	}

	if persist {
		n, err := rt.Stats.Persist(ctx, combined)
		if err != nil {
			return err
		}
		logger.Info("seasons persisted", "count", n)
	}

	if printPayload {
		p, err := rt.Stats.Payload(ctx, stats.Filter{}, maxChars)
		if err != nil {
			return err
		}
		logger.Info("payload built", "chars", p.Chars, "truncated", p.Truncated)
		fmt.Println(p.Text)
	}
	return nil
}
