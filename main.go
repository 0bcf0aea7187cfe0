package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/ericmaniraguh/crypto-price-tracker/config"
	"github.com/ericmaniraguh/crypto-price-tracker/display"
	"github.com/ericmaniraguh/crypto-price-tracker/logger"
	"github.com/ericmaniraguh/crypto-price-tracker/processor"
	"github.com/ericmaniraguh/crypto-price-tracker/reader/coingecko"
	"github.com/ericmaniraguh/crypto-price-tracker/writer"
)

// Capture dates follow dd-mm-yyyy, matching the dataset file names.
const captureDateFormat = "02-01-2006"

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "config/config.yml", "Path to configuration file")
	flag.Parse()

	env := config.AppEnvironment()
	resolvedPath := config.ResolveConfigPath(*configPath)

	cfg, err := config.LoadConfig(resolvedPath)
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	if cfg.Metrics.CloudWatch.Enabled {
		logger.InitCloudWatch(
			cfg.Metrics.CloudWatch.Region,
			cfg.Metrics.CloudWatch.Namespace,
			cfg.Metrics.CloudWatch.DashboardName,
		)
	}

	runID := uuid.New().String()
	runLog := log.WithFields(logger.Fields{"run_id": runID})

	runLog.WithFields(logger.Fields{
		"service":     cfg.Tracker.Name,
		"version":     cfg.Tracker.Version,
		"environment": env,
		"config":      resolvedPath,
	}).Info("starting crypto price tracker")

	if config.IsProductionLike(env) && !cfg.Storage.S3.Enabled {
		runLog.Warn("running without S3 storage in a production-like environment")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, runLog); err != nil {
		runLog.WithError(err).Error("pipeline run failed")
		os.Exit(1)
	}

	runLog.Info("crypto price tracker finished")
}

// run executes one full snapshot pass: fetch, enhance, normalize, rank,
// summarize, display, persist.
func run(ctx context.Context, cfg *config.Config, log *logger.Entry) error {
	start := time.Now()
	captureDate := time.Now().Format(captureDateFormat)

	rdr := coingecko.NewReader(cfg)
	raw, err := rdr.FetchMarkets(ctx)
	if err != nil {
		return err
	}
	log.LogMetric("main", "coins_fetched", int64(len(raw)), "counter", logger.Fields{
		"capture_date": captureDate,
	})

	enhanced, err := processor.NewEnhancer().Enhance(raw, captureDate)
	if err != nil {
		return err
	}

	normalized := processor.NewNormalizer().Normalize(enhanced)
	log.LogMetric("main", "coins_normalized", int64(len(normalized)), "counter", logger.Fields{
		"capture_date": captureDate,
	})

	ranker := processor.NewRanker(cfg.Analysis.TopLimit)
	gainers := ranker.TopGainers(normalized)
	losers := ranker.TopLosers(normalized)
	summary := processor.NewSummarizer().Summarize(normalized)

	display.MarketCapLeaders(os.Stdout, normalized, cfg.Display.LeadersLimit)
	display.TopGainers(os.Stdout, gainers)
	display.TopLosers(os.Stdout, losers)
	display.Summary(os.Stdout, summary)

	dsw, err := writer.NewDatasetWriter(ctx, cfg)
	if err != nil {
		return err
	}
	if err := dsw.WriteAll(ctx, writer.Datasets{
		CaptureDate: captureDate,
		Enhanced:    enhanced,
		Normalized:  normalized,
		Gainers:     gainers,
		Losers:      losers,
		Summary:     summary,
	}); err != nil {
		return err
	}

	logger.LogPerformanceEntry(log, "main", "pipeline_run", time.Since(start), logger.Fields{
		"coins":        len(normalized),
		"capture_date": captureDate,
	})
	return nil
}
