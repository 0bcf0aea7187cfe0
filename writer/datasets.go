package writer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	appconfig "github.com/ericmaniraguh/crypto-price-tracker/config"
	"github.com/ericmaniraguh/crypto-price-tracker/logger"
	"github.com/ericmaniraguh/crypto-price-tracker/models"
)

// Datasets is everything one pipeline run produces for persistence, keyed by
// the capture date used in file names.
type Datasets struct {
	CaptureDate string
	Enhanced    []models.EnhancedCoin
	Normalized  []models.NormalizedCoin
	Gainers     []models.RankedCoin
	Losers      []models.RankedCoin
	Summary     *models.MarketSummary
}

// uploader mirrors written files to remote storage.
type uploader interface {
	Upload(ctx context.Context, captureDate, filename string, data []byte, contentType string) error
}

// DatasetWriter persists the run's datasets to the local directory and,
// when configured, mirrors each file to S3.
type DatasetWriter struct {
	config   *appconfig.Config
	uploader uploader
	log      *logger.Log
}

// NewDatasetWriter creates a DatasetWriter. The S3 uploader is only
// initialized when remote storage is enabled, so local-only runs never touch
// AWS configuration.
func NewDatasetWriter(ctx context.Context, cfg *appconfig.Config) (*DatasetWriter, error) {
	w := &DatasetWriter{config: cfg, log: logger.GetLogger()}

	if cfg.Storage.S3.Enabled {
		up, err := newS3Uploader(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("initialize s3 uploader: %w", err)
		}
		w.uploader = up
	}

	w.log.WithComponent("dataset_writer").WithFields(logger.Fields{
		"directory":       cfg.Storage.Local.Directory,
		"parquet_enabled": cfg.Storage.Local.ParquetEnabled,
		"s3_enabled":      cfg.Storage.S3.Enabled,
	}).Info("dataset writer initialized")

	return w, nil
}

type datasetFile struct {
	filename    string
	contentType string
	write       func(path string) error
}

// WriteAll persists every dataset of the run. A failing file does not stop
// the remaining files; all failures come back joined into one error.
func (w *DatasetWriter) WriteAll(ctx context.Context, ds Datasets) error {
	log := w.log.WithComponent("dataset_writer").WithFields(logger.Fields{
		"operation":    "write_all",
		"capture_date": ds.CaptureDate,
	})

	dir := w.config.Storage.Local.Directory
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", dir, err)
	}

	files := []datasetFile{
		{
			filename:    fmt.Sprintf("crypto_data_%s.json", ds.CaptureDate),
			contentType: "application/json",
			write:       func(path string) error { return writeJSONFile(path, ds.Enhanced) },
		},
		{
			filename:    fmt.Sprintf("crypto_data_%s.csv", ds.CaptureDate),
			contentType: "text/csv",
			write:       func(path string) error { return writeEnhancedCSV(path, ds.Enhanced) },
		},
		{
			filename:    fmt.Sprintf("processed_crypto_data_%s.csv", ds.CaptureDate),
			contentType: "text/csv",
			write:       func(path string) error { return writeNormalizedCSV(path, ds.Normalized) },
		},
		{
			filename:    fmt.Sprintf("top_10_positive_%s.csv", ds.CaptureDate),
			contentType: "text/csv",
			write: func(path string) error {
				return writeRankedCSV(path, "gainer_rank", ds.Gainers, func(c models.RankedCoin) int { return c.GainerRank })
			},
		},
		{
			filename:    fmt.Sprintf("top_10_negative_%s.csv", ds.CaptureDate),
			contentType: "text/csv",
			write: func(path string) error {
				return writeRankedCSV(path, "loser_rank", ds.Losers, func(c models.RankedCoin) int { return c.LoserRank })
			},
		},
	}

	if w.config.Storage.Local.ParquetEnabled {
		files = append(files, datasetFile{
			filename:    fmt.Sprintf("processed_crypto_data_%s.parquet", ds.CaptureDate),
			contentType: "application/octet-stream",
			write: func(path string) error {
				return writeParquetFile(path, ds.Normalized, w.config.Storage.Local.ParquetCompression)
			},
		})
	}

	if ds.Summary != nil {
		files = append(files, datasetFile{
			filename:    fmt.Sprintf("market_summary_%s.json", ds.CaptureDate),
			contentType: "application/json",
			write:       func(path string) error { return writeJSONFile(path, ds.Summary) },
		})
	} else {
		log.Warn("no market summary produced, skipping summary file")
	}

	start := time.Now()
	var errs []error
	written := 0
	for _, file := range files {
		path := filepath.Join(dir, file.filename)
		if err := file.write(path); err != nil {
			log.WithError(err).WithFields(logger.Fields{"file": file.filename}).Error("failed to write dataset file")
			errs = append(errs, err)
			continue
		}
		written++

		if w.uploader == nil {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("read back %s: %w", path, err))
			continue
		}
		if err := w.uploader.Upload(ctx, ds.CaptureDate, file.filename, data, file.contentType); err != nil {
			log.WithError(err).WithFields(logger.Fields{"file": file.filename}).Error("failed to upload dataset file")
			errs = append(errs, err)
		}
	}

	logger.LogPerformanceEntry(log, "dataset_writer", "write_all", time.Since(start), logger.Fields{
		"files_written": written,
		"files_failed":  len(errs),
	})
	logger.LogDataFlowEntry(log, "pipeline", "local_storage", written, "dataset_files")
	w.log.LogMetric("dataset_writer", "datasets_written", int64(written), "counter", logger.Fields{
		"capture_date": ds.CaptureDate,
	})

	log.WithFields(logger.Fields{
		"files_written": written,
		"files_failed":  len(errs),
		"directory":     dir,
	}).Info("datasets persisted")

	return errors.Join(errs...)
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
