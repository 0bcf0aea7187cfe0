package writer

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	appconfig "github.com/ericmaniraguh/crypto-price-tracker/config"
	"github.com/ericmaniraguh/crypto-price-tracker/models"
)

func testWriterConfig(dir string, parquet bool) *appconfig.Config {
	cfg := &appconfig.Config{}
	cfg.Storage.Local.Directory = dir
	cfg.Storage.Local.ParquetEnabled = parquet
	cfg.Storage.Local.ParquetCompression = "snappy"
	return cfg
}

func testDatasets() Datasets {
	price := 64250.12
	rank := 1
	raw := models.RawCoin{
		ID:            "bitcoin",
		Symbol:        "btc",
		Name:          "Bitcoin",
		CurrentPrice:  &price,
		MarketCapRank: &rank,
	}
	normalized := models.NormalizedCoin{
		ID:             "bitcoin",
		Rank:           &rank,
		Name:           "Bitcoin",
		Symbol:         "BTC",
		CurrentPrice:   &price,
		PriceChange24h: 2.41,
		ChangeSymbol:   models.ChangeUp,
		Date:           "02-05-2025",
		Number:         1,
	}
	loser := normalized
	loser.ID = "ethereum"
	loser.Name = "Ethereum"
	loser.Symbol = "ETH"
	loser.PriceChange24h = -1.2
	loser.ChangeSymbol = models.ChangeDown

	return Datasets{
		CaptureDate: "02-05-2025",
		Enhanced: []models.EnhancedCoin{{
			RawCoin:        raw,
			Date:           "02-05-2025",
			PriceChange24h: 2.41,
			ChangeSymbol:   models.ChangeUp,
		}},
		Normalized: []models.NormalizedCoin{normalized, loser},
		Gainers:    []models.RankedCoin{{NormalizedCoin: normalized, GainerRank: 1}},
		Losers:     []models.RankedCoin{{NormalizedCoin: loser, LoserRank: 1}},
		Summary: &models.MarketSummary{
			TotalCoins:   2,
			GainersCount: 1,
			LosersCount:  1,
			TopGainer:    &normalized,
			TopLoser:     &loser,
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return records
}

func TestWriteAllProducesDatasetFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewDatasetWriter(context.Background(), testWriterConfig(dir, true))
	if err != nil {
		t.Fatalf("new dataset writer: %v", err)
	}

	if err := w.WriteAll(context.Background(), testDatasets()); err != nil {
		t.Fatalf("write all: %v", err)
	}

	wantFiles := []string{
		"crypto_data_02-05-2025.json",
		"crypto_data_02-05-2025.csv",
		"processed_crypto_data_02-05-2025.csv",
		"processed_crypto_data_02-05-2025.parquet",
		"top_10_positive_02-05-2025.csv",
		"top_10_negative_02-05-2025.csv",
		"market_summary_02-05-2025.json",
	}
	for _, name := range wantFiles {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
}

func TestWriteAllCSVContent(t *testing.T) {
	dir := t.TempDir()
	w, err := NewDatasetWriter(context.Background(), testWriterConfig(dir, false))
	if err != nil {
		t.Fatalf("new dataset writer: %v", err)
	}
	if err := w.WriteAll(context.Background(), testDatasets()); err != nil {
		t.Fatalf("write all: %v", err)
	}

	processed := readCSV(t, filepath.Join(dir, "processed_crypto_data_02-05-2025.csv"))
	if len(processed) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(processed))
	}
	if processed[0][0] != "number" || processed[0][1] != "rank" {
		t.Fatalf("unexpected header: %v", processed[0])
	}
	if processed[1][2] != "bitcoin" || processed[1][6] != "2.41" {
		t.Fatalf("unexpected first row: %v", processed[1])
	}

	gainers := readCSV(t, filepath.Join(dir, "top_10_positive_02-05-2025.csv"))
	if gainers[0][0] != "gainer_rank" {
		t.Fatalf("expected gainer_rank column, got %v", gainers[0])
	}
	if gainers[1][0] != "1" || gainers[1][3] != "bitcoin" {
		t.Fatalf("unexpected gainer row: %v", gainers[1])
	}

	losers := readCSV(t, filepath.Join(dir, "top_10_negative_02-05-2025.csv"))
	if losers[0][0] != "loser_rank" {
		t.Fatalf("expected loser_rank column, got %v", losers[0])
	}
}

func TestWriteAllEmptySnapshot(t *testing.T) {
	dir := t.TempDir()
	w, err := NewDatasetWriter(context.Background(), testWriterConfig(dir, false))
	if err != nil {
		t.Fatalf("new dataset writer: %v", err)
	}

	ds := Datasets{CaptureDate: "02-05-2025"}
	if err := w.WriteAll(context.Background(), ds); err != nil {
		t.Fatalf("write all: %v", err)
	}

	// No summary file without a summary.
	if _, err := os.Stat(filepath.Join(dir, "market_summary_02-05-2025.json")); !os.IsNotExist(err) {
		t.Fatalf("summary file should not exist, got %v", err)
	}

	// CSVs still appear, header only.
	processed := readCSV(t, filepath.Join(dir, "processed_crypto_data_02-05-2025.csv"))
	if len(processed) != 1 {
		t.Fatalf("expected header-only csv, got %d rows", len(processed))
	}

	var enhanced []models.EnhancedCoin
	data, err := os.ReadFile(filepath.Join(dir, "crypto_data_02-05-2025.json"))
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	if err := json.Unmarshal(data, &enhanced); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}
	if len(enhanced) != 0 {
		t.Fatalf("expected empty json array, got %d", len(enhanced))
	}
}

type recordingUploader struct {
	files map[string]string
}

func (r *recordingUploader) Upload(ctx context.Context, captureDate, filename string, data []byte, contentType string) error {
	if r.files == nil {
		r.files = make(map[string]string)
	}
	r.files[filename] = contentType
	return nil
}

func TestWriteAllMirrorsToUploader(t *testing.T) {
	dir := t.TempDir()
	w, err := NewDatasetWriter(context.Background(), testWriterConfig(dir, false))
	if err != nil {
		t.Fatalf("new dataset writer: %v", err)
	}
	rec := &recordingUploader{}
	w.uploader = rec

	if err := w.WriteAll(context.Background(), testDatasets()); err != nil {
		t.Fatalf("write all: %v", err)
	}

	if got := rec.files["market_summary_02-05-2025.json"]; got != "application/json" {
		t.Fatalf("expected summary upload as json, got %q", got)
	}
	if got := rec.files["processed_crypto_data_02-05-2025.csv"]; got != "text/csv" {
		t.Fatalf("expected csv upload, got %q", got)
	}
	if len(rec.files) != 6 {
		t.Fatalf("expected 6 uploads, got %d", len(rec.files))
	}
}

func TestGenerateKey(t *testing.T) {
	u := &s3Uploader{prefix: "crypto"}
	if got := u.generateKey("02-05-2025", "crypto_data_02-05-2025.json"); got != "crypto/date=02-05-2025/crypto_data_02-05-2025.json" {
		t.Fatalf("unexpected key: %q", got)
	}

	u.prefix = ""
	if got := u.generateKey("02-05-2025", "a.csv"); got != "date=02-05-2025/a.csv" {
		t.Fatalf("unexpected key: %q", got)
	}
}
