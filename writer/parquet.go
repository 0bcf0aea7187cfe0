package writer

import (
	"bytes"
	"fmt"
	"os"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	parquetwriter "github.com/xitongsys/parquet-go/writer"

	"github.com/ericmaniraguh/crypto-price-tracker/models"
)

// ParquetCoin is the parquet row shape for the processed snapshot. Optional
// market fields stay nullable instead of collapsing to zero values.
type ParquetCoin struct {
	Number         int32    `parquet:"name=number, type=INT32"`
	Rank           *int32   `parquet:"name=rank, type=INT32, repetitiontype=OPTIONAL"`
	ID             string   `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Name           string   `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Symbol         string   `parquet:"name=symbol, type=BYTE_ARRAY, convertedtype=UTF8"`
	CurrentPrice   *float64 `parquet:"name=current_price, type=DOUBLE, repetitiontype=OPTIONAL"`
	PriceChange24h float64  `parquet:"name=price_change_24h, type=DOUBLE"`
	ChangeSymbol   string   `parquet:"name=change_symbol, type=BYTE_ARRAY, convertedtype=UTF8"`
	MarketCap      *float64 `parquet:"name=market_cap, type=DOUBLE, repetitiontype=OPTIONAL"`
	Volume24h      *float64 `parquet:"name=volume_24h, type=DOUBLE, repetitiontype=OPTIONAL"`
	ATH            *float64 `parquet:"name=ath, type=DOUBLE, repetitiontype=OPTIONAL"`
	Image          string   `parquet:"name=image, type=BYTE_ARRAY, convertedtype=UTF8"`
	Date           string   `parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8"`
	LastUpdated    string   `parquet:"name=last_updated, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// memoryFileWriter implements the ParquetFile interface for in-memory writing.
type memoryFileWriter struct {
	buffer *bytes.Buffer
}

func newMemoryFileWriter() *memoryFileWriter {
	return &memoryFileWriter{buffer: &bytes.Buffer{}}
}

func (mfw *memoryFileWriter) Create(name string) (source.ParquetFile, error) { return mfw, nil }
func (mfw *memoryFileWriter) Open(name string) (source.ParquetFile, error)   { return mfw, nil }

func (mfw *memoryFileWriter) Seek(offset int64, whence int) (int64, error) {
	// Write-only usage, no seeking required.
	return int64(mfw.buffer.Len()), nil
}

func (mfw *memoryFileWriter) Read(b []byte) (int, error)  { return mfw.buffer.Read(b) }
func (mfw *memoryFileWriter) Write(b []byte) (int, error) { return mfw.buffer.Write(b) }
func (mfw *memoryFileWriter) Close() error                { return nil }
func (mfw *memoryFileWriter) Bytes() []byte               { return mfw.buffer.Bytes() }

// buildParquet renders the processed snapshot as a parquet file in memory.
func buildParquet(coins []models.NormalizedCoin, compression string) ([]byte, error) {
	fw := newMemoryFileWriter()

	pw, err := parquetwriter.NewParquetWriter(fw, new(ParquetCoin), 4)
	if err != nil {
		return nil, fmt.Errorf("create parquet writer: %w", err)
	}

	switch compression {
	case "snappy":
		pw.CompressionType = parquet.CompressionCodec_SNAPPY
	case "gzip":
		pw.CompressionType = parquet.CompressionCodec_GZIP
	default:
		pw.CompressionType = parquet.CompressionCodec_UNCOMPRESSED
	}

	for _, c := range coins {
		record := ParquetCoin{
			Number:         int32(c.Number),
			Rank:           int32Ptr(c.Rank),
			ID:             c.ID,
			Name:           c.Name,
			Symbol:         c.Symbol,
			CurrentPrice:   c.CurrentPrice,
			PriceChange24h: c.PriceChange24h,
			ChangeSymbol:   string(c.ChangeSymbol),
			MarketCap:      c.MarketCap,
			Volume24h:      c.Volume24h,
			ATH:            c.ATH,
			Image:          c.Image,
			Date:           c.Date,
			LastUpdated:    c.LastUpdated,
		}
		if err := pw.Write(record); err != nil {
			pw.WriteStop()
			return nil, fmt.Errorf("write parquet record: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("finalize parquet writing: %w", err)
	}

	return fw.Bytes(), nil
}

func writeParquetFile(path string, coins []models.NormalizedCoin, compression string) error {
	data, err := buildParquet(coins, compression)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func int32Ptr(v *int) *int32 {
	if v == nil {
		return nil
	}
	c := int32(*v)
	return &c
}
