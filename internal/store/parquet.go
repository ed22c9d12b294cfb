package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/i474232898/weather-daylight-etl/internal/weather"
)

// ParquetSink writes the final table as a SNAPPY compressed Parquet file.
type ParquetSink struct {
	path string
}

// NewParquetSink creates a sink writing to path.
func NewParquetSink(path string) *ParquetSink {
	return &ParquetSink{path: path}
}

func (s *ParquetSink) Name() string {
	return "parquet"
}

// Write replaces the file at the sink path with rows.
func (s *ParquetSink) Write(ctx context.Context, rows []weather.FinalRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	defer f.Close()

	pw, err := writer.NewParquetWriterFromWriter(f, new(weather.FinalRow), 1)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i := range rows {
		if err := pw.Write(rows[i]); err != nil {
			return fmt.Errorf("write parquet row %d: %w", i, err)
		}
	}
	if err := writeStop(pw); err != nil {
		return err
	}
	return f.Close()
}

// writeStop flushes the footer. WriteStop can panic on malformed rows, so the
// panic is turned into an error.
func writeStop(pw *writer.ParquetWriter) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("stop parquet writer: panic: %v", r)
		}
	}()
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("stop parquet writer: %w", err)
	}
	return nil
}
