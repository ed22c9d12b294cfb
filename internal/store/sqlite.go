package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/i474232898/weather-daylight-etl/internal/weather"
)

const sqliteBatchSize = 100

// SQLiteSink keeps the final table in a SQLite database. Each write replaces
// the table content in a single transaction.
type SQLiteSink struct {
	db *gorm.DB
}

// NewSQLiteSink opens (or creates) the database at path and migrates the schema.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&weather.FinalRow{}); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", weather.FinalRow{}.TableName(), err)
	}
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Name() string {
	return "sqlite"
}

// Write replaces the stored table with rows.
func (s *SQLiteSink) Write(ctx context.Context, rows []weather.FinalRow) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&weather.FinalRow{}).Error; err != nil {
			return fmt.Errorf("clear %s: %w", weather.FinalRow{}.TableName(), err)
		}
		if len(rows) == 0 {
			return nil
		}
		// gorm writes generated keys back; keep the caller's rows untouched.
		batch := make([]weather.FinalRow, len(rows))
		copy(batch, rows)
		for i := range batch {
			batch[i].ID = 0
		}
		if err := tx.CreateInBatches(batch, sqliteBatchSize).Error; err != nil {
			return fmt.Errorf("insert rows: %w", err)
		}
		return nil
	})
}

// Count returns the number of stored rows.
func (s *SQLiteSink) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&weather.FinalRow{}).Count(&n).Error
	return n, err
}

// Close releases the database handle.
func (s *SQLiteSink) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
