package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/serroba/shortlink/internal/shortener"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// mappingRecord is the GORM model of the url_mappings table.
type mappingRecord struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Code        string    `gorm:"not null;uniqueIndex:idx_url_mappings_code"`
	LongURL     string    `gorm:"not null"`
	LongURLHash string    `gorm:"not null;uniqueIndex:idx_url_mappings_long_url_hash"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (mappingRecord) TableName() string {
	return "url_mappings"
}

func (r *mappingRecord) toMapping() *shortener.Mapping {
	return &shortener.Mapping{
		ID:        r.ID,
		LongURL:   r.LongURL,
		Code:      shortener.Code(r.Code),
		CreatedAt: r.CreatedAt,
	}
}

// SQLiteStore is a SQLite implementation of shortener.Repository.
// It keeps a single open connection, so every write is serialised.
type SQLiteStore struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and migrates the schema.
// Use ":memory:" for a throwaway database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("could not open SQLite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("could not access SQLite handle: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&mappingRecord{}); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("could not migrate SQLite schema: %w", err)
	}

	return &SQLiteStore{db: db, sqlDB: sqlDB}, nil
}

func (s *SQLiteStore) FindByLongURL(ctx context.Context, longURL string) (*shortener.Mapping, error) {
	var rec mappingRecord

	err := s.db.WithContext(ctx).
		Where("long_url_hash = ? AND long_url = ?", string(shortener.HashURL(longURL)), longURL).
		Take(&rec).Error
	if err != nil {
		return nil, translateNotFound("sqlite find by long url", err)
	}

	return rec.toMapping(), nil
}

func (s *SQLiteStore) Exists(ctx context.Context, code shortener.Code) (bool, error) {
	var count int64

	err := s.db.WithContext(ctx).Model(&mappingRecord{}).Where("code = ?", string(code)).Count(&count).Error
	if err != nil {
		return false, shortener.StorageError("sqlite exists", err)
	}

	return count > 0, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, m *shortener.Mapping) error {
	rec := mappingRecord{
		Code:        string(m.Code),
		LongURL:     m.LongURL,
		LongURLHash: string(shortener.HashURL(m.LongURL)),
		CreatedAt:   time.Now().UTC(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := conflictIn(tx, "code = ?", rec.Code, shortener.ErrDuplicateCode); err != nil {
			return err
		}

		if err := conflictIn(tx, "long_url_hash = ?", rec.LongURLHash, shortener.ErrDuplicateURL); err != nil {
			return err
		}

		return tx.Create(&rec).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, shortener.ErrDuplicateCode), errors.Is(err, shortener.ErrDuplicateURL):
			return err
		case errors.Is(err, gorm.ErrDuplicatedKey):
			// Another process sharing the file won the race.
			return shortener.ErrDuplicateCode
		}

		return shortener.StorageError("sqlite insert", err)
	}

	m.ID = rec.ID
	m.CreatedAt = rec.CreatedAt

	return nil
}

func (s *SQLiteStore) FindByCode(ctx context.Context, code shortener.Code) (*shortener.Mapping, error) {
	var rec mappingRecord

	if err := s.db.WithContext(ctx).Where("code = ?", string(code)).Take(&rec).Error; err != nil {
		return nil, translateNotFound("sqlite find by code", err)
	}

	return rec.toMapping(), nil
}

// Ping checks that the database handle is usable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// Shutdown closes the database.
func (s *SQLiteStore) Shutdown() error {
	return s.sqlDB.Close()
}

func conflictIn(tx *gorm.DB, cond, value string, conflict error) error {
	var count int64

	if err := tx.Model(&mappingRecord{}).Where(cond, value).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return conflict
	}

	return nil
}

func translateNotFound(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shortener.ErrNotFound
	}

	return shortener.StorageError(op, err)
}

var _ shortener.Repository = (*SQLiteStore)(nil)
