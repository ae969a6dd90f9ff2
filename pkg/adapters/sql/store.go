// Package sql stores recipient records in a relational database through gorm.
// Postgres is used for URL or key/value DSNs, SQLite for everything else.
package sql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/recipient/internal/logging"
	"github.com/aretw0/recipient/pkg/domain"
	"github.com/aretw0/recipient/pkg/ports"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"
)

// Row is the table layout of a recipient record.
type Row struct {
	ID            string `gorm:"primaryKey;size:64"`
	FirstName     string `gorm:"not null"`
	MiddleName    string `gorm:"not null;default:''"`
	LastName      string `gorm:"not null"`
	AccountNumber string `gorm:"not null;size:64"`
	UpdatedAt     time.Time
}

// TableName pins the table name regardless of naming strategy.
func (Row) TableName() string { return "recipients" }

// Store implements ports.RecipientStore over gorm.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Option configures Open.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	logLevel gormLogger.LogLevel
}

// WithLogger sets the logger used for store events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithQueryLogging turns on gorm's SQL trace.
func WithQueryLogging() Option {
	return func(o *options) {
		o.logLevel = gormLogger.Info
	}
}

// Open connects to dsn and migrates the recipients table.
func Open(dsn string, opts ...Option) (*Store, error) {
	o := options{logger: logging.NewNop(), logLevel: gormLogger.Silent}
	for _, opt := range opts {
		opt(&o)
	}

	dialector, driver := dialectorFor(dsn)
	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(o.logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	if driver == "sqlite" {
		// A single connection keeps in-memory databases alive and serializes writers.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	store, err := New(db, o.logger)
	if err != nil {
		return nil, err
	}
	o.logger.Info("sql store ready", "driver", driver)
	return store, nil
}

// New wraps an open connection and migrates the recipients table.
func New(db *gorm.DB, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := db.AutoMigrate(&Row{}); err != nil {
		return nil, fmt.Errorf("failed to migrate recipients: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

func dialectorFor(dsn string) (gorm.Dialector, string) {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	if strings.HasPrefix(lower, "postgres://") ||
		strings.HasPrefix(lower, "postgresql://") ||
		strings.Contains(lower, "host=") {
		return postgres.Open(dsn), "postgres"
	}
	return sqlite.Open(dsn), "sqlite"
}

// Save upserts the record.
func (s *Store) Save(ctx context.Context, record *ports.Record) error {
	if record == nil || record.ID == "" {
		return errors.New("sql store: record id is required")
	}
	row := Row{
		ID:            record.ID,
		FirstName:     record.FirstName,
		MiddleName:    record.MiddleName,
		LastName:      record.LastName,
		AccountNumber: record.AccountNumber,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save recipient %s: %w", record.ID, err)
	}
	return nil
}

// Load reads one record.
func (s *Store) Load(ctx context.Context, recipientID string) (*ports.Record, error) {
	var row Row
	err := s.db.WithContext(ctx).Where("id = ?", recipientID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRecipientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load recipient %s: %w", recipientID, err)
	}
	return &ports.Record{
		ID:            row.ID,
		FirstName:     row.FirstName,
		MiddleName:    row.MiddleName,
		LastName:      row.LastName,
		AccountNumber: row.AccountNumber,
	}, nil
}

// Delete removes one record.
func (s *Store) Delete(ctx context.Context, recipientID string) error {
	err := s.db.WithContext(ctx).Where("id = ?", recipientID).Delete(&Row{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete recipient %s: %w", recipientID, err)
	}
	return nil
}

// List returns the stored ids in order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&Row{}).Order("id").Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recipients: %w", err)
	}
	return ids, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
