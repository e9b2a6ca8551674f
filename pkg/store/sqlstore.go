package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite driver
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config holds database connection settings
type Config struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	ConnTimeout  time.Duration
}

// DefaultConfig returns sensible defaults (in-memory sqlite for development)
func DefaultConfig() Config {
	return Config{
		Driver:       DriverSQLite,
		DSN:          "file:courseapi.db?_foreign_keys=on",
		MaxOpenConns: 20,
		MaxIdleConns: 2,
		ConnTimeout:  10 * time.Second,
	}
}

// SQLStore implements Store on database/sql with postgres and sqlite
// dialects. Placeholders use the $N form, which both drivers accept.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// Open connects to the configured database and verifies the connection
func Open(cfg Config) (*SQLStore, error) {
	switch cfg.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(1 * time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLStore{db: db, driver: cfg.Driver}, nil
}

// NewSQLStore wraps an existing connection (used by tests)
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

// HealthCheck verifies the database is reachable
func (s *SQLStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying connection pool
func (s *SQLStore) Close() error {
	return s.db.Close()
}
