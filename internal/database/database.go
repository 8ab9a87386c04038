// Package database provides SQLite connection management for the report store.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"reportdesk/internal/config"
	"reportdesk/internal/observability"
	contextutils "reportdesk/internal/utils"

	// Import SQLite driver for database/sql
	_ "github.com/mattn/go-sqlite3"

	// OpenTelemetry SQL instrumentation
	"go.nhat.io/otelsql"

	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// Manager handles database connections with proper logging
type Manager struct {
	logger *observability.Logger
}

var (
	otelDriverNameCache string
	otelDriverOnce      sync.Once
	otelDriverErr       error
)

// NewManager creates a new database manager with the provided logger
func NewManager(logger *observability.Logger) *Manager {
	return &Manager{
		logger: logger,
	}
}

// DefaultDatabaseConfig returns the default database configuration
func DefaultDatabaseConfig() config.DatabaseConfig {
	cfg := config.DatabaseConfig{
		Path:            "reports.db",
		MaxOpenConns:    config.DefaultMaxOpenConns,
		MaxIdleConns:    config.DefaultMaxIdleConns,
		ConnMaxLifetime: config.DatabaseConnMaxLifetime,
		BusyTimeout:     config.DatabaseBusyTimeout,
	}

	// Check for TEST_DATABASE_PATH first (for tests)
	if testPath := os.Getenv("TEST_DATABASE_PATH"); testPath != "" {
		cfg.Path = testPath
	}

	return cfg
}

// InitDB initializes and returns a database connection for the given file path
func (dm *Manager) InitDB(path string) (result0 *sql.DB, err error) {
	_, span := observability.TraceDatabaseFunction(context.Background(), "InitDB",
		attribute.String("db.path", path),
		attribute.String("db.name", databaseName(path)),
		attribute.String("db.system", "sqlite"),
	)
	defer observability.FinishSpan(span, &err)
	cfg := DefaultDatabaseConfig()
	cfg.Path = path
	return dm.InitDBWithConfig(cfg)
}

// InitDBWithConfig initializes and returns a database connection with custom config
func (dm *Manager) InitDBWithConfig(cfg config.DatabaseConfig) (result0 *sql.DB, err error) {
	cfg = withPoolDefaults(cfg)
	ctx, span := observability.TraceDatabaseFunction(context.Background(), "InitDBWithConfig",
		attribute.String("db.path", cfg.Path),
		attribute.String("db.name", databaseName(cfg.Path)),
		attribute.String("db.system", "sqlite"),
		attribute.Int("db.max_open_conns", cfg.MaxOpenConns),
		attribute.Int("db.max_idle_conns", cfg.MaxIdleConns),
		attribute.String("db.conn_max_lifetime", cfg.ConnMaxLifetime.String()),
	)
	defer observability.FinishSpan(span, &err)

	if cfg.Path == "" {
		return nil, contextutils.ErrorWithContextf("database path is empty")
	}

	// Register OpenTelemetry SQL driver once per process and reuse the name
	otelDriverOnce.Do(func() {
		otelDriverNameCache, otelDriverErr = otelsql.Register("sqlite3",
			otelsql.WithDatabaseName(databaseName(cfg.Path)),
			otelsql.TraceQueryWithArgs(),
			otelsql.WithSystem(semconv.DBSystemSqlite),
			otelsql.TraceRowsAffected(),
		)
	})
	if otelDriverErr != nil {
		return nil, contextutils.WrapError(otelDriverErr, "failed to register otelsql driver")
	}

	// The database file's directory must exist before the driver can create the file
	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if mkdirErr := os.MkdirAll(dir, 0o755); mkdirErr != nil {
			return nil, contextutils.WrapError(mkdirErr, "failed to create database directory")
		}
	}

	// Connect to the database using the instrumented driver
	db, err := sql.Open(otelDriverNameCache, BuildDSN(cfg))
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to open database connection")
	}

	// Set connection pool settings
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Test the connection
	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			dm.logger.Error(ctx, "Failed to close database connection after ping failure", closeErr)
		}
		return nil, contextutils.WrapError(err, "failed to ping database")
	}

	dm.logger.Info(ctx, "Database connection established", map[string]interface{}{
		"path":              cfg.Path,
		"max_open_conns":    cfg.MaxOpenConns,
		"max_idle_conns":    cfg.MaxIdleConns,
		"conn_max_lifetime": cfg.ConnMaxLifetime,
		"busy_timeout":      cfg.BusyTimeout,
	})

	return db, nil
}

// withPoolDefaults fills in pool settings the config file may leave unset.
// Duration fields in particular cannot be expressed in YAML and arrive as zero
// unless set through the environment.
func withPoolDefaults(cfg config.DatabaseConfig) config.DatabaseConfig {
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = config.DefaultMaxOpenConns
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = config.DefaultMaxIdleConns
	}
	if cfg.ConnMaxLifetime <= 0 {
		cfg.ConnMaxLifetime = config.DatabaseConnMaxLifetime
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = config.DatabaseBusyTimeout
	}
	return cfg
}

// BuildDSN renders a mattn/go-sqlite3 DSN for the configured database file.
// The _busy_timeout parameter makes concurrent writers wait for the lock
// instead of failing immediately with SQLITE_BUSY.
func BuildDSN(cfg config.DatabaseConfig) string {
	busyTimeout := cfg.BusyTimeout
	if busyTimeout <= 0 {
		busyTimeout = config.DatabaseBusyTimeout
	}
	return fmt.Sprintf("file:%s?_busy_timeout=%d", cfg.Path, busyTimeout.Milliseconds())
}

// databaseName derives the logical database name from the SQLite file path
func databaseName(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." || name == string(filepath.Separator) {
		// Default fallback
		return "reports"
	}
	return name
}
