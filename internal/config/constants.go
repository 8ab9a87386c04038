package config

import "time"

// Timeout constants
const (
	// HTTP timeouts
	ServerShutdownTimeout = 30 * time.Second

	// Database timeouts
	DatabaseConnMaxLifetime = 5 * time.Minute
	DatabaseBusyTimeout     = 5 * time.Second
)

// Upload constants
const (
	// DefaultMaxUploadBytes caps a single attachment at 16 MiB unless
	// overridden in configuration.
	DefaultMaxUploadBytes int64 = 16 << 20
)

// Database pool constants
const (
	DefaultMaxOpenConns = 1
	DefaultMaxIdleConns = 1
)

// Security configuration constants
const (
	// Content Security Policy
	DefaultCSP = "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self' 'unsafe-inline'; img-src 'self' data:;"
)
