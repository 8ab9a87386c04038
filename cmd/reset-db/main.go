// Package main provides a small CLI utility to reset the report database to a
// clean state. It is intended for local development and testing only and will
// permanently delete all data when run.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"reportdesk/internal/config"
	"reportdesk/internal/database"
	"reportdesk/internal/observability"
	"reportdesk/internal/store"
)

// fatalIfErr logs the error with context and exits
func fatalIfErr(ctx context.Context, logger *observability.Logger, msg string, err error, fields map[string]interface{}) {
	logger.Error(ctx, msg, err, fields)
	os.Exit(1)
}

func main() {
	ctx := context.Background()

	// Load configuration first
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Disable all OpenTelemetry features for the CLI to avoid connection errors
	cfg.OpenTelemetry.EnableTracing = false
	cfg.OpenTelemetry.EnableMetrics = false
	cfg.OpenTelemetry.EnableLogging = false

	_, _, logger, err := observability.SetupObservability(&cfg.OpenTelemetry, "reset-db")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("⚠️  DATABASE RESET UTILITY ⚠️")
	fmt.Println("=============================")
	fmt.Println("This will PERMANENTLY DELETE ALL DATA in the report database!")
	fmt.Println("This includes:")
	fmt.Println("- All reports and their statuses")
	fmt.Println("- All stored attachment path references")
	fmt.Println("")
	fmt.Println("Uploaded attachment files under the uploads directory are NOT removed.")
	fmt.Println("")

	if cfg.Database.Path == "" {
		fatalIfErr(ctx, logger, "Database path is empty", nil, map[string]interface{}{"error": "Database path is empty. Cannot proceed with reset."})
	}

	// Print database info
	fmt.Println("📊 Database Information:")
	fmt.Printf("Path: %s\n", cfg.Database.Path)
	fmt.Println("")

	// Confirm with user
	if !confirmReset() {
		fmt.Println("Reset cancelled.")
		return
	}

	// Initialize database manager with logger
	dbManager := database.NewManager(logger)

	// Initialize database connection with configuration
	db, err := dbManager.InitDBWithConfig(cfg.Database)
	if err != nil {
		fatalIfErr(ctx, logger, "Failed to connect to database", err, map[string]interface{}{"db_path": cfg.Database.Path})
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn(ctx, "Warning: failed to close database connection", map[string]interface{}{"error": err.Error(), "db_path": cfg.Database.Path})
		}
	}()

	// Drop and recreate the schema
	fmt.Println("🗑️  Dropping and recreating the reports table...")
	logger.Info(ctx, "Resetting report schema", map[string]interface{}{"db_path": cfg.Database.Path, "service": "reset-db"})

	reportStore := store.NewReportStore(db, logger)
	if err := reportStore.Reset(ctx); err != nil {
		fatalIfErr(ctx, logger, "Failed to reset report schema", err, map[string]interface{}{"db_path": cfg.Database.Path})
	}

	fmt.Println("✅ Report schema recreated successfully!")
	fmt.Println("")
	fmt.Println("✅ Database is now ready to use!")
	fmt.Println("- You can now start the server or use the existing running instance")
}

func confirmReset() bool {
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print("Are you sure you want to reset the database? (type 'yes' to confirm): ")
		response, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println("Error reading input:", err)
			continue
		}

		response = strings.TrimSpace(strings.ToLower(response))

		switch response {
		case "yes":
			return true
		case "no", "":
			return false
		default:
			fmt.Println("Please type 'yes' to confirm or 'no' to cancel.")
		}
	}
}
