// Package main provides the main entry point for the report service admin CLI tool.
package main

import (
	"context"
	"fmt"
	"os"

	"reportdesk/cmd/adm/commands"
	"reportdesk/internal/config"
	"reportdesk/internal/database"
	"reportdesk/internal/observability"
	"reportdesk/internal/services"
	"reportdesk/internal/store"

	"github.com/spf13/cobra"
)

func main() {
	ctx := context.Background()

	// Set default config file if not already set
	if os.Getenv("REPORTDESK_CONFIG_FILE") == "" {
		// Try to find the config file in common locations
		defaultPaths := []string{
			"config.yaml",       // Current directory
			"../config.yaml",    // From cmd/adm/
			"../../config.yaml", // From cmd/adm/ (alternative)
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := os.Setenv("REPORTDESK_CONFIG_FILE", path); err != nil {
					fmt.Fprintf(os.Stderr, "Failed to set REPORTDESK_CONFIG_FILE environment variable: %v\n", err)
					os.Exit(1)
				}
				break
			}
		}
	}

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Override log level for admin tool
	cfg.Server.LogLevel = "error"

	// Disable all OpenTelemetry features for the CLI to avoid connection errors
	cfg.OpenTelemetry.EnableTracing = false
	cfg.OpenTelemetry.EnableMetrics = false
	cfg.OpenTelemetry.EnableLogging = false

	// Setup observability; with everything disabled this only yields the logger
	_, _, logger, err := observability.SetupObservability(&cfg.OpenTelemetry, "reportdesk-admin")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}

	// Initialize database manager and open the database
	dbManager := database.NewManager(logger)
	db, err := dbManager.InitDBWithConfig(cfg.Database)
	if err != nil {
		logger.Error(ctx, "Failed to connect to database", err, map[string]interface{}{"db_path": cfg.Database.Path})
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn(ctx, "Warning: failed to close database connection", map[string]interface{}{"error": err.Error(), "db_path": cfg.Database.Path})
		}
	}()

	// Ensure the schema exists so the CLI works against a fresh database file
	reportStore := store.NewReportStore(db, logger)
	if err := reportStore.Initialize(ctx); err != nil {
		logger.Error(ctx, "Failed to initialize report store", err, nil)
		os.Exit(1)
	}

	// Initialize services
	attachments := services.NewAttachmentService(cfg.Storage.UploadsDir, logger)
	reportService := services.NewReportService(reportStore, attachments, logger)

	var renderer services.PDFRenderer
	if cfg.Export.PDFEnabled {
		renderer = services.NewGofpdfRenderer()
	}
	exportService := services.NewExportService(renderer, logger)

	// Create the root command
	rootCmd := &cobra.Command{
		Use:   "adm",
		Short: "Report Service Administration Tool",
		Long: `Report Service Administration Tool

A CLI tool for working with the report database directly.
Provides commands for listing and inspecting reports, triaging statuses,
showing aggregate statistics, and exporting without the HTTP API.`,

		Run: func(cmd *cobra.Command, _ []string) {
			// Show help if no subcommand provided
			if err := cmd.Help(); err != nil {
				fmt.Printf("Error showing help: %v\n", err)
			}
		},
	}

	// Add subcommands with initialized services
	rootCmd.AddCommand(commands.ReportCommands(reportService, logger, cfg.Database.Path))
	rootCmd.AddCommand(commands.StatusCommands(reportService, logger))
	rootCmd.AddCommand(commands.StatsCommand(reportService, logger))
	rootCmd.AddCommand(commands.ExportCommands(reportService, exportService, logger))

	// Execute the command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
