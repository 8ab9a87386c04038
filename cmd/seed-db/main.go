// Package main provides a utility to seed the report database with sample
// data for local development. Without a seed file it loads a built-in set
// covering every category, priority and status.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"reportdesk/internal/config"
	"reportdesk/internal/database"
	"reportdesk/internal/models"
	"reportdesk/internal/observability"
	"reportdesk/internal/store"
	contextutils "reportdesk/internal/utils"

	"gopkg.in/yaml.v3"
)

// SeedReport is one sample report in a seed file
type SeedReport struct {
	ReporterName  string `yaml:"reporter_name"`
	ReporterEmail string `yaml:"reporter_email"`
	Title         string `yaml:"title"`
	Category      string `yaml:"category"`
	Priority      string `yaml:"priority"`
	Description   string `yaml:"description"`
	Status        string `yaml:"status"`
	// DaysAgo backdates created_at so seeded data produces a trend
	DaysAgo int `yaml:"days_ago"`
}

// SeedFile is the top-level structure of a seed file
type SeedFile struct {
	Reports []SeedReport `yaml:"reports"`
}

func main() {
	seedFile := flag.String("file", "", "YAML seed file (uses built-in samples when empty)")
	reset := flag.Bool("reset", false, "Drop and recreate the reports table before seeding")
	flag.Parse()

	ctx := context.Background()

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Disable all OpenTelemetry features for the CLI to avoid connection errors
	cfg.OpenTelemetry.EnableTracing = false
	cfg.OpenTelemetry.EnableMetrics = false
	cfg.OpenTelemetry.EnableLogging = false

	_, _, logger, err := observability.SetupObservability(&cfg.OpenTelemetry, "seed-db")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}

	// Open the database
	dbManager := database.NewManager(logger)
	db, err := dbManager.InitDBWithConfig(cfg.Database)
	if err != nil {
		logger.Error(ctx, "Failed to connect to database", err, map[string]interface{}{"db_path": cfg.Database.Path})
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn(ctx, "Warning: failed to close database connection", map[string]interface{}{"error": err.Error()})
		}
	}()

	reportStore := store.NewReportStore(db, logger)
	if *reset {
		fmt.Println("Resetting the reports table...")
		if err := reportStore.Reset(ctx); err != nil {
			logger.Error(ctx, "Failed to reset report schema", err, nil)
			os.Exit(1)
		}
	} else if err := reportStore.Initialize(ctx); err != nil {
		logger.Error(ctx, "Failed to initialize report store", err, nil)
		os.Exit(1)
	}

	// Load the seed set
	seeds, err := loadSeeds(*seedFile)
	if err != nil {
		logger.Error(ctx, "Failed to load seed data", err, map[string]interface{}{"file": *seedFile})
		os.Exit(1)
	}

	for i, seed := range seeds {
		if err := insertSeed(ctx, db, reportStore, seed); err != nil {
			logger.Error(ctx, "Failed to insert seed report", err, map[string]interface{}{"index": i, "title": seed.Title})
			os.Exit(1)
		}
	}

	fmt.Printf("Seeded %d report(s) into %s\n", len(seeds), cfg.Database.Path)
}

// loadSeeds reads the seed file, or returns the built-in samples when no file
// is given
func loadSeeds(path string) ([]SeedReport, error) {
	if path == "" {
		return defaultSeedReports(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, contextutils.WrapErrorf(err, "failed to read seed file %s", path)
	}

	var file SeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, contextutils.WrapErrorf(err, "failed to parse seed file %s", path)
	}
	if len(file.Reports) == 0 {
		return nil, contextutils.ErrorWithContextf("seed file %s contains no reports", path)
	}
	return file.Reports, nil
}

// insertSeed writes one sample report. The row goes through the store so the
// usual insert rules apply, then created_at is backdated and the status set
// directly because the store never writes historic rows.
func insertSeed(ctx context.Context, db *sql.DB, reportStore *store.ReportStore, seed SeedReport) error {
	category := models.Category(seed.Category)
	if seed.Category != "" && !category.Valid() {
		return contextutils.ErrorWithContextf("unknown category %q in seed %q", seed.Category, seed.Title)
	}
	priority := models.Priority(seed.Priority)
	if seed.Priority != "" && !priority.Valid() {
		return contextutils.ErrorWithContextf("unknown priority %q in seed %q", seed.Priority, seed.Title)
	}
	status := models.Status(seed.Status)
	if seed.Status != "" && !status.Valid() {
		return contextutils.ErrorWithContextf("unknown status %q in seed %q", seed.Status, seed.Title)
	}

	report := &models.Report{
		ReporterName:  nullString(seed.ReporterName),
		ReporterEmail: nullString(seed.ReporterEmail),
		Title:         seed.Title,
		Category:      category,
		Priority:      priority,
		Description:   nullString(seed.Description),
	}

	id, err := reportStore.Insert(ctx, report)
	if err != nil {
		return err
	}

	if seed.DaysAgo > 0 {
		createdAt := time.Now().AddDate(0, 0, -seed.DaysAgo).Truncate(time.Second)
		if _, err := db.ExecContext(ctx, `UPDATE reports SET created_at = ? WHERE id = ?`,
			contextutils.FormatStoredTimestamp(createdAt), id); err != nil {
			return contextutils.WrapErrorf(err, "failed to backdate seed report %d", id)
		}
	}

	if seed.Status != "" && status != models.StatusNew {
		if err := reportStore.UpdateStatus(ctx, id, status); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// defaultSeedReports returns a spread of sample data: every category, priority
// and status appears at least once, and submissions span several days
func defaultSeedReports() []SeedReport {
	return []SeedReport{
		{
			ReporterName:  "Ari Chen",
			ReporterEmail: "ari@example.com",
			Title:         "Projector in room 4 flickers after ten minutes",
			Category:      "Technical",
			Priority:      "High",
			Description:   "Happens every morning. Power-cycling helps for a while.",
			Status:        "InProgress",
			DaysAgo:       6,
		},
		{
			ReporterName:  "Sam Osei",
			ReporterEmail: "sam@example.com",
			Title:         "Expense reimbursement from May still pending",
			Category:      "Finance",
			Priority:      "Medium",
			Description:   "Submitted the receipts on May 12, no response since.",
			Status:        "Done",
			DaysAgo:       5,
		},
		{
			ReporterName: "Lea Novak",
			Title:        "Coffee machine on floor 2 out of order",
			Category:     "General",
			Priority:     "Low",
			Status:       "Done",
			DaysAgo:      5,
		},
		{
			ReporterName:  "Priya Sharma",
			ReporterEmail: "priya@example.com",
			Title:         "Onboarding checklist missing for new hires",
			Category:      "HumanResources",
			Priority:      "Medium",
			Description:   "The wiki page linked from the offer letter is empty.",
			Status:        "InProgress",
			DaysAgo:       3,
		},
		{
			Title:    "Strange smell near the server room",
			Category: "Other",
			Priority: "High",
			Status:   "New",
			DaysAgo:  2,
		},
		{
			ReporterName:  "Jonas Weber",
			ReporterEmail: "jonas@example.com",
			Title:         "VPN drops every hour on the guest network",
			Category:      "Technical",
			Priority:      "Medium",
			Description:   "Affects at least three people in my team.",
			Status:        "New",
			DaysAgo:       1,
		},
		{
			ReporterName: "Mina Park",
			Title:        "Payroll slip shows wrong cost center",
			Category:     "Finance",
			Priority:     "Low",
			Status:       "New",
		},
		{
			Title:    "Door badge reader at the east entrance is slow",
			Category: "Technical",
			Priority: "Low",
			Status:   "New",
		},
	}
}
