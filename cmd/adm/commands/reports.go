// Package commands provides CLI commands for the admin tool
package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"reportdesk/internal/observability"
	"reportdesk/internal/services"
	contextutils "reportdesk/internal/utils"

	"github.com/spf13/cobra"
)

// ReportCommands returns the report inspection commands
func ReportCommands(reportService *services.ReportService, logger *observability.Logger, databasePath string) *cobra.Command {
	reportsCmd := &cobra.Command{
		Use:   "reports",
		Short: "Report inspection commands",
		Long: `Report inspection commands for the reporting service.

Available commands:
  list - List reports, optionally filtered
  show - Show one report in full`,
	}

	// Add subcommands
	reportsCmd.AddCommand(listReportsCmd(reportService, logger, databasePath))
	reportsCmd.AddCommand(showReportCmd(reportService, logger))

	return reportsCmd
}

// listReportsCmd returns the list command
func listReportsCmd(reportService *services.ReportService, logger *observability.Logger, databasePath string) *cobra.Command {
	filters := &filterFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reports",
		Long: `List reports in the database, newest first.

The repeatable --category, --priority and --status flags restrict the listing.
Values of one flag combine with OR, the three flags combine with AND.`,
		RunE: runListReports(reportService, logger, filters, databasePath),
	}
	filters.register(cmd)
	return cmd
}

// showReportCmd returns the show command
func showReportCmd(reportService *services.ReportService, logger *observability.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show one report",
		Long:  `Show every stored field of a single report.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runShowReport(reportService, logger),
	}
}

// runListReports returns a function that lists reports
func runListReports(reportService *services.ReportService, logger *observability.Logger, filters *filterFlags, databasePath string) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		// Show diagnostic information
		logger.Info(ctx, "Admin command diagnostics", map[string]interface{}{"config_file": os.Getenv("REPORTDESK_CONFIG_FILE"), "database_path": databasePath})

		reports, err := reportService.ListFiltered(ctx, filters.toFilter())
		if err != nil {
			logger.Error(ctx, "Failed to list reports", err, map[string]interface{}{})
			return contextutils.WrapError(err, "failed to list reports")
		}

		if len(reports) == 0 {
			fmt.Println("No reports found.")
			return nil
		}

		// Print header to stdout (user-facing table)
		fmt.Printf("%-5s %-17s %-11s %-15s %-9s %-40s %-20s\n", "ID", "Created", "Status", "Category", "Priority", "Title", "Reporter")
		fmt.Println(strings.Repeat("-", 122))

		// Print each report
		for _, report := range reports {
			fmt.Printf("%-5d %-17s %-11s %-15s %-9s %-40s %-20s\n",
				report.ID,
				report.CreatedAt.Format("2006-01-02 15:04"),
				report.Status,
				orDashString(string(report.Category)),
				orDashString(string(report.Priority)),
				truncate(report.Title, 40),
				truncate(orDash(report.ReporterName), 20),
			)
		}

		fmt.Printf("\n%d report(s)\n", len(reports))
		return nil
	}
}

// runShowReport returns a function that prints one report in full
func runShowReport(reportService *services.ReportService, logger *observability.Logger) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return contextutils.ErrorWithContextf("invalid report ID %q", args[0])
		}

		report, err := reportService.GetByID(ctx, id)
		if err != nil {
			logger.Error(ctx, "Failed to get report", err, map[string]interface{}{"report_id": id})
			return contextutils.WrapErrorf(err, "failed to get report %d", id)
		}

		fmt.Printf("ID:          %d\n", report.ID)
		fmt.Printf("Created:     %s\n", report.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Status:      %s\n", report.Status)
		fmt.Printf("Title:       %s\n", report.Title)
		fmt.Printf("Category:    %s\n", orDashString(string(report.Category)))
		fmt.Printf("Priority:    %s\n", orDashString(string(report.Priority)))
		fmt.Printf("Reporter:    %s\n", formatReporter(report))
		fmt.Printf("Attachment:  %s\n", orDash(report.AttachmentPath))
		if report.Description.Valid && report.Description.String != "" {
			fmt.Printf("Description:\n%s\n", report.Description.String)
		}

		return nil
	}
}
