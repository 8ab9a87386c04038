package commands

import (
	"context"
	"fmt"

	"reportdesk/internal/models"
	"reportdesk/internal/observability"
	"reportdesk/internal/services"
	contextutils "reportdesk/internal/utils"

	"github.com/spf13/cobra"
)

// StatsCommand returns the stats command
func StatsCommand(reportService *services.ReportService, logger *observability.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show report statistics",
		Long:  `Show report statistics: the total count, status, category and priority breakdowns, and the submission trend.`,
		RunE:  runStats(reportService, logger),
	}
}

// runStats returns a function that prints dashboard aggregates
func runStats(reportService *services.ReportService, logger *observability.Logger) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		summary, err := reportService.Summary(ctx)
		if err != nil {
			logger.Error(ctx, "Failed to get report statistics", err, map[string]interface{}{})
			return contextutils.WrapError(err, "failed to get report statistics")
		}

		fmt.Printf("Total reports: %d\n", summary.Total)

		fmt.Println("\nBy status:")
		for _, status := range models.AllStatuses() {
			fmt.Printf("  %-16s %d\n", status, summary.ByStatus[string(status)])
		}

		if len(summary.ByCategory) > 0 {
			fmt.Println("\nBy category:")
			for _, category := range sortedKeys(summary.ByCategory) {
				fmt.Printf("  %-16s %d\n", category, summary.ByCategory[category])
			}
		}

		if len(summary.ByPriority) > 0 {
			fmt.Println("\nBy priority:")
			for _, priority := range sortedKeys(summary.ByPriority) {
				fmt.Printf("  %-16s %d\n", priority, summary.ByPriority[priority])
			}
		}

		if len(summary.Trend) > 0 {
			fmt.Println("\nSubmissions per day:")
			for _, point := range summary.Trend {
				fmt.Printf("  %s  %d\n", point.Date, point.Count)
			}
		}

		return nil
	}
}
