package commands

import (
	"context"
	"fmt"

	"reportdesk/internal/observability"
	"reportdesk/internal/services"
	contextutils "reportdesk/internal/utils"

	"github.com/spf13/cobra"
)

// StatusCommands returns the triage commands
func StatusCommands(reportService *services.ReportService, logger *observability.Logger) *cobra.Command {
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Report triage commands",
		Long: `Report triage commands for the reporting service.

Available commands:
  set - Apply status changes to one or more reports`,
	}

	// Add subcommands
	statusCmd.AddCommand(setStatusCmd(reportService, logger))

	return statusCmd
}

// setStatusCmd returns the set command
func setStatusCmd(reportService *services.ReportService, logger *observability.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "set <id>=<status> [<id>=<status> ...]",
		Short: "Apply status changes",
		Long: `Apply one or more status changes in a single transaction.

Each argument is <id>=<status> where status is one of New, InProgress or Done.
Either every change applies or none does.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSetStatus(reportService, logger),
	}
}

// runSetStatus returns a function that applies a triage batch
func runSetStatus(reportService *services.ReportService, logger *observability.Logger) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, args []string) error {
		ctx := context.Background()

		edits, err := parseStatusEdits(args)
		if err != nil {
			return err
		}

		if err := reportService.ApplyStatusEdits(ctx, edits); err != nil {
			logger.Error(ctx, "Failed to apply status edits", err, map[string]interface{}{"edits": len(edits)})
			return contextutils.WrapError(err, "failed to apply status edits")
		}

		fmt.Printf("Updated %d report(s)\n", len(edits))
		return nil
	}
}
