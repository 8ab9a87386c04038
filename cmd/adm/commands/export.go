package commands

import (
	"context"
	"fmt"
	"os"

	"reportdesk/internal/observability"
	"reportdesk/internal/services"
	contextutils "reportdesk/internal/utils"

	"github.com/spf13/cobra"
)

// ExportCommands returns the export commands
func ExportCommands(reportService *services.ReportService, exportService *services.ExportService, logger *observability.Logger) *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export commands",
		Long: `Export commands for the reporting service.

Available commands:
  csv - Export reports as CSV
  pdf - Export reports as PDF`,
	}

	// Add subcommands
	exportCmd.AddCommand(exportCSVCmd(reportService, exportService, logger))
	exportCmd.AddCommand(exportPDFCmd(reportService, exportService, logger))

	return exportCmd
}

// exportCSVCmd returns the csv command
func exportCSVCmd(reportService *services.ReportService, exportService *services.ExportService, logger *observability.Logger) *cobra.Command {
	filters := &filterFlags{}
	var out string
	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Export reports as CSV",
		Long:  `Export reports as CSV to a file. The same filter flags as 'reports list' apply.`,
		RunE:  runExport(reportService, exportService, logger, filters, &out, "csv"),
	}
	filters.register(cmd)
	cmd.Flags().StringVar(&out, "out", "reports.csv", "Output file path")
	return cmd
}

// exportPDFCmd returns the pdf command
func exportPDFCmd(reportService *services.ReportService, exportService *services.ExportService, logger *observability.Logger) *cobra.Command {
	filters := &filterFlags{}
	var out string
	cmd := &cobra.Command{
		Use:   "pdf",
		Short: "Export reports as PDF",
		Long:  `Export reports as a tabular PDF to a file. The same filter flags as 'reports list' apply. Fails when PDF export is disabled in the configuration.`,
		RunE:  runExport(reportService, exportService, logger, filters, &out, "pdf"),
	}
	filters.register(cmd)
	cmd.Flags().StringVar(&out, "out", "reports.pdf", "Output file path")
	return cmd
}

// runExport returns a function that renders the filtered listing into a file
func runExport(reportService *services.ReportService, exportService *services.ExportService, logger *observability.Logger, filters *filterFlags, out *string, format string) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		reports, err := reportService.ListFiltered(ctx, filters.toFilter())
		if err != nil {
			logger.Error(ctx, "Failed to list reports for export", err, map[string]interface{}{})
			return contextutils.WrapError(err, "failed to list reports")
		}

		var data []byte
		switch format {
		case "csv":
			data, err = exportService.ToCSV(ctx, reports)
		case "pdf":
			data, err = exportService.ToPDFList(ctx, reports)
		default:
			return contextutils.ErrorWithContextf("unknown export format %q", format)
		}
		if err != nil {
			logger.Error(ctx, "Failed to render export", err, map[string]interface{}{"format": format})
			return contextutils.WrapErrorf(err, "failed to render %s export", format)
		}

		if err := os.WriteFile(*out, data, 0o644); err != nil {
			logger.Error(ctx, "Failed to write export file", err, map[string]interface{}{"path": *out})
			return contextutils.WrapErrorf(err, "failed to write %s", *out)
		}

		fmt.Printf("Wrote %d report(s) to %s\n", len(reports), *out)
		return nil
	}
}
