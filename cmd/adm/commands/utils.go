package commands

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"reportdesk/internal/models"
	contextutils "reportdesk/internal/utils"

	"github.com/spf13/cobra"
)

// filterFlags carries the listing filter flags shared by the list and export
// commands.
type filterFlags struct {
	categories []string
	priorities []string
	statuses   []string
}

// register adds the filter flags to a command
func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.categories, "category", nil, "Filter by category (repeatable)")
	cmd.Flags().StringSliceVar(&f.priorities, "priority", nil, "Filter by priority (repeatable)")
	cmd.Flags().StringSliceVar(&f.statuses, "status", nil, "Filter by status (repeatable)")
}

// toFilter converts the raw flag values into a report filter. Values are
// validated by the service, not here.
func (f *filterFlags) toFilter() models.ReportFilter {
	var filter models.ReportFilter
	for _, value := range f.categories {
		filter.Categories = append(filter.Categories, models.Category(value))
	}
	for _, value := range f.priorities {
		filter.Priorities = append(filter.Priorities, models.Priority(value))
	}
	for _, value := range f.statuses {
		filter.Statuses = append(filter.Statuses, models.Status(value))
	}
	return filter
}

// parseStatusEdits parses id=status arguments into a triage batch
func parseStatusEdits(args []string) ([]models.StatusEdit, error) {
	edits := make([]models.StatusEdit, 0, len(args))
	for _, arg := range args {
		parts := strings.SplitN(arg, "=", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, contextutils.ErrorWithContextf("invalid edit %q, expected <id>=<status>", arg)
		}
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return nil, contextutils.ErrorWithContextf("invalid report ID %q in edit %q", parts[0], arg)
		}
		edits = append(edits, models.StatusEdit{ID: id, Status: models.Status(parts[1])})
	}
	return edits, nil
}

// formatReporter renders reporter identity as "name <email>" with a dash for
// missing parts
func formatReporter(report *models.Report) string {
	name := orDash(report.ReporterName)
	if report.ReporterEmail.Valid && report.ReporterEmail.String != "" {
		return fmt.Sprintf("%s <%s>", name, report.ReporterEmail.String)
	}
	return name
}

// orDash renders nullable text columns in tables
func orDash(ns sql.NullString) string {
	if ns.Valid && ns.String != "" {
		return ns.String
	}
	return "-"
}

// orDashString renders possibly-empty values in tables
func orDashString(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncate shortens s to max runes for column display
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// sortedKeys returns map keys in ascending order for stable output
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
