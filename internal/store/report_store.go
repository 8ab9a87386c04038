// Package store implements report persistence. All SQL in the repository
// lives here; callers go through the service layer.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"reportdesk/internal/models"
	"reportdesk/internal/observability"
	contextutils "reportdesk/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

//go:embed schema.sql
var schemaSQL string

// reportColumns is the SELECT list shared by every query returning full rows.
const reportColumns = "id, created_at, reporter_name, reporter_email, title, category, priority, description, status, attachment_path"

// ReportStore persists reports in a single SQL table.
type ReportStore struct {
	db     *sql.DB
	logger *observability.Logger
}

// NewReportStore creates a new ReportStore instance.
func NewReportStore(db *sql.DB, logger *observability.Logger) *ReportStore {
	if db == nil {
		panic("NewReportStore: db is nil")
	}
	if logger == nil {
		panic("NewReportStore: logger is nil")
	}
	return &ReportStore{db: db, logger: logger}
}

// Initialize creates the reports table and its indexes. Safe to call on every
// process start.
func (s *ReportStore) Initialize(ctx context.Context) (err error) {
	ctx, span := observability.TraceStoreFunction(ctx, "initialize")
	defer observability.FinishSpan(span, &err)

	statements := parseStatements(schemaSQL)
	span.SetAttributes(attribute.Int("schema.statements.count", len(statements)))

	for _, statement := range statements {
		if _, execErr := s.db.ExecContext(ctx, statement); execErr != nil {
			return contextutils.WrapErrorf(execErr, "failed to execute schema statement: %s", statement)
		}
	}

	s.logger.Info(ctx, "Report schema applied", map[string]interface{}{
		"statements": len(statements),
	})
	return nil
}

// Reset drops the reports table and recreates it empty. Every stored row is
// lost; attachment files on disk are not touched.
func (s *ReportStore) Reset(ctx context.Context) (err error) {
	ctx, span := observability.TraceStoreFunction(ctx, "reset")
	defer observability.FinishSpan(span, &err)

	// Dropping the table drops its indexes with it
	if _, err = s.db.ExecContext(ctx, `DROP TABLE IF EXISTS reports`); err != nil {
		return contextutils.WrapError(err, "failed to drop reports table")
	}
	return s.Initialize(ctx)
}

// Insert stores a new report. The store assigns the id, forces status to New
// and stamps created_at with second precision.
func (s *ReportStore) Insert(ctx context.Context, report *models.Report) (result0 int64, err error) {
	ctx, span := observability.TraceStoreFunction(ctx, "insert",
		observability.AttributeReportTitle(report.Title),
		observability.AttributeCategory(report.Category),
		observability.AttributePriority(report.Priority),
	)
	defer observability.FinishSpan(span, &err)

	if strings.TrimSpace(report.Title) == "" {
		return 0, contextutils.WrapErrorf(contextutils.ErrMissingRequired, "title must not be empty")
	}

	now := time.Now().Truncate(time.Second)
	query := `INSERT INTO reports (created_at, reporter_name, reporter_email, title, category, priority, description, status, attachment_path)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := s.db.ExecContext(ctx, query,
		contextutils.FormatStoredTimestamp(now),
		report.ReporterName,
		report.ReporterEmail,
		report.Title,
		string(report.Category),
		string(report.Priority),
		report.Description,
		string(models.StatusNew),
		report.AttachmentPath,
	)
	if err != nil {
		return 0, contextutils.WrapError(err, "failed to insert report")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, contextutils.WrapError(err, "failed to read inserted report id")
	}

	report.ID = id
	report.Status = models.StatusNew
	report.CreatedAt = now
	return id, nil
}

// ListAll returns every report ordered by id descending, newest first.
func (s *ReportStore) ListAll(ctx context.Context) (result0 []models.Report, err error) {
	ctx, span := observability.TraceStoreFunction(ctx, "list_all")
	defer observability.FinishSpan(span, &err)
	return s.ListFiltered(ctx, models.ReportFilter{})
}

// ListFiltered returns reports matching the filter ordered by id descending.
// An empty dimension leaves that dimension unrestricted; values within one
// dimension combine with OR, dimensions combine with AND.
func (s *ReportStore) ListFiltered(ctx context.Context, filter models.ReportFilter) (result0 []models.Report, err error) {
	ctx, span := observability.TraceStoreFunction(ctx, "list_filtered",
		attribute.Int("filter.categories", len(filter.Categories)),
		attribute.Int("filter.priorities", len(filter.Priorities)),
		attribute.Int("filter.statuses", len(filter.Statuses)),
	)
	defer observability.FinishSpan(span, &err)

	var conditions []string
	var args []interface{}
	if len(filter.Categories) > 0 {
		conditions = append(conditions, "category IN ("+placeholders(len(filter.Categories))+")")
		for _, category := range filter.Categories {
			args = append(args, string(category))
		}
	}
	if len(filter.Priorities) > 0 {
		conditions = append(conditions, "priority IN ("+placeholders(len(filter.Priorities))+")")
		for _, priority := range filter.Priorities {
			args = append(args, string(priority))
		}
	}
	if len(filter.Statuses) > 0 {
		conditions = append(conditions, "status IN ("+placeholders(len(filter.Statuses))+")")
		for _, status := range filter.Statuses {
			args = append(args, string(status))
		}
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s FROM reports %s ORDER BY id DESC", reportColumns, where)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to query reports")
	}
	defer func() {
		_ = rows.Close()
	}()

	list := []models.Report{}
	for rows.Next() {
		var report models.Report
		var createdAt string
		if scanErr := rows.Scan(&report.ID, &createdAt, &report.ReporterName, &report.ReporterEmail, &report.Title, (*string)(&report.Category), (*string)(&report.Priority), &report.Description, (*string)(&report.Status), &report.AttachmentPath); scanErr != nil {
			return nil, contextutils.WrapError(scanErr, "scan report list")
		}
		if report.CreatedAt, err = contextutils.ParseStoredTimestamp(createdAt); err != nil {
			return nil, err
		}
		list = append(list, report)
	}
	if err = rows.Err(); err != nil {
		return nil, contextutils.WrapError(err, "iterate report list")
	}
	return list, nil
}

// GetByID fetches a single report.
func (s *ReportStore) GetByID(ctx context.Context, id int64) (result0 *models.Report, err error) {
	ctx, span := observability.TraceStoreFunction(ctx, "get_by_id", observability.AttributeReportID(id))
	defer observability.FinishSpan(span, &err)

	query := fmt.Sprintf("SELECT %s FROM reports WHERE id = ?", reportColumns)
	row := s.db.QueryRowContext(ctx, query, id)
	var report models.Report
	var createdAt string
	err = row.Scan(&report.ID, &createdAt, &report.ReporterName, &report.ReporterEmail, &report.Title, (*string)(&report.Category), (*string)(&report.Priority), &report.Description, (*string)(&report.Status), &report.AttachmentPath)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, contextutils.WrapErrorf(contextutils.ErrRecordNotFound, "report with ID %d not found", id)
		}
		return nil, contextutils.WrapError(err, "failed to scan report")
	}
	if report.CreatedAt, err = contextutils.ParseStoredTimestamp(createdAt); err != nil {
		return nil, err
	}
	return &report, nil
}

// UpdateStatus overwrites the status of one report, leaving every other field
// untouched.
func (s *ReportStore) UpdateStatus(ctx context.Context, id int64, status models.Status) (err error) {
	ctx, span := observability.TraceStoreFunction(ctx, "update_status",
		observability.AttributeReportID(id),
		observability.AttributeStatus(status),
	)
	defer observability.FinishSpan(span, &err)

	if !status.Valid() {
		return contextutils.WrapErrorf(contextutils.ErrInvalidInput, "unknown status '%s'", status)
	}

	result, err := s.db.ExecContext(ctx, `UPDATE reports SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return contextutils.WrapError(err, "failed to update report status")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return contextutils.WrapError(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return contextutils.WrapErrorf(contextutils.ErrRecordNotFound, "report with ID %d not found", id)
	}
	return nil
}

// UpdateStatusBatch applies all edits in one transaction. Any invalid entry
// aborts the whole batch with zero rows changed.
func (s *ReportStore) UpdateStatusBatch(ctx context.Context, edits []models.StatusEdit) (err error) {
	ctx, span := observability.TraceStoreFunction(ctx, "update_status_batch",
		observability.AttributeBatchSize(len(edits)),
	)
	defer observability.FinishSpan(span, &err)

	if len(edits) == 0 {
		return nil
	}

	// Reject bad values before touching the database
	for _, edit := range edits {
		if !edit.Status.Valid() {
			return contextutils.WrapErrorf(contextutils.ErrInvalidInput, "unknown status '%s' for report %d", edit.Status, edit.ID)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return contextutils.WrapError(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				s.logger.Error(ctx, "Failed to rollback status batch", rollbackErr, map[string]interface{}{
					"edits": len(edits),
				})
			}
		}
	}()

	for _, edit := range edits {
		result, execErr := tx.ExecContext(ctx, `UPDATE reports SET status = ? WHERE id = ?`, string(edit.Status), edit.ID)
		if execErr != nil {
			err = contextutils.WrapErrorf(execErr, "failed to update status for report %d", edit.ID)
			return err
		}
		rowsAffected, raErr := result.RowsAffected()
		if raErr != nil {
			err = contextutils.WrapError(raErr, "failed to get rows affected")
			return err
		}
		if rowsAffected == 0 {
			err = contextutils.WrapErrorf(contextutils.ErrRecordNotFound, "report with ID %d not found", edit.ID)
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return contextutils.WrapError(err, "failed to commit status batch")
	}

	s.logger.Info(ctx, "Report statuses updated", map[string]interface{}{
		"count": len(edits),
	})
	return nil
}

// Count returns the total number of reports.
func (s *ReportStore) Count(ctx context.Context) (result0 int, err error) {
	ctx, span := observability.TraceStoreFunction(ctx, "count")
	defer observability.FinishSpan(span, &err)

	var total int
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports`).Scan(&total); err != nil {
		return 0, contextutils.WrapError(err, "failed to count reports")
	}
	return total, nil
}

// CountByStatus returns per-status report counts for statuses present in the
// data.
func (s *ReportStore) CountByStatus(ctx context.Context) (result0 map[string]int, err error) {
	ctx, span := observability.TraceStoreFunction(ctx, "count_by_status")
	defer observability.FinishSpan(span, &err)
	return s.countBy(ctx, "status")
}

// CountByCategory returns per-category report counts for categories present in
// the data.
func (s *ReportStore) CountByCategory(ctx context.Context) (result0 map[string]int, err error) {
	ctx, span := observability.TraceStoreFunction(ctx, "count_by_category")
	defer observability.FinishSpan(span, &err)
	return s.countBy(ctx, "category")
}

// CountByPriority returns per-priority report counts for priorities present in
// the data.
func (s *ReportStore) CountByPriority(ctx context.Context) (result0 map[string]int, err error) {
	ctx, span := observability.TraceStoreFunction(ctx, "count_by_priority")
	defer observability.FinishSpan(span, &err)
	return s.countBy(ctx, "priority")
}

// CountByDate returns per-day submission counts in ascending date order. Days
// without submissions do not appear.
func (s *ReportStore) CountByDate(ctx context.Context) (result0 []models.DateCount, err error) {
	ctx, span := observability.TraceStoreFunction(ctx, "count_by_date")
	defer observability.FinishSpan(span, &err)

	query := `SELECT substr(created_at, 1, 10) AS day, COUNT(*) FROM reports GROUP BY day ORDER BY day ASC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to count reports by date")
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := []models.DateCount{}
	for rows.Next() {
		var dateCount models.DateCount
		if scanErr := rows.Scan(&dateCount.Date, &dateCount.Count); scanErr != nil {
			return nil, contextutils.WrapError(scanErr, "scan date counts")
		}
		counts = append(counts, dateCount)
	}
	if err = rows.Err(); err != nil {
		return nil, contextutils.WrapError(err, "iterate date counts")
	}
	return counts, nil
}

// DistinctCategories returns the sorted category values present in the data.
func (s *ReportStore) DistinctCategories(ctx context.Context) (result0 []string, err error) {
	ctx, span := observability.TraceStoreFunction(ctx, "distinct_categories")
	defer observability.FinishSpan(span, &err)
	return s.distinctValues(ctx, "category")
}

// DistinctPriorities returns the sorted priority values present in the data.
func (s *ReportStore) DistinctPriorities(ctx context.Context) (result0 []string, err error) {
	ctx, span := observability.TraceStoreFunction(ctx, "distinct_priorities")
	defer observability.FinishSpan(span, &err)
	return s.distinctValues(ctx, "priority")
}

// countBy runs a GROUP BY aggregate over one enum column.
func (s *ReportStore) countBy(ctx context.Context, column string) (map[string]int, error) {
	query := fmt.Sprintf("SELECT %s, COUNT(*) FROM reports GROUP BY %s", column, column)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, contextutils.WrapErrorf(err, "failed to count reports by %s", column)
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := map[string]int{}
	for rows.Next() {
		var value string
		var count int
		if scanErr := rows.Scan(&value, &count); scanErr != nil {
			return nil, contextutils.WrapErrorf(scanErr, "scan %s counts", column)
		}
		counts[value] = count
	}
	if err = rows.Err(); err != nil {
		return nil, contextutils.WrapErrorf(err, "iterate %s counts", column)
	}
	return counts, nil
}

// distinctValues returns the sorted distinct non-empty values of one column.
func (s *ReportStore) distinctValues(ctx context.Context, column string) ([]string, error) {
	query := fmt.Sprintf("SELECT DISTINCT %s FROM reports WHERE %s <> '' ORDER BY %s ASC", column, column, column)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, contextutils.WrapErrorf(err, "failed to query distinct %s values", column)
	}
	defer func() {
		_ = rows.Close()
	}()

	values := []string{}
	for rows.Next() {
		var value string
		if scanErr := rows.Scan(&value); scanErr != nil {
			return nil, contextutils.WrapErrorf(scanErr, "scan distinct %s values", column)
		}
		values = append(values, value)
	}
	if err = rows.Err(); err != nil {
		return nil, contextutils.WrapErrorf(err, "iterate distinct %s values", column)
	}
	return values, nil
}

// placeholders returns n comma separated SQL placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// parseStatements splits schema DDL into individual statements, dropping
// comments and blank lines.
func parseStatements(schema string) []string {
	lines := strings.Split(schema, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "--") {
			continue
		}
		// Remove inline comments appearing after SQL code
		if commentIndex := strings.Index(line, "--"); commentIndex != -1 {
			line = strings.TrimSpace(line[:commentIndex])
		}
		cleanedLines = append(cleanedLines, line)
	}

	var statements []string
	for _, statement := range strings.Split(strings.Join(cleanedLines, " "), ";") {
		statement = strings.TrimSpace(statement)
		if statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}
