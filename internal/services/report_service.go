package services

import (
	"context"
	"database/sql"
	"strings"

	"reportdesk/internal/models"
	"reportdesk/internal/observability"
	"reportdesk/internal/store"
	contextutils "reportdesk/internal/utils"
)

// SubmitRequest carries one report submission. AttachmentName and
// AttachmentData are both empty when no file was uploaded.
type SubmitRequest struct {
	ReporterName   string
	ReporterEmail  string
	Title          string
	Category       string
	Priority       string
	Description    string
	AttachmentName string
	AttachmentData []byte
}

// ReportService implements report submission, listing, triage and dashboard
// aggregation on top of the store.
type ReportService struct {
	store       *store.ReportStore
	attachments *AttachmentService
	logger      *observability.Logger
}

// NewReportService creates a new ReportService instance.
func NewReportService(reportStore *store.ReportStore, attachments *AttachmentService, logger *observability.Logger) *ReportService {
	if reportStore == nil {
		panic("NewReportService: store is nil")
	}
	if attachments == nil {
		panic("NewReportService: attachments is nil")
	}
	if logger == nil {
		panic("NewReportService: logger is nil")
	}
	return &ReportService{store: reportStore, attachments: attachments, logger: logger}
}

// Submit validates and stores one report, saving its attachment first when one
// was supplied. The returned report carries the assigned id, timestamp and
// status. An attachment write failure aborts the submit before any row is
// written.
func (s *ReportService) Submit(ctx context.Context, req SubmitRequest) (result0 *models.Report, err error) {
	ctx, span := observability.TraceReportFunction(ctx, "submit",
		observability.AttributeReportTitle(req.Title),
	)
	defer observability.FinishSpan(span, &err)

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, contextutils.WrapErrorf(contextutils.ErrMissingRequired, "title must not be empty")
	}

	category := models.Category(strings.TrimSpace(req.Category))
	if category == "" {
		category = models.CategoryGeneral
	}
	if !category.Valid() {
		return nil, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "unknown category '%s'", category)
	}

	priority := models.Priority(strings.TrimSpace(req.Priority))
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "unknown priority '%s'", priority)
	}

	email := strings.TrimSpace(req.ReporterEmail)
	if email != "" && !contextutils.IsValidEmail(email) {
		// The submission proceeds; the intake form never rejects on email
		s.logger.Warn(ctx, "Reporter email failed validation", map[string]interface{}{
			"reporter_email": email,
		})
	}

	attachmentPath := ""
	if len(req.AttachmentData) > 0 {
		if attachmentPath, err = s.attachments.Save(ctx, req.AttachmentName, req.AttachmentData); err != nil {
			return nil, err
		}
	}

	report := &models.Report{
		ReporterName:   toNullString(strings.TrimSpace(req.ReporterName)),
		ReporterEmail:  toNullString(email),
		Title:          title,
		Category:       category,
		Priority:       priority,
		Description:    toNullString(strings.TrimSpace(req.Description)),
		AttachmentPath: toNullString(attachmentPath),
	}

	if _, err = s.store.Insert(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "Report submitted", map[string]interface{}{
		"report_id":      report.ID,
		"category":       string(report.Category),
		"priority":       string(report.Priority),
		"has_attachment": attachmentPath != "",
	})
	return report, nil
}

// ListFiltered returns reports matching the filter, newest first. Unknown
// filter values are rejected rather than silently matching nothing.
func (s *ReportService) ListFiltered(ctx context.Context, filter models.ReportFilter) (result0 []models.Report, err error) {
	ctx, span := observability.TraceReportFunction(ctx, "list_filtered")
	defer observability.FinishSpan(span, &err)

	for _, category := range filter.Categories {
		if !category.Valid() {
			return nil, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "unknown category '%s'", category)
		}
	}
	for _, priority := range filter.Priorities {
		if !priority.Valid() {
			return nil, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "unknown priority '%s'", priority)
		}
	}
	for _, status := range filter.Statuses {
		if !status.Valid() {
			return nil, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "unknown status '%s'", status)
		}
	}

	return s.store.ListFiltered(ctx, filter)
}

// GetByID fetches a single report.
func (s *ReportService) GetByID(ctx context.Context, id int64) (result0 *models.Report, err error) {
	ctx, span := observability.TraceReportFunction(ctx, "get_by_id", observability.AttributeReportID(id))
	defer observability.FinishSpan(span, &err)
	return s.store.GetByID(ctx, id)
}

// ApplyStatusEdits applies a triage batch, all-or-nothing.
func (s *ReportService) ApplyStatusEdits(ctx context.Context, edits []models.StatusEdit) (err error) {
	ctx, span := observability.TraceReportFunction(ctx, "apply_status_edits",
		observability.AttributeBatchSize(len(edits)),
	)
	defer observability.FinishSpan(span, &err)
	return s.store.UpdateStatusBatch(ctx, edits)
}

// Summary aggregates the whole table for the dashboard. ByStatus always
// carries all three statuses, zero filled; ByCategory and ByPriority only
// carry observed values; Trend is ascending by day without synthesized zeros.
func (s *ReportService) Summary(ctx context.Context) (result0 *models.DashboardSummary, err error) {
	ctx, span := observability.TraceReportFunction(ctx, "summary")
	defer observability.FinishSpan(span, &err)

	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}

	byStatus, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	for _, status := range models.AllStatuses() {
		if _, ok := byStatus[string(status)]; !ok {
			byStatus[string(status)] = 0
		}
	}

	byCategory, err := s.store.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}

	byPriority, err := s.store.CountByPriority(ctx)
	if err != nil {
		return nil, err
	}

	trend, err := s.store.CountByDate(ctx)
	if err != nil {
		return nil, err
	}

	return &models.DashboardSummary{
		Total:      total,
		ByStatus:   byStatus,
		ByCategory: byCategory,
		ByPriority: byPriority,
		Trend:      trend,
	}, nil
}

// FilterOptions returns the values the filter bar can offer: categories and
// priorities present in the data plus the full status enumeration.
func (s *ReportService) FilterOptions(ctx context.Context) (result0 *models.FilterOptions, err error) {
	ctx, span := observability.TraceReportFunction(ctx, "filter_options")
	defer observability.FinishSpan(span, &err)

	categories, err := s.store.DistinctCategories(ctx)
	if err != nil {
		return nil, err
	}

	priorities, err := s.store.DistinctPriorities(ctx)
	if err != nil {
		return nil, err
	}

	return &models.FilterOptions{
		Categories: categories,
		Priorities: priorities,
		Statuses:   models.AllStatuses(),
	}, nil
}

// toNullString maps the empty string to SQL NULL.
func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
