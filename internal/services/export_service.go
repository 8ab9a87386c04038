package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"time"

	"reportdesk/internal/models"
	"reportdesk/internal/observability"
	contextutils "reportdesk/internal/utils"
)

// csvHeader is the fixed column order of CSV exports.
var csvHeader = []string{"id", "created_at", "reporter_name", "reporter_email", "title", "category", "priority", "description", "status", "attachment_path"}

// ExportService renders report rows as CSV or PDF byte streams. The PDF
// capability is injected; with a nil renderer CSV keeps working and PDF
// operations fail as unavailable.
type ExportService struct {
	renderer PDFRenderer
	logger   *observability.Logger
}

// NewExportService creates a new ExportService instance.
func NewExportService(renderer PDFRenderer, logger *observability.Logger) *ExportService {
	if logger == nil {
		panic("NewExportService: logger is nil")
	}
	return &ExportService{renderer: renderer, logger: logger}
}

// PDFAvailable reports whether PDF rendering is configured.
func (s *ExportService) PDFAvailable() bool {
	return s.renderer != nil
}

// ToCSV renders rows as UTF-8 CSV with a fixed header row.
func (s *ExportService) ToCSV(ctx context.Context, reports []models.Report) (result0 []byte, err error) {
	ctx, span := observability.TraceExportFunction(ctx, "to_csv",
		observability.AttributeExportFormat("csv"),
		observability.AttributeCount(len(reports)),
	)
	defer observability.FinishSpan(span, &err)

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err = writer.Write(csvHeader); err != nil {
		return nil, contextutils.WrapError(err, "failed to write CSV header")
	}

	for _, report := range reports {
		record := []string{
			strconv.FormatInt(report.ID, 10),
			report.CreatedAt.Format(models.TimestampLayout),
			report.ReporterName.String,
			report.ReporterEmail.String,
			report.Title,
			string(report.Category),
			string(report.Priority),
			report.Description.String,
			string(report.Status),
			report.AttachmentPath.String,
		}
		if err = writer.Write(record); err != nil {
			return nil, contextutils.WrapError(err, "failed to write CSV record")
		}
	}

	writer.Flush()
	if err = writer.Error(); err != nil {
		return nil, contextutils.WrapError(err, "failed to flush CSV")
	}

	s.logger.Info(ctx, "CSV export rendered", map[string]interface{}{
		"rows": len(reports),
	})
	return buf.Bytes(), nil
}

// ToPDFDetail renders a single-report PDF.
func (s *ExportService) ToPDFDetail(ctx context.Context, report *models.Report) (result0 []byte, err error) {
	ctx, span := observability.TraceExportFunction(ctx, "to_pdf_detail",
		observability.AttributeExportFormat("pdf"),
		observability.AttributeReportID(report.ID),
	)
	defer observability.FinishSpan(span, &err)

	if s.renderer == nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrRenderUnavailable, "PDF export is not configured")
	}

	data, err := s.renderer.RenderDetail(report)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrRenderFailed, "failed to render report %d: %v", report.ID, err)
	}

	s.logger.Info(ctx, "Detail PDF rendered", map[string]interface{}{
		"report_id":  report.ID,
		"size_bytes": len(data),
	})
	return data, nil
}

// ToPDFList renders rows as a tabular PDF.
func (s *ExportService) ToPDFList(ctx context.Context, reports []models.Report) (result0 []byte, err error) {
	ctx, span := observability.TraceExportFunction(ctx, "to_pdf_list",
		observability.AttributeExportFormat("pdf"),
		observability.AttributeCount(len(reports)),
	)
	defer observability.FinishSpan(span, &err)

	if s.renderer == nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrRenderUnavailable, "PDF export is not configured")
	}

	data, err := s.renderer.RenderList(reports, time.Now())
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrRenderFailed, "failed to render report list: %v", err)
	}

	s.logger.Info(ctx, "List PDF rendered", map[string]interface{}{
		"rows":       len(reports),
		"size_bytes": len(data),
	})
	return data, nil
}
