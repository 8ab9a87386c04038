package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"reportdesk/internal/observability"
	"reportdesk/internal/services"
	contextutils "reportdesk/internal/utils"
)

// exportFilenameLayout stamps download filenames to the minute, so repeated
// exports on the same day sort chronologically in a download folder.
const exportFilenameLayout = "20060102_1504"

// ExportHandler handles CSV and PDF export endpoints.
type ExportHandler struct {
	reportService *services.ReportService
	exportService *services.ExportService
	logger        *observability.Logger
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(reportService *services.ReportService, exportService *services.ExportService, logger *observability.Logger) *ExportHandler {
	return &ExportHandler{
		reportService: reportService,
		exportService: exportService,
		logger:        logger,
	}
}

// GetCapabilities handles GET /v1/exports/capabilities. CSV export is always
// available; PDF depends on whether a renderer was wired in at startup.
func (h *ExportHandler) GetCapabilities(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "get_export_capabilities")
	defer observability.FinishSpan(span, nil)

	c.JSON(http.StatusOK, gin.H{
		"csv": true,
		"pdf": h.exportService.PDFAvailable(),
	})
}

// ExportCSV handles GET /v1/exports/reports.csv. The same filter query
// parameters as the listing endpoint restrict which reports are exported.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "export_csv")
	defer observability.FinishSpan(span, nil)

	reports, err := h.reportService.ListFiltered(ctx, filterFromQuery(c))
	if err != nil {
		h.logger.Error(ctx, "list reports for CSV export failed", err, nil)
		HandleAppError(c, err)
		return
	}

	data, err := h.exportService.ToCSV(ctx, reports)
	if err != nil {
		h.logger.Error(ctx, "CSV export failed", err, nil)
		HandleAppError(c, err)
		return
	}

	filename := fmt.Sprintf("reports_%s.csv", time.Now().Format(exportFilenameLayout))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// ExportListPDF handles GET /v1/exports/reports.pdf, honoring the listing
// filter parameters.
func (h *ExportHandler) ExportListPDF(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "export_list_pdf")
	defer observability.FinishSpan(span, nil)

	reports, err := h.reportService.ListFiltered(ctx, filterFromQuery(c))
	if err != nil {
		h.logger.Error(ctx, "list reports for PDF export failed", err, nil)
		HandleAppError(c, err)
		return
	}

	data, err := h.exportService.ToPDFList(ctx, reports)
	if err != nil {
		if contextutils.IsError(err, contextutils.ErrRenderUnavailable) {
			HandleAppError(c, err)
			return
		}
		h.logger.Error(ctx, "PDF list export failed", err, nil)
		HandleAppError(c, err)
		return
	}

	filename := fmt.Sprintf("reports_%s.pdf", time.Now().Format(exportFilenameLayout))
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}

// ExportReportPDF handles GET /v1/reports/:id/pdf.
func (h *ExportHandler) ExportReportPDF(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "export_report_pdf")
	defer observability.FinishSpan(span, nil)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		HandleAppError(c, contextutils.ErrInvalidFormat)
		return
	}

	report, err := h.reportService.GetByID(ctx, id)
	if err != nil {
		if contextutils.IsError(err, contextutils.ErrRecordNotFound) {
			HandleAppError(c, contextutils.ErrRecordNotFound)
			return
		}
		h.logger.Error(ctx, "get report for PDF export failed", err, nil)
		HandleAppError(c, err)
		return
	}

	data, err := h.exportService.ToPDFDetail(ctx, report)
	if err != nil {
		if contextutils.IsError(err, contextutils.ErrRenderUnavailable) {
			HandleAppError(c, err)
			return
		}
		h.logger.Error(ctx, "PDF detail export failed", err, nil)
		HandleAppError(c, err)
		return
	}

	filename := fmt.Sprintf("report_%d.pdf", report.ID)
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}
