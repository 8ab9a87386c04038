package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"reportdesk/internal/config"
	"reportdesk/internal/models"
	"reportdesk/internal/observability"
	"reportdesk/internal/services"
	contextutils "reportdesk/internal/utils"
)

// ReportHandler handles report intake, listing and triage endpoints.
type ReportHandler struct {
	reportService *services.ReportService
	config        *config.Config
	logger        *observability.Logger
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(reportService *services.ReportService, cfg *config.Config, logger *observability.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		config:        cfg,
		logger:        logger,
	}
}

// ReportSubmissionRequest represents a JSON POST request without attachment.
type ReportSubmissionRequest struct {
	ReporterName  string `json:"reporter_name"`
	ReporterEmail string `json:"reporter_email"`
	Title         string `json:"title" binding:"required"`
	Category      string `json:"category"`
	Priority      string `json:"priority"`
	Description   string `json:"description"`
}

// StatusUpdateRequest represents a PATCH request applying one or more status edits.
type StatusUpdateRequest struct {
	Edits []models.StatusEdit `json:"edits"`
}

// filterFromQuery builds a ReportFilter from repeated category, priority and
// status query parameters. Values are validated by the service, not here.
func filterFromQuery(c *gin.Context) models.ReportFilter {
	var filter models.ReportFilter
	for _, v := range c.QueryArray("category") {
		filter.Categories = append(filter.Categories, models.Category(v))
	}
	for _, v := range c.QueryArray("priority") {
		filter.Priorities = append(filter.Priorities, models.Priority(v))
	}
	for _, v := range c.QueryArray("status") {
		filter.Statuses = append(filter.Statuses, models.Status(v))
	}
	return filter
}

// CreateReport handles POST /v1/reports. The endpoint accepts either a
// multipart form (the intake form with an optional attachment file part) or a
// plain JSON body without attachment.
func (h *ReportHandler) CreateReport(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "create_report")
	defer observability.FinishSpan(span, nil)

	var req services.SubmitRequest
	if c.ContentType() == "multipart/form-data" {
		parsed, err := h.submissionFromMultipart(c)
		if err != nil {
			HandleAppError(c, err)
			return
		}
		req = *parsed
	} else {
		var body ReportSubmissionRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleAppError(c, contextutils.NewAppErrorWithCause(
				contextutils.ErrorCodeInvalidInput,
				contextutils.SeverityWarn,
				"Invalid request body",
				"",
				err,
			))
			return
		}
		req = services.SubmitRequest{
			ReporterName:  body.ReporterName,
			ReporterEmail: body.ReporterEmail,
			Title:         body.Title,
			Category:      body.Category,
			Priority:      body.Priority,
			Description:   body.Description,
		}
	}

	report, err := h.reportService.Submit(ctx, req)
	if err != nil {
		h.logger.Error(ctx, "submit report failed", err, nil)
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

// submissionFromMultipart reads the intake form fields and the optional
// attachment file part into a SubmitRequest.
func (h *ReportHandler) submissionFromMultipart(c *gin.Context) (result0 *services.SubmitRequest, err error) {
	req := &services.SubmitRequest{
		ReporterName:  c.PostForm("reporter_name"),
		ReporterEmail: c.PostForm("reporter_email"),
		Title:         c.PostForm("title"),
		Category:      c.PostForm("category"),
		Priority:      c.PostForm("priority"),
		Description:   c.PostForm("description"),
	}

	fileHeader, err := c.FormFile("attachment")
	if err != nil {
		// The attachment part is optional
		if errors.Is(err, http.ErrMissingFile) {
			return req, nil
		}
		return nil, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityWarn,
			"Invalid multipart form",
			"",
			err,
		)
	}

	maxBytes := h.config.Server.MaxUploadBytesOrDefault()
	if fileHeader.Size > maxBytes {
		return nil, contextutils.NewAppError(
			contextutils.ErrorCodeValidationFailed,
			contextutils.SeverityWarn,
			"Attachment too large",
			fmt.Sprintf("attachment '%s' exceeds the %d byte limit", fileHeader.Filename, maxBytes),
		)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to open attachment part")
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to read attachment part")
	}

	req.AttachmentName = fileHeader.Filename
	req.AttachmentData = data
	return req, nil
}

// ListReports handles GET /v1/reports. Repeated category, priority and status
// query parameters restrict the listing.
func (h *ReportHandler) ListReports(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "list_reports")
	defer observability.FinishSpan(span, nil)

	reports, err := h.reportService.ListFiltered(ctx, filterFromQuery(c))
	if err != nil {
		h.logger.Error(ctx, "list reports failed", err, nil)
		HandleAppError(c, err)
		return
	}

	if reports == nil {
		reports = []models.Report{}
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports, "total": len(reports)})
}

// GetReport handles GET /v1/reports/:id.
func (h *ReportHandler) GetReport(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_report")
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
		h.logger.Error(ctx, "get report failed", err, nil)
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// UpdateStatuses handles PATCH /v1/reports/status. The whole batch applies
// atomically; any invalid edit leaves every report unchanged.
func (h *ReportHandler) UpdateStatuses(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "update_statuses")
	defer observability.FinishSpan(span, nil)

	var req StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleAppError(c, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityWarn,
			"Invalid request body",
			"",
			err,
		))
		return
	}

	if err := h.reportService.ApplyStatusEdits(ctx, req.Edits); err != nil {
		h.logger.Error(ctx, "apply status edits failed", err, nil)
		HandleAppError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetFilterOptions handles GET /v1/reports/filters.
func (h *ReportHandler) GetFilterOptions(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_filter_options")
	defer observability.FinishSpan(span, nil)

	options, err := h.reportService.FilterOptions(ctx)
	if err != nil {
		h.logger.Error(ctx, "get filter options failed", err, nil)
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, options)
}

// GetDashboard handles GET /v1/dashboard.
func (h *ReportHandler) GetDashboard(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_dashboard")
	defer observability.FinishSpan(span, nil)

	summary, err := h.reportService.Summary(ctx)
	if err != nil {
		h.logger.Error(ctx, "get dashboard summary failed", err, nil)
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
