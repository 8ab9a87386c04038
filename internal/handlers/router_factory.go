package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"

	"reportdesk/internal/config"
	"reportdesk/internal/middleware"
	"reportdesk/internal/observability"
	"reportdesk/internal/services"
	"reportdesk/internal/version"
)

// NewRouter creates the gin engine with all middleware and routes. The service
// is an internal tool, so there is no authentication layer; every endpoint is
// reachable on the office network.
func NewRouter(
	cfg *config.Config,
	reportService *services.ReportService,
	exportService *services.ExportService,
	logger *observability.Logger,
) *gin.Engine {
	// Setup Gin router
	router := gin.New()
	router.Use(middleware.Recovery(logger))

	// Cap how much of a multipart form gin buffers in memory. The hard upload
	// limit is enforced per file in the report handler.
	router.MaxMultipartMemory = cfg.Server.MaxUploadBytesOrDefault()

	// Add HTTP request logging middleware using our observability logger
	router.Use(func(c *gin.Context) {
		start := time.Now()

		// Process request
		c.Next()

		// Log request details using our observability logger
		latency := time.Since(start)
		statusCode := c.Writer.Status()

		fields := map[string]interface{}{
			"http.method":      c.Request.Method,
			"http.path":        c.Request.URL.Path,
			"http.status_code": statusCode,
			"http.latency_ms":  latency.Milliseconds(),
			"http.client_ip":   c.ClientIP(),
			"http.user_agent":  c.Request.UserAgent(),
		}

		// Add error message if present
		if len(c.Errors) > 0 {
			fields["http.error"] = c.Errors.String()
		}

		// Use the log level matching the response class
		if statusCode >= 500 {
			logger.Error(c.Request.Context(), "HTTP request failed", nil, fields)
		} else if statusCode >= 400 {
			logger.Warn(c.Request.Context(), "HTTP request warning", fields)
		} else {
			logger.Info(c.Request.Context(), "HTTP request", fields)
		}
	})

	// Health check endpoint (defined before any middleware)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "reportdesk"})
	})

	// Add OpenTelemetry middleware for HTTP tracing and context propagation.
	// Error attributes are recorded by a second middleware so they land
	// before otelgin closes the request span
	router.Use(observability.GinMiddleware("reportdesk"))
	router.Use(observability.GinErrorAttributes())

	// Disable automatic redirection for trailing slashes, which is better for APIs
	router.RedirectTrailingSlash = false

	// Setup CORS middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "X-Requested-With"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Setup Gin mode
	gin.SetMode(gin.ReleaseMode)
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	}

	// Security middleware
	secureConfig := secure.DefaultConfig()
	secureConfig.SSLRedirect = false
	secureConfig.ContentSecurityPolicy = config.DefaultCSP
	router.Use(secure.New(secureConfig))

	// Initialize handlers
	reportHandler := NewReportHandler(reportService, cfg, logger)
	exportHandler := NewExportHandler(reportService, exportService, logger)

	// V1 routes
	v1 := router.Group("/v1")
	{
		// Version endpoint (build info stamped at link time)
		v1.GET("/version", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"service":   "reportdesk",
				"version":   version.Version,
				"commit":    version.Commit,
				"buildTime": version.BuildTime,
			})
		})

		reports := v1.Group("/reports")
		{
			reports.POST("", reportHandler.CreateReport)
			reports.GET("", reportHandler.ListReports)
			reports.GET("/filters", reportHandler.GetFilterOptions)
			reports.PATCH("/status", reportHandler.UpdateStatuses)
			reports.GET("/:id", reportHandler.GetReport)
			reports.GET("/:id/pdf", exportHandler.ExportReportPDF)
		}

		v1.GET("/dashboard", reportHandler.GetDashboard)

		exports := v1.Group("/exports")
		{
			exports.GET("/capabilities", exportHandler.GetCapabilities)
			exports.GET("/reports.csv", exportHandler.ExportCSV)
			exports.GET("/reports.pdf", exportHandler.ExportListPDF)
		}
	}

	// JSON 404 for anything unrouted
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	// Automatic route listing at root path
	routeListing := NewRouteListingHandler("reportdesk")
	routeListing.CollectRoutes(router)

	router.GET("/", func(c *gin.Context) {
		if c.Query("json") == "true" {
			routeListing.GetRouteListingJSON(c)
		} else {
			routeListing.GetRouteListingPage(c)
		}
	})

	return router
}
