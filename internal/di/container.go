// Package di provides the dependency injection container managing service lifecycle and dependencies.
package di

import (
	"context"
	"database/sql"
	"sync"

	"reportdesk/internal/config"
	"reportdesk/internal/database"
	"reportdesk/internal/observability"
	"reportdesk/internal/services"
	"reportdesk/internal/store"
	contextutils "reportdesk/internal/utils"
)

// ServiceContainer manages service dependencies and lifecycle. All services
// here are concrete types; the container exists to keep construction order
// and shutdown order in one place.
type ServiceContainer struct {
	cfg           *config.Config
	logger        *observability.Logger
	dbManager     *database.Manager
	db            *sql.DB
	reportStore   *store.ReportStore
	attachments   *services.AttachmentService
	reportService *services.ReportService
	exportService *services.ExportService
	mu            sync.RWMutex
	shutdownFuncs []func(context.Context) error
}

// NewServiceContainer creates a new dependency injection container
func NewServiceContainer(cfg *config.Config, logger *observability.Logger) *ServiceContainer {
	return &ServiceContainer{
		cfg:    cfg,
		logger: logger,
	}
}

// Initialize opens the database, ensures the schema exists, and builds the
// service graph. On failure anything already opened is closed again.
func (sc *ServiceContainer) Initialize(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.dbManager = database.NewManager(sc.logger)
	db, err := sc.dbManager.InitDBWithConfig(sc.cfg.Database)
	if err != nil {
		return contextutils.WrapErrorf(err, "failed to initialize database")
	}
	sc.db = db
	sc.shutdownFuncs = append(sc.shutdownFuncs, func(_ context.Context) error {
		return db.Close()
	})

	sc.reportStore = store.NewReportStore(db, sc.logger)
	if err := sc.reportStore.Initialize(ctx); err != nil {
		_ = sc.cleanup(ctx)
		return contextutils.WrapErrorf(err, "failed to initialize report store")
	}

	sc.attachments = services.NewAttachmentService(sc.cfg.Storage.UploadsDir, sc.logger)
	sc.reportService = services.NewReportService(sc.reportStore, sc.attachments, sc.logger)

	var renderer services.PDFRenderer
	if sc.cfg.Export.PDFEnabled {
		renderer = services.NewGofpdfRenderer()
	}
	sc.exportService = services.NewExportService(renderer, sc.logger)

	sc.logger.Info(ctx, "Service container initialized", map[string]interface{}{
		"database_path": sc.cfg.Database.Path,
		"uploads_dir":   sc.cfg.Storage.UploadsDir,
		"pdf_enabled":   sc.cfg.Export.PDFEnabled,
	})
	return nil
}

// GetReportStore returns the report store
func (sc *ServiceContainer) GetReportStore() *store.ReportStore {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.reportStore
}

// GetAttachmentService returns the attachment service
func (sc *ServiceContainer) GetAttachmentService() *services.AttachmentService {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.attachments
}

// GetReportService returns the report service
func (sc *ServiceContainer) GetReportService() *services.ReportService {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.reportService
}

// GetExportService returns the export service
func (sc *ServiceContainer) GetExportService() *services.ExportService {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.exportService
}

// GetDatabase returns the database instance
func (sc *ServiceContainer) GetDatabase() *sql.DB {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.db
}

// GetConfig returns the configuration
func (sc *ServiceContainer) GetConfig() *config.Config {
	return sc.cfg
}

// GetLogger returns the logger
func (sc *ServiceContainer) GetLogger() *observability.Logger {
	return sc.logger
}

// Shutdown gracefully shuts down everything the container opened
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	return sc.cleanup(ctx)
}

// cleanup runs shutdown functions in reverse order of registration
func (sc *ServiceContainer) cleanup(ctx context.Context) error {
	var errors []error

	for i := len(sc.shutdownFuncs) - 1; i >= 0; i-- {
		if err := sc.shutdownFuncs[i](ctx); err != nil {
			errors = append(errors, err)
		}
	}
	sc.shutdownFuncs = nil

	if len(errors) > 0 {
		return contextutils.ErrorWithContextf("shutdown errors: %v", errors)
	}
	return nil
}
