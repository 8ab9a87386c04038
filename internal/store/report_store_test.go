package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"reportdesk/internal/config"
	"reportdesk/internal/database"
	"reportdesk/internal/models"
	"reportdesk/internal/observability"
	contextutils "reportdesk/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to set up a store backed by a fresh database file
func setupTestStore(t *testing.T) *ReportStore {
	logger := observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
	dbManager := database.NewManager(logger)
	db, err := dbManager.InitDB(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	s := NewReportStore(db, logger)
	require.NoError(t, s.Initialize(context.Background()))
	return s
}

func insertTestReport(t *testing.T, s *ReportStore, title string, category models.Category, priority models.Priority) int64 {
	id, err := s.Insert(context.Background(), &models.Report{
		Title:    title,
		Category: category,
		Priority: priority,
	})
	require.NoError(t, err)
	return id
}

func TestReportStore_Initialize_Idempotent(t *testing.T) {
	s := setupTestStore(t)

	// Initialize is called on every process start, so a second run over the
	// same file must succeed
	require.NoError(t, s.Initialize(context.Background()))
	require.NoError(t, s.Initialize(context.Background()))
}

func TestReportStore_Reset(t *testing.T) {
	s := setupTestStore(t)

	insertTestReport(t, s, "gone after reset", models.CategoryGeneral, models.PriorityLow)
	require.NoError(t, s.Reset(context.Background()))

	count, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// The recreated table is usable and ids restart
	id := insertTestReport(t, s, "fresh start", models.CategoryGeneral, models.PriorityLow)
	assert.Equal(t, int64(1), id)
}

func TestReportStore_Insert(t *testing.T) {
	s := setupTestStore(t)

	report := &models.Report{
		ReporterName:  sql.NullString{String: "Dana", Valid: true},
		ReporterEmail: sql.NullString{String: "dana@example.com", Valid: true},
		Title:         "Printer broken",
		Category:      models.CategoryTechnical,
		Priority:      models.PriorityHigh,
		Description:   sql.NullString{String: "Third floor printer jams on every job", Valid: true},
	}

	id, err := s.Insert(context.Background(), report)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))
	assert.Equal(t, models.StatusNew, report.Status)
	assert.WithinDuration(t, time.Now(), report.CreatedAt, 2*time.Second)

	stored, err := s.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, stored.ID)
	assert.Equal(t, "Printer broken", stored.Title)
	assert.Equal(t, models.CategoryTechnical, stored.Category)
	assert.Equal(t, models.PriorityHigh, stored.Priority)
	assert.Equal(t, models.StatusNew, stored.Status)
	assert.Equal(t, "Dana", stored.ReporterName.String)
	assert.Equal(t, "dana@example.com", stored.ReporterEmail.String)
	assert.Equal(t, "Third floor printer jams on every job", stored.Description.String)
	assert.False(t, stored.AttachmentPath.Valid)
	assert.True(t, stored.CreatedAt.Equal(report.CreatedAt), "stored timestamp should round-trip")
}

func TestReportStore_Insert_AssignsIncreasingIDs(t *testing.T) {
	s := setupTestStore(t)

	first := insertTestReport(t, s, "first", models.CategoryGeneral, models.PriorityMedium)
	second := insertTestReport(t, s, "second", models.CategoryGeneral, models.PriorityMedium)
	third := insertTestReport(t, s, "third", models.CategoryGeneral, models.PriorityMedium)

	assert.Greater(t, second, first)
	assert.Greater(t, third, second)
}

func TestReportStore_Insert_EmptyTitle(t *testing.T) {
	s := setupTestStore(t)

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := s.Insert(context.Background(), &models.Report{
			Title:    title,
			Category: models.CategoryGeneral,
			Priority: models.PriorityMedium,
		})
		require.Error(t, err)
		assert.True(t, contextutils.IsError(err, contextutils.ErrMissingRequired))
	}

	// No row may be written for a rejected submission
	total, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestReportStore_ListAll_OrderedByIDDescending(t *testing.T) {
	s := setupTestStore(t)

	first := insertTestReport(t, s, "first", models.CategoryGeneral, models.PriorityLow)
	second := insertTestReport(t, s, "second", models.CategoryTechnical, models.PriorityMedium)
	third := insertTestReport(t, s, "third", models.CategoryFinance, models.PriorityHigh)

	list, err := s.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, third, list[0].ID)
	assert.Equal(t, second, list[1].ID)
	assert.Equal(t, first, list[2].ID)
}

func TestReportStore_ListFiltered(t *testing.T) {
	s := setupTestStore(t)

	generalLow := insertTestReport(t, s, "general low", models.CategoryGeneral, models.PriorityLow)
	technicalHigh := insertTestReport(t, s, "technical high", models.CategoryTechnical, models.PriorityHigh)
	financeHigh := insertTestReport(t, s, "finance high", models.CategoryFinance, models.PriorityHigh)
	require.NoError(t, s.UpdateStatus(context.Background(), financeHigh, models.StatusDone))

	t.Run("empty filter returns everything", func(t *testing.T) {
		list, err := s.ListFiltered(context.Background(), models.ReportFilter{})
		require.NoError(t, err)
		assert.Len(t, list, 3)
	})

	t.Run("values within a dimension combine with OR", func(t *testing.T) {
		list, err := s.ListFiltered(context.Background(), models.ReportFilter{
			Categories: []models.Category{models.CategoryGeneral, models.CategoryTechnical},
		})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, technicalHigh, list[0].ID)
		assert.Equal(t, generalLow, list[1].ID)
	})

	t.Run("dimensions combine with AND", func(t *testing.T) {
		list, err := s.ListFiltered(context.Background(), models.ReportFilter{
			Priorities: []models.Priority{models.PriorityHigh},
			Statuses:   []models.Status{models.StatusDone},
		})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, financeHigh, list[0].ID)
	})

	t.Run("no matches yields empty list", func(t *testing.T) {
		list, err := s.ListFiltered(context.Background(), models.ReportFilter{
			Categories: []models.Category{models.CategoryHumanResources},
		})
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestReportStore_GetByID_NotFound(t *testing.T) {
	s := setupTestStore(t)

	report, err := s.GetByID(context.Background(), 12345)
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, contextutils.IsError(err, contextutils.ErrRecordNotFound))
}

func TestReportStore_UpdateStatus(t *testing.T) {
	s := setupTestStore(t)

	id := insertTestReport(t, s, "Printer broken", models.CategoryTechnical, models.PriorityHigh)
	before, err := s.GetByID(context.Background(), id)
	require.NoError(t, err)

	require.NoError(t, s.UpdateStatus(context.Background(), id, models.StatusInProgress))

	after, err := s.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, after.Status)

	// Only the status column may change
	assert.Equal(t, before.Title, after.Title)
	assert.Equal(t, before.Category, after.Category)
	assert.Equal(t, before.Priority, after.Priority)
	assert.True(t, before.CreatedAt.Equal(after.CreatedAt))
}

func TestReportStore_UpdateStatus_InvalidStatus(t *testing.T) {
	s := setupTestStore(t)

	id := insertTestReport(t, s, "report", models.CategoryGeneral, models.PriorityMedium)

	err := s.UpdateStatus(context.Background(), id, models.Status("Archived"))
	require.Error(t, err)
	assert.True(t, contextutils.IsError(err, contextutils.ErrInvalidInput))

	stored, err := s.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, stored.Status)
}

func TestReportStore_UpdateStatus_NotFound(t *testing.T) {
	s := setupTestStore(t)

	err := s.UpdateStatus(context.Background(), 999, models.StatusDone)
	require.Error(t, err)
	assert.True(t, contextutils.IsError(err, contextutils.ErrRecordNotFound))
}

func TestReportStore_UpdateStatusBatch(t *testing.T) {
	s := setupTestStore(t)

	first := insertTestReport(t, s, "first", models.CategoryGeneral, models.PriorityLow)
	second := insertTestReport(t, s, "second", models.CategoryGeneral, models.PriorityLow)

	err := s.UpdateStatusBatch(context.Background(), []models.StatusEdit{
		{ID: first, Status: models.StatusInProgress},
		{ID: second, Status: models.StatusDone},
	})
	require.NoError(t, err)

	firstStored, err := s.GetByID(context.Background(), first)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, firstStored.Status)

	secondStored, err := s.GetByID(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, secondStored.Status)
}

func TestReportStore_UpdateStatusBatch_AtomicOnMissingID(t *testing.T) {
	s := setupTestStore(t)

	first := insertTestReport(t, s, "first", models.CategoryGeneral, models.PriorityLow)
	second := insertTestReport(t, s, "second", models.CategoryGeneral, models.PriorityLow)

	err := s.UpdateStatusBatch(context.Background(), []models.StatusEdit{
		{ID: first, Status: models.StatusDone},
		{ID: 999, Status: models.StatusDone},
		{ID: second, Status: models.StatusDone},
	})
	require.Error(t, err)
	assert.True(t, contextutils.IsError(err, contextutils.ErrRecordNotFound))

	// The whole batch must roll back, including edits listed before the bad one
	for _, id := range []int64{first, second} {
		stored, getErr := s.GetByID(context.Background(), id)
		require.NoError(t, getErr)
		assert.Equal(t, models.StatusNew, stored.Status, "report %d should keep its original status", id)
	}
}

func TestReportStore_UpdateStatusBatch_InvalidStatus(t *testing.T) {
	s := setupTestStore(t)

	id := insertTestReport(t, s, "report", models.CategoryGeneral, models.PriorityLow)

	err := s.UpdateStatusBatch(context.Background(), []models.StatusEdit{
		{ID: id, Status: models.Status("Closed")},
	})
	require.Error(t, err)
	assert.True(t, contextutils.IsError(err, contextutils.ErrInvalidInput))

	stored, err := s.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, stored.Status)
}

func TestReportStore_UpdateStatusBatch_Empty(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, s.UpdateStatusBatch(context.Background(), nil))
}

func TestReportStore_Aggregates_EmptyStore(t *testing.T) {
	s := setupTestStore(t)

	total, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	byStatus, err := s.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Empty(t, byStatus)

	trend, err := s.CountByDate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, trend)
}

func TestReportStore_Aggregates(t *testing.T) {
	s := setupTestStore(t)

	insertTestReport(t, s, "a", models.CategoryGeneral, models.PriorityLow)
	insertTestReport(t, s, "b", models.CategoryGeneral, models.PriorityHigh)
	done := insertTestReport(t, s, "c", models.CategoryTechnical, models.PriorityHigh)
	require.NoError(t, s.UpdateStatus(context.Background(), done, models.StatusDone))

	total, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	byStatus, err := s.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"New": 2, "Done": 1}, byStatus)

	byCategory, err := s.CountByCategory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"General": 2, "Technical": 1}, byCategory)

	byPriority, err := s.CountByPriority(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Low": 1, "High": 2}, byPriority)
}

func TestReportStore_CountByDate(t *testing.T) {
	s := setupTestStore(t)

	insertTestReport(t, s, "a", models.CategoryGeneral, models.PriorityLow)
	insertTestReport(t, s, "b", models.CategoryGeneral, models.PriorityLow)

	trend, err := s.CountByDate(context.Background())
	require.NoError(t, err)
	require.Len(t, trend, 1)
	assert.Equal(t, time.Now().Format("2006-01-02"), trend[0].Date)
	assert.Equal(t, 2, trend[0].Count)
}

func TestReportStore_DistinctValues(t *testing.T) {
	s := setupTestStore(t)

	insertTestReport(t, s, "a", models.CategoryTechnical, models.PriorityHigh)
	insertTestReport(t, s, "b", models.CategoryFinance, models.PriorityLow)
	insertTestReport(t, s, "c", models.CategoryFinance, models.PriorityHigh)

	categories, err := s.DistinctCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Finance", "Technical"}, categories)

	priorities, err := s.DistinctPriorities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"High", "Low"}, priorities)
}

func TestReportStore_StatusLifecycle(t *testing.T) {
	s := setupTestStore(t)

	id := insertTestReport(t, s, "Printer broken", models.CategoryTechnical, models.PriorityHigh)

	list, err := s.ListAll(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, list)
	assert.Equal(t, models.StatusNew, list[0].Status)

	require.NoError(t, s.UpdateStatusBatch(context.Background(), []models.StatusEdit{
		{ID: id, Status: models.StatusInProgress},
	}))

	stored, err := s.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, stored.Status)
	assert.Equal(t, "Printer broken", stored.Title)
	assert.Equal(t, models.CategoryTechnical, stored.Category)
	assert.Equal(t, models.PriorityHigh, stored.Priority)
}
