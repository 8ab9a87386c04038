// Package models defines the data structures shared across the reporting service.
package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// TimestampLayout is the storage format for report timestamps, second precision,
// no timezone suffix. The trend aggregation relies on the date being the first
// ten characters.
const TimestampLayout = "2006-01-02T15:04:05"

// Category classifies a report by the area it concerns.
type Category string

const (
	// CategoryGeneral is the default category for uncategorized reports
	CategoryGeneral Category = "General"
	// CategoryTechnical covers infrastructure and equipment issues
	CategoryTechnical Category = "Technical"
	// CategoryFinance covers budget and reimbursement issues
	CategoryFinance Category = "Finance"
	// CategoryHumanResources covers personnel issues
	CategoryHumanResources Category = "HumanResources"
	// CategoryOther is the catch-all category
	CategoryOther Category = "Other"
)

// Priority expresses how urgently a report needs attention.
type Priority string

const (
	// PriorityLow marks reports that can wait
	PriorityLow Priority = "Low"
	// PriorityMedium is the default priority for new reports
	PriorityMedium Priority = "Medium"
	// PriorityHigh marks reports needing prompt attention
	PriorityHigh Priority = "High"
)

// Status tracks a report through triage.
type Status string

const (
	// StatusNew is assigned to every report on submission
	StatusNew Status = "New"
	// StatusInProgress marks reports someone is actively working
	StatusInProgress Status = "InProgress"
	// StatusDone marks resolved reports
	StatusDone Status = "Done"
)

// AllCategories returns the closed set of report categories in display order.
func AllCategories() []Category {
	return []Category{CategoryGeneral, CategoryTechnical, CategoryFinance, CategoryHumanResources, CategoryOther}
}

// AllPriorities returns the closed set of priorities in ascending order.
func AllPriorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// AllStatuses returns the closed set of statuses in lifecycle order.
func AllStatuses() []Status {
	return []Status{StatusNew, StatusInProgress, StatusDone}
}

// Valid reports whether c is a member of the category set.
func (c Category) Valid() bool {
	switch c {
	case CategoryGeneral, CategoryTechnical, CategoryFinance, CategoryHumanResources, CategoryOther:
		return true
	}
	return false
}

// Valid reports whether p is a member of the priority set.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Valid reports whether s is a member of the status set.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Report represents one submitted report. Category and Priority are empty when
// the row was stored without them; reporter identity, description and the
// attachment path are nullable in storage.
type Report struct {
	ID             int64          `json:"id" db:"id"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	ReporterName   sql.NullString `json:"reporter_name" db:"reporter_name"`
	ReporterEmail  sql.NullString `json:"reporter_email" db:"reporter_email"`
	Title          string         `json:"title" db:"title"`
	Category       Category       `json:"category" db:"category"`
	Priority       Priority       `json:"priority" db:"priority"`
	Description    sql.NullString `json:"description" db:"description"`
	Status         Status         `json:"status" db:"status"`
	AttachmentPath sql.NullString `json:"attachment_path" db:"attachment_path"`
}

// MarshalJSON renders nullable columns as JSON null and the timestamp in its
// storage format rather than RFC 3339.
func (r Report) MarshalJSON() (result0 []byte, err error) {
	return json.Marshal(&struct {
		ID             int64   `json:"id"`
		CreatedAt      string  `json:"created_at"`
		ReporterName   *string `json:"reporter_name"`
		ReporterEmail  *string `json:"reporter_email"`
		Title          string  `json:"title"`
		Category       *string `json:"category"`
		Priority       *string `json:"priority"`
		Description    *string `json:"description"`
		Status         string  `json:"status"`
		AttachmentPath *string `json:"attachment_path"`
	}{
		ID:             r.ID,
		CreatedAt:      r.CreatedAt.Format(TimestampLayout),
		ReporterName:   nullStringToPointer(r.ReporterName),
		ReporterEmail:  nullStringToPointer(r.ReporterEmail),
		Title:          r.Title,
		Category:       emptyStringToPointer(string(r.Category)),
		Priority:       emptyStringToPointer(string(r.Priority)),
		Description:    nullStringToPointer(r.Description),
		Status:         string(r.Status),
		AttachmentPath: nullStringToPointer(r.AttachmentPath),
	})
}

// Helper functions for converting storage null representations to pointers
func nullStringToPointer(ns sql.NullString) *string {
	if ns.Valid {
		return &ns.String
	}
	return nil
}

func emptyStringToPointer(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StatusEdit is one requested status change in a triage batch.
type StatusEdit struct {
	ID     int64  `json:"id"`
	Status Status `json:"status"`
}

// ReportFilter restricts a listing. An empty slice leaves that dimension
// unrestricted; members of a slice combine with OR, the three dimensions
// combine with AND.
type ReportFilter struct {
	Categories []Category `json:"categories"`
	Priorities []Priority `json:"priorities"`
	Statuses   []Status   `json:"statuses"`
}

// IsZero reports whether the filter restricts nothing.
func (f ReportFilter) IsZero() bool {
	return len(f.Categories) == 0 && len(f.Priorities) == 0 && len(f.Statuses) == 0
}

// DateCount is one point of the submission trend.
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DashboardSummary aggregates the whole table for the dashboard. ByStatus
// carries every status even when its count is zero; ByCategory and ByPriority
// only carry values present in the data; Trend is ordered by date ascending
// and never includes days without submissions.
type DashboardSummary struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status"`
	ByCategory map[string]int `json:"by_category"`
	ByPriority map[string]int `json:"by_priority"`
	Trend      []DateCount    `json:"trend"`
}

// FilterOptions lists the values the presentation layer can offer as filters.
// Categories and priorities reflect distinct values present in the data; the
// status list is always the full set.
type FilterOptions struct {
	Categories []string `json:"categories"`
	Priorities []string `json:"priorities"`
	Statuses   []Status `json:"statuses"`
}
