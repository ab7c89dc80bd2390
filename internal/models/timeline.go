package models

import "time"

// Resolution is the bucket width of a series.
type Resolution string

const (
	ResolutionHour Resolution = "hour"
	ResolutionDay  Resolution = "day"
)

// View selects the window of a timeline.
type View string

const (
	ViewDaily   View = "daily"
	ViewWeekly  View = "weekly"
	ViewMonthly View = "monthly"
)

// EntryKind tags where a timeline value came from.
type EntryKind string

const (
	EntryActual   EntryKind = "actual"
	EntryForecast EntryKind = "forecast"
)

// ForecastPoint is a schedule-derived projection. Never persisted.
type ForecastPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Usage     float64   `json:"usage"`
}

// TimelineEntry carries exactly one of ActualUsage / ForecastUsage; Kind says which.
type TimelineEntry struct {
	Timestamp     time.Time `json:"timestamp"`
	Kind          EntryKind `json:"kind"`
	ActualUsage   *float64  `json:"actual_usage"`
	ForecastUsage *float64  `json:"forecast_usage"`
}

// Usage returns the populated value.
func (e TimelineEntry) Usage() float64 {
	if e.Kind == EntryActual && e.ActualUsage != nil {
		return *e.ActualUsage
	}
	if e.ForecastUsage != nil {
		return *e.ForecastUsage
	}
	return 0
}
