package service

import (
	"context"
	"time"

	"home_energy/internal/energy"
	"home_energy/internal/models"
	"home_energy/internal/repository"
)

type TimelineService struct {
	schedules repository.ScheduleRepo
	readings  repository.TelemetryRepo
	now       func() time.Time
}

func NewTimelineService(schedules repository.ScheduleRepo, readings repository.TelemetryRepo) *TimelineService {
	return &TimelineService{schedules: schedules, readings: readings, now: time.Now}
}

// GetTimeline merges recorded actuals and schedule forecast for the account
// over the window of view, ascending and tagged per entry.
func (s *TimelineService) GetTimeline(ctx context.Context, sess models.Session, view models.View) ([]models.TimelineEntry, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	now := s.now()
	w, err := energy.WindowFor(view, now)
	if err != nil {
		return nil, err
	}

	readings, err := s.readings.ListByAccount(ctx, sess.AccountID, w.Start, now.Add(time.Second))
	if err != nil {
		return nil, err
	}
	schedules, err := s.schedules.ListByAccount(ctx, sess.AccountID)
	if err != nil {
		return nil, err
	}
	return energy.Combine(w, now, readings, flattenSchedules(schedules)), nil
}
