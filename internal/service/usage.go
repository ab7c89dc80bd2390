package service

import (
	"context"
	"time"

	"home_energy/internal/energy"
	"home_energy/internal/models"
	"home_energy/internal/repository"
)

const defaultCurrency = "USD"

type UsageService struct {
	devices     repository.DeviceRepo
	schedules   repository.ScheduleRepo
	readings    repository.TelemetryRepo
	pricePerKWh float64
	currency    string
	now         func() time.Time
}

func NewUsageService(devices repository.DeviceRepo, schedules repository.ScheduleRepo, readings repository.TelemetryRepo, pricePerKWh float64, currency string) *UsageService {
	if currency == "" {
		currency = defaultCurrency
	}
	return &UsageService{
		devices:     devices,
		schedules:   schedules,
		readings:    readings,
		pricePerKWh: pricePerKWh,
		currency:    currency,
		now:         time.Now,
	}
}

// flattenSchedules merges every device's blocks into one account profile.
// Evaluation is additive, so merging preserves per-device totals.
func flattenSchedules(byDevice map[int][]models.ScheduleBlock) []models.ScheduleBlock {
	n := 0
	for _, b := range byDevice {
		n += len(b)
	}
	out := make([]models.ScheduleBlock, 0, n)
	for _, b := range byDevice {
		out = append(out, b...)
	}
	return out
}

// CurrentUsage is the schedule-derived draw right now, per device and per room.
func (s *UsageService) CurrentUsage(ctx context.Context, sess models.Session) (models.CurrentUsage, error) {
	if err := requireSession(sess); err != nil {
		return models.CurrentUsage{}, err
	}
	devices, err := s.devices.ListByAccount(ctx, sess.AccountID)
	if err != nil {
		return models.CurrentUsage{}, err
	}
	schedules, err := s.schedules.ListByAccount(ctx, sess.AccountID)
	if err != nil {
		return models.CurrentUsage{}, err
	}
	return energy.Breakdown(devices, schedules, s.now()), nil
}

// DailyTotal sums today's recorded kWh (local calendar day).
func (s *UsageService) DailyTotal(ctx context.Context, sess models.Session) (float64, error) {
	if err := requireSession(sess); err != nil {
		return 0, err
	}
	now := s.now()
	start, end := energy.DayBounds(now)
	readings, err := s.readings.ListByAccount(ctx, sess.AccountID, start, end)
	if err != nil {
		return 0, err
	}
	return energy.DailyTotal(readings, now), nil
}

// MonthlyCost projects this month from the weekly schedule. Month-to-date
// readings are reported alongside and never mixed into the projection.
func (s *UsageService) MonthlyCost(ctx context.Context, sess models.Session) (models.MonthlyCost, error) {
	if err := requireSession(sess); err != nil {
		return models.MonthlyCost{}, err
	}
	now := s.now()

	schedules, err := s.schedules.ListByAccount(ctx, sess.AccountID)
	if err != nil {
		return models.MonthlyCost{}, err
	}
	p := energy.ProjectMonth(flattenSchedules(schedules), s.pricePerKWh, now)

	monthStart, _ := energy.MonthBounds(now)
	readings, err := s.readings.ListByAccount(ctx, sess.AccountID, monthStart, now.Add(time.Second))
	if err != nil {
		return models.MonthlyCost{}, err
	}
	mtd := energy.SumThrough(readings, monthStart, now)

	return models.MonthlyCost{
		WeeklyKWh:       p.WeeklyKWh,
		ProjectedKWh:    p.ProjectedKWh,
		Amount:          p.Cost,
		Currency:        s.currency,
		PricePerKWh:     s.pricePerKWh,
		DaysInMonth:     p.DaysInMonth,
		MonthToDateKWh:  mtd,
		MonthToDateCost: mtd * s.pricePerKWh,
		DaysRemaining:   p.DaysInMonth - now.Day(),
	}, nil
}
