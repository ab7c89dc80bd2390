package service

import (
	"context"
	"math"
	"time"

	"home_energy/internal/apperr"
	"home_energy/internal/ingest"
	"home_energy/internal/logger"
	"home_energy/internal/models"
	"home_energy/internal/repository"
)

type TelemetryService struct {
	devices   repository.DeviceRepo
	readings  repository.TelemetryRepo
	publisher ingest.Publisher
	log       *logger.Logger
	now       func() time.Time
}

// NewTelemetryService builds the in-process telemetry sink. publisher may be nil.
func NewTelemetryService(devices repository.DeviceRepo, readings repository.TelemetryRepo, publisher ingest.Publisher, log *logger.Logger) *TelemetryService {
	if log == nil {
		log = logger.Nop()
	}
	return &TelemetryService{devices: devices, readings: readings, publisher: publisher, log: log, now: time.Now}
}

var _ ingest.Submitter = (*TelemetryService)(nil)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f ReadingFilter) (time.Time, time.Time, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, apperr.Validation("invalid time range: from %s is after to %s",
			from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	return from, to, nil
}

// Submit stores one reading for a device the caller owns. A reading for an
// existing (device, second) replaces it. A zero timestamp means now.
func (s *TelemetryService) Submit(ctx context.Context, sess models.Session, r models.TelemetryReading) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	if math.IsNaN(r.EnergyUsage) || math.IsInf(r.EnergyUsage, 0) || r.EnergyUsage < 0 {
		return apperr.Validation("energy usage must be a non-negative number, got %v", r.EnergyUsage)
	}
	if _, err := s.devices.Get(ctx, sess.AccountID, r.DeviceID); err != nil {
		return err
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = s.now()
	}
	r.Timestamp = r.Timestamp.UTC().Truncate(time.Second)

	if err := s.readings.Upsert(ctx, r); err != nil {
		return err
	}

	if s.publisher != nil {
		// the reading is stored; a mirror failure is not the caller's problem
		if err := s.publisher.Publish(ctx, r); err != nil {
			s.log.Warnw("telemetry_mirror_failed", "device_id", r.DeviceID, "err", err)
		}
	}
	return nil
}

func (s *TelemetryService) ListReadings(ctx context.Context, sess models.Session, deviceID int, f ReadingFilter) ([]models.TelemetryReading, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	from, to, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	if _, err := s.devices.Get(ctx, sess.AccountID, deviceID); err != nil {
		return nil, err
	}
	return s.readings.ListByDevice(ctx, deviceID, from, to)
}
