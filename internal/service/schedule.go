package service

import (
	"context"

	"home_energy/internal/energy"
	"home_energy/internal/models"
	"home_energy/internal/repository"
)

type ScheduleService struct {
	devices   repository.DeviceRepo
	schedules repository.ScheduleRepo
	locks     *keyedMutex
}

func NewScheduleService(devices repository.DeviceRepo, schedules repository.ScheduleRepo) *ScheduleService {
	return &ScheduleService{devices: devices, schedules: schedules, locks: newKeyedMutex()}
}

// GetSchedule returns the device's blocks ordered by (day, start).
// An unscheduled device yields an empty slice.
func (s *ScheduleService) GetSchedule(ctx context.Context, sess models.Session, deviceID int) ([]models.ScheduleBlock, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if _, err := s.devices.Get(ctx, sess.AccountID, deviceID); err != nil {
		return nil, err
	}
	return s.schedules.Get(ctx, deviceID)
}

// SetSchedule validates blocks and replaces the device's whole schedule.
// Invalid input leaves the stored schedule untouched. Concurrent calls for
// the same device run one after another; the last one wins.
func (s *ScheduleService) SetSchedule(ctx context.Context, sess models.Session, deviceID int, blocks []models.ScheduleBlock) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	if err := energy.ValidateSchedule(blocks); err != nil {
		return err
	}
	if _, err := s.devices.Get(ctx, sess.AccountID, deviceID); err != nil {
		return err
	}

	unlock := s.locks.Lock(deviceID)
	defer unlock()

	return s.schedules.Replace(ctx, deviceID, energy.SortBlocks(blocks))
}
