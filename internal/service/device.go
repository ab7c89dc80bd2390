package service

import (
	"context"
	"math"
	"strings"
	"unicode/utf8"

	"home_energy/internal/apperr"
	"home_energy/internal/models"
	"home_energy/internal/repository"
)

const (
	maxDeviceNameLen = 100
	maxPowerRatingKW = 50.0
)

type DeviceService struct {
	devices repository.DeviceRepo
}

func NewDeviceService(devices repository.DeviceRepo) *DeviceService {
	return &DeviceService{devices: devices}
}

// requireSession rejects a session that carries no account.
// Expiry is the transport's job; it has already been checked there.
func requireSession(sess models.Session) error {
	if sess.AccountID <= 0 {
		return apperr.Validation("session has no account")
	}
	return nil
}

// normalizeDeviceParams trims input and checks ranges. Unknown categories become "other".
func normalizeDeviceParams(p DeviceParams) (models.Device, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return models.Device{}, apperr.Validation("device name is required")
	}
	if utf8.RuneCountInString(name) > maxDeviceNameLen {
		return models.Device{}, apperr.Validation("device name longer than %d characters", maxDeviceNameLen)
	}
	if math.IsNaN(p.PowerRatingKW) || p.PowerRatingKW <= 0 || p.PowerRatingKW > maxPowerRatingKW {
		return models.Device{}, apperr.Validation("power rating must be in (0, %g] kW, got %v", maxPowerRatingKW, p.PowerRatingKW)
	}
	category, _ := models.ParseCategory(p.Category)
	return models.Device{
		Name:          name,
		Category:      category,
		Room:          strings.TrimSpace(p.Room),
		PowerRatingKW: p.PowerRatingKW,
	}, nil
}

func (s *DeviceService) CreateDevice(ctx context.Context, sess models.Session, p DeviceParams) (models.Device, error) {
	if err := requireSession(sess); err != nil {
		return models.Device{}, err
	}
	d, err := normalizeDeviceParams(p)
	if err != nil {
		return models.Device{}, err
	}
	d.AccountID = sess.AccountID

	id, err := s.devices.Create(ctx, d)
	if err != nil {
		return models.Device{}, err
	}
	return s.devices.Get(ctx, sess.AccountID, id)
}

func (s *DeviceService) GetDevice(ctx context.Context, sess models.Session, id int) (models.Device, error) {
	if err := requireSession(sess); err != nil {
		return models.Device{}, err
	}
	return s.devices.Get(ctx, sess.AccountID, id)
}

func (s *DeviceService) ListDevices(ctx context.Context, sess models.Session) ([]models.Device, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	return s.devices.ListByAccount(ctx, sess.AccountID)
}

func (s *DeviceService) UpdateDevice(ctx context.Context, sess models.Session, id int, p DeviceParams) (models.Device, error) {
	if err := requireSession(sess); err != nil {
		return models.Device{}, err
	}
	d, err := normalizeDeviceParams(p)
	if err != nil {
		return models.Device{}, err
	}
	d.ID = id
	d.AccountID = sess.AccountID

	if err := s.devices.Update(ctx, d); err != nil {
		return models.Device{}, err
	}
	return s.devices.Get(ctx, sess.AccountID, id)
}

// DeleteDevice removes the device with its schedule and telemetry.
func (s *DeviceService) DeleteDevice(ctx context.Context, sess models.Session, id int) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	return s.devices.Delete(ctx, sess.AccountID, id)
}
