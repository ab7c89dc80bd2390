package repository

import (
	"context"
	"database/sql"
	"time"

	"home_energy/internal/models"
)

type Authorization interface {
	Create(ctx context.Context, email, hash string) (int, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// DeviceRepo scopes every lookup by account; a device of another account is
// indistinguishable from a missing one.
type DeviceRepo interface {
	Create(ctx context.Context, d models.Device) (int, error)
	Get(ctx context.Context, accountID, id int) (models.Device, error)
	ListByAccount(ctx context.Context, accountID int) ([]models.Device, error)
	Update(ctx context.Context, d models.Device) error
	Delete(ctx context.Context, accountID, id int) error
}

type ScheduleRepo interface {
	Get(ctx context.Context, deviceID int) ([]models.ScheduleBlock, error)
	Replace(ctx context.Context, deviceID int, blocks []models.ScheduleBlock) error
	ListByAccount(ctx context.Context, accountID int) (map[int][]models.ScheduleBlock, error)
}

// TelemetryRepo ranges are half-open [from, to); a zero bound is open.
type TelemetryRepo interface {
	Upsert(ctx context.Context, r models.TelemetryReading) error
	ListByDevice(ctx context.Context, deviceID int, from, to time.Time) ([]models.TelemetryReading, error)
	ListByAccount(ctx context.Context, accountID int, from, to time.Time) ([]models.TelemetryReading, error)
}

type Repository struct {
	Auth      Authorization
	Devices   DeviceRepo
	Schedules ScheduleRepo
	Telemetry TelemetryRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Auth:      NewUserRepository(db),
		Devices:   NewDeviceSQLite(db),
		Schedules: NewScheduleSQLite(db),
		Telemetry: NewTelemetrySQLite(db),
	}
}
