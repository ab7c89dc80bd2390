package service

import (
	"context"
	"time"

	"home_energy/internal/ingest"
	"home_energy/internal/logger"
	"home_energy/internal/metrics"
	"home_energy/internal/models"
	"home_energy/internal/repository"
)

type Authorization interface {
	SignUp(ctx context.Context, email, password string) (int, error)
	GenerateToken(ctx context.Context, email, password string) (string, error)
	ParseToken(accessToken string) (models.Session, error)
}

// Devices is the thin registry every other operation resolves ownership through.
type Devices interface {
	CreateDevice(ctx context.Context, sess models.Session, p DeviceParams) (models.Device, error)
	GetDevice(ctx context.Context, sess models.Session, id int) (models.Device, error)
	ListDevices(ctx context.Context, sess models.Session) ([]models.Device, error)
	UpdateDevice(ctx context.Context, sess models.Session, id int, p DeviceParams) (models.Device, error)
	DeleteDevice(ctx context.Context, sess models.Session, id int) error
}

// Schedules stores the declarative weekly power profile of each device.
type Schedules interface {
	GetSchedule(ctx context.Context, sess models.Session, deviceID int) ([]models.ScheduleBlock, error)
	SetSchedule(ctx context.Context, sess models.Session, deviceID int, blocks []models.ScheduleBlock) error
}

// Telemetry records and lists readings.
type Telemetry interface {
	Submit(ctx context.Context, sess models.Session, r models.TelemetryReading) error
	ListReadings(ctx context.Context, sess models.Session, deviceID int, f ReadingFilter) ([]models.TelemetryReading, error)
}

// Usage exposes the dashboard figures. Empty accounts yield zeros, never errors.
type Usage interface {
	CurrentUsage(ctx context.Context, sess models.Session) (models.CurrentUsage, error)
	DailyTotal(ctx context.Context, sess models.Session) (float64, error)
	MonthlyCost(ctx context.Context, sess models.Session) (models.MonthlyCost, error)
}

type Timeline interface {
	GetTimeline(ctx context.Context, sess models.Session, view models.View) ([]models.TimelineEntry, error)
}

// Generator synthesizes telemetry for devices without sensors.
type Generator interface {
	Generate(ctx context.Context, sess models.Session, p GenerateParams) (GenerateReport, error)
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Authorization
	Devices
	Schedules
	Telemetry
	Usage
	Timeline
	Generator
}

// Options carries the knobs that come from configuration.
type Options struct {
	SigningKey  string
	TokenTTL    time.Duration
	PricePerKWh float64
	Currency    string
	Location    *time.Location
	Retry       ingest.RetryPolicy
	Publisher   ingest.Publisher // optional MQTT mirror
	Metrics     *metrics.Metrics
	Log         *logger.Logger
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Currency == "" {
		o.Currency = defaultCurrency
	}
	if o.TokenTTL <= 0 {
		o.TokenTTL = defaultTokenTTL
	}
	if o.Log == nil {
		o.Log = logger.Nop()
	}
	return o
}

// NewService wires repository layer into concrete services.
func NewService(repos *repository.Repository, opts Options) *Service {
	opts = opts.withDefaults()
	clock := newClock(opts.Location)

	telemetry := NewTelemetryService(repos.Devices, repos.Telemetry, opts.Publisher, opts.Log)
	telemetry.now = clock

	usage := NewUsageService(repos.Devices, repos.Schedules, repos.Telemetry, opts.PricePerKWh, opts.Currency)
	usage.now = clock

	timeline := NewTimelineService(repos.Schedules, repos.Telemetry)
	timeline.now = clock

	return &Service{
		Authorization: NewAuthService(repos.Auth, opts.SigningKey, opts.TokenTTL),
		Devices:       NewDeviceService(repos.Devices),
		Schedules:     NewScheduleService(repos.Devices, repos.Schedules),
		Telemetry:     telemetry,
		Usage:         usage,
		Timeline:      timeline,
		Generator:     NewGeneratorService(telemetry, repos.Devices, opts.Retry, opts.Metrics, opts.Log).InLocation(opts.Location),
	}
}

// newClock returns time.Now in loc; calendar math (weekday, midnight) follows loc.
func newClock(loc *time.Location) func() time.Time {
	return func() time.Time { return time.Now().In(loc) }
}
