package service

import "time"

// DeviceParams is the mutable part of a device.
type DeviceParams struct {
	Name          string
	Category      string // free-form; normalized, unknown values become "other"
	Room          string
	PowerRatingKW float64
}

// ReadingFilter bounds a telemetry listing. Zero values leave a side open.
type ReadingFilter struct {
	From time.Time // inclusive
	To   time.Time // exclusive
}

// GenerateMode selects how synthetic telemetry is produced.
type GenerateMode string

const (
	ModeHistorical GenerateMode = "historical"
	ModeRealtime   GenerateMode = "realtime"
)

// GenerateParams describes one synthetic run for one device.
type GenerateParams struct {
	DeviceID int
	Category string // resolved from the device when empty and a registry is wired
	Mode     GenerateMode
	Interval time.Duration
	Seed     int64

	// historical
	From time.Time
	To   time.Time

	// realtime
	Duration time.Duration
}

// GenerateReport summarizes a run. Dropped is only ever non-zero in realtime mode.
type GenerateReport struct {
	RunID     string       `json:"run_id"`
	DeviceID  int          `json:"device_id"`
	Mode      GenerateMode `json:"mode"`
	Submitted int          `json:"submitted"`
	Dropped   int          `json:"dropped"`
	Retries   int          `json:"retries"`
	FirstAt   time.Time    `json:"first_at,omitempty"`
	LastAt    time.Time    `json:"last_at,omitempty"`
}
