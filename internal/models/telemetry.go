package models

import "time"

// TelemetryReading is one recorded sample. (DeviceID, Timestamp) is its identity.
type TelemetryReading struct {
	DeviceID    int       `json:"device_id"`
	Timestamp   time.Time `json:"timestamp"`
	EnergyUsage float64   `json:"energy_usage"` // kWh over the sampling interval
}
