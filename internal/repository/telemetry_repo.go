package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"home_energy/internal/models"
)

type TelemetrySQLite struct {
	db *sql.DB
}

func NewTelemetrySQLite(db *sql.DB) *TelemetrySQLite { return &TelemetrySQLite{db: db} }

var _ TelemetryRepo = (*TelemetrySQLite)(nil)

const (
	upsertReadingSQL = `
		INSERT INTO telemetry (device_id, recorded_at, energy_usage)
		VALUES (?, ?, ?)
		ON CONFLICT(device_id, recorded_at) DO UPDATE SET energy_usage = excluded.energy_usage
	`
	selectReadingsSQL     = `SELECT t.device_id, t.recorded_at, t.energy_usage FROM telemetry t`
	joinAccountDevicesSQL = ` JOIN devices d ON d.id = t.device_id`
	orderReadingsSQL      = ` ORDER BY t.recorded_at ASC, t.device_id ASC`
)

// Upsert stores rd; a second reading for the same (device, second) replaces the first.
func (r *TelemetrySQLite) Upsert(ctx context.Context, rd models.TelemetryReading) error {
	_, err := r.db.ExecContext(ctx, upsertReadingSQL, rd.DeviceID, rd.Timestamp.Unix(), rd.EnergyUsage)
	return wrap("upsert reading", err)
}

func (r *TelemetrySQLite) ListByDevice(ctx context.Context, deviceID int, from, to time.Time) ([]models.TelemetryReading, error) {
	q, args := buildReadingsQuery("", "t.device_id = ?", deviceID, from, to)
	return r.list(ctx, q, args)
}

func (r *TelemetrySQLite) ListByAccount(ctx context.Context, accountID int, from, to time.Time) ([]models.TelemetryReading, error) {
	q, args := buildReadingsQuery(joinAccountDevicesSQL, "d.account_id = ?", accountID, from, to)
	return r.list(ctx, q, args)
}

// buildReadingsQuery filters on owner plus an optional half-open [from, to) range.
func buildReadingsQuery(join, ownerCond string, ownerID int, from, to time.Time) (string, []any) {
	conds := []string{ownerCond}
	args := []any{ownerID}

	if !from.IsZero() {
		conds = append(conds, "t.recorded_at >= ?")
		args = append(args, from.Unix())
	}
	if !to.IsZero() {
		conds = append(conds, "t.recorded_at < ?")
		args = append(args, to.Unix())
	}

	q := selectReadingsSQL + join + " WHERE " + strings.Join(conds, " AND ") + orderReadingsSQL
	return q, args
}

func (r *TelemetrySQLite) list(ctx context.Context, q string, args []any) ([]models.TelemetryReading, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrap("list readings", err)
	}
	defer rows.Close()

	out := make([]models.TelemetryReading, 0, 64)
	for rows.Next() {
		var (
			rd models.TelemetryReading
			ts int64
		)
		if err := rows.Scan(&rd.DeviceID, &ts, &rd.EnergyUsage); err != nil {
			return nil, wrap("scan reading", err)
		}
		rd.Timestamp = time.Unix(ts, 0).UTC()
		out = append(out, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list readings", err)
	}
	return out, nil
}
