package repository

import (
	"context"
	"database/sql"

	"home_energy/internal/models"
)

type ScheduleSQLite struct {
	db *sql.DB
}

func NewScheduleSQLite(db *sql.DB) *ScheduleSQLite {
	return &ScheduleSQLite{db: db}
}

var _ ScheduleRepo = (*ScheduleSQLite)(nil)

const (
	selectScheduleSQL = `
		SELECT day_of_week, start_hour, end_hour, power_kw
		FROM schedule_blocks WHERE device_id = ?
		ORDER BY day_of_week, start_hour
	`
	selectSchedulesByAccountSQL = `
		SELECT s.device_id, s.day_of_week, s.start_hour, s.end_hour, s.power_kw
		FROM schedule_blocks s JOIN devices d ON d.id = s.device_id
		WHERE d.account_id = ?
		ORDER BY s.device_id, s.day_of_week, s.start_hour
	`
	deleteScheduleSQL = `DELETE FROM schedule_blocks WHERE device_id = ?`
	insertBlockSQL    = `
		INSERT INTO schedule_blocks (device_id, day_of_week, start_hour, end_hour, power_kw)
		VALUES (?, ?, ?, ?, ?)
	`
)

// Get returns the device's blocks ordered by (day, start). No blocks is an empty slice.
func (r *ScheduleSQLite) Get(ctx context.Context, deviceID int) ([]models.ScheduleBlock, error) {
	rows, err := r.db.QueryContext(ctx, selectScheduleSQL, deviceID)
	if err != nil {
		return nil, wrap("select schedule", err)
	}
	defer rows.Close()

	out := make([]models.ScheduleBlock, 0, 16)
	for rows.Next() {
		var b models.ScheduleBlock
		if err := rows.Scan(&b.DayOfWeek, &b.StartHour, &b.EndHour, &b.PowerKW); err != nil {
			return nil, wrap("scan schedule block", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("select schedule", err)
	}
	return out, nil
}

// Replace swaps the whole schedule in one transaction. On any error the
// previous blocks stay in place.
func (r *ScheduleSQLite) Replace(ctx context.Context, deviceID int, blocks []models.ScheduleBlock) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("begin schedule transaction", err)
	}
	defer func() {
		// no-op after Commit
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, deleteScheduleSQL, deviceID); err != nil {
		return wrap("clear schedule", err)
	}
	for _, b := range blocks {
		if _, err := tx.ExecContext(ctx, insertBlockSQL, deviceID, b.DayOfWeek, b.StartHour, b.EndHour, b.PowerKW); err != nil {
			return wrap("insert schedule block", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return wrap("commit schedule", err)
	}
	return nil
}

// ListByAccount returns every scheduled device of accountID keyed by device ID.
// Devices without blocks are absent from the map.
func (r *ScheduleSQLite) ListByAccount(ctx context.Context, accountID int) (map[int][]models.ScheduleBlock, error) {
	rows, err := r.db.QueryContext(ctx, selectSchedulesByAccountSQL, accountID)
	if err != nil {
		return nil, wrap("list schedules", err)
	}
	defer rows.Close()

	out := make(map[int][]models.ScheduleBlock)
	for rows.Next() {
		var (
			deviceID int
			b        models.ScheduleBlock
		)
		if err := rows.Scan(&deviceID, &b.DayOfWeek, &b.StartHour, &b.EndHour, &b.PowerKW); err != nil {
			return nil, wrap("scan schedule block", err)
		}
		out[deviceID] = append(out[deviceID], b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list schedules", err)
	}
	return out, nil
}
