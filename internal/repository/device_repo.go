package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"home_energy/internal/apperr"
	"home_energy/internal/models"
)

type DeviceSQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewDeviceSQLite(db *sql.DB) *DeviceSQLite {
	return &DeviceSQLite{db: db, now: time.Now}
}

var _ DeviceRepo = (*DeviceSQLite)(nil)

const (
	deviceColumns = `id, account_id, name, category, room, power_rating_kw, created_at`

	insertDeviceSQL = `
		INSERT INTO devices (account_id, name, category, room, power_rating_kw, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	selectDeviceSQL           = `SELECT ` + deviceColumns + ` FROM devices WHERE id = ? AND account_id = ?`
	selectDevicesByAccountSQL = `SELECT ` + deviceColumns + ` FROM devices WHERE account_id = ? ORDER BY room, name, id`
	updateDeviceSQL           = `
		UPDATE devices SET name = ?, category = ?, room = ?, power_rating_kw = ?
		WHERE id = ? AND account_id = ?
	`
	deleteDeviceSQL = `DELETE FROM devices WHERE id = ? AND account_id = ?`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner) (models.Device, error) {
	var (
		d        models.Device
		category string
		created  int64
	)
	if err := row.Scan(&d.ID, &d.AccountID, &d.Name, &category, &d.Room, &d.PowerRatingKW, &created); err != nil {
		return models.Device{}, err
	}
	d.Category, _ = models.ParseCategory(category)
	d.CreatedAt = time.Unix(created, 0).UTC()
	return d, nil
}

// Create inserts d and returns the new ID. CreatedAt is set when zero.
func (r *DeviceSQLite) Create(ctx context.Context, d models.Device) (int, error) {
	created := d.CreatedAt
	if created.IsZero() {
		created = r.now()
	}
	res, err := r.db.ExecContext(ctx, insertDeviceSQL,
		d.AccountID,
		d.Name,
		string(d.Category),
		d.Room,
		d.PowerRatingKW,
		created.Unix(),
	)
	if err != nil {
		return 0, wrap("insert device", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, wrap("get last insert id for device", err)
	}
	return int(id), nil
}

// Get returns the device when it exists and belongs to accountID.
func (r *DeviceSQLite) Get(ctx context.Context, accountID, id int) (models.Device, error) {
	d, err := scanDevice(r.db.QueryRowContext(ctx, selectDeviceSQL, id, accountID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Device{}, apperr.NotFound("device", id)
		}
		return models.Device{}, wrap("select device", err)
	}
	return d, nil
}

func (r *DeviceSQLite) ListByAccount(ctx context.Context, accountID int) ([]models.Device, error) {
	rows, err := r.db.QueryContext(ctx, selectDevicesByAccountSQL, accountID)
	if err != nil {
		return nil, wrap("list devices", err)
	}
	defer rows.Close()

	out := make([]models.Device, 0, 16)
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, wrap("scan device", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list devices", err)
	}
	return out, nil
}

// Update overwrites the mutable fields. A device of another account is not found.
func (r *DeviceSQLite) Update(ctx context.Context, d models.Device) error {
	res, err := r.db.ExecContext(ctx, updateDeviceSQL,
		d.Name,
		string(d.Category),
		d.Room,
		d.PowerRatingKW,
		d.ID,
		d.AccountID,
	)
	if err != nil {
		return wrap("update device", err)
	}
	return requireAffected(res, "device", d.ID)
}

// Delete removes the device; schedule blocks and telemetry go with it.
func (r *DeviceSQLite) Delete(ctx context.Context, accountID, id int) error {
	res, err := r.db.ExecContext(ctx, deleteDeviceSQL, id, accountID)
	if err != nil {
		return wrap("delete device", err)
	}
	return requireAffected(res, "device", id)
}

func requireAffected(res sql.Result, entity string, id int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("rows affected", err)
	}
	if n == 0 {
		return apperr.NotFound(entity, id)
	}
	return nil
}
