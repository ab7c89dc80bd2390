package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"home_energy/internal/apperr"
	"home_energy/internal/models"
)

var deviceCols = []string{"id", "account_id", "name", "category", "room", "power_rating_kw", "created_at"}

func TestDeviceSQLite_Create(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewDeviceSQLite(db)
	repo.now = func() time.Time { return fixedNow }

	mock.ExpectExec(regexp.QuoteMeta(insertDeviceSQL)).
		WithArgs(3, "Fridge", "refrigerator", "kitchen", 0.2, fixedNow.Unix()).
		WillReturnResult(sqlmock.NewResult(11, 1))

	id, err := repo.Create(context.Background(), models.Device{
		AccountID:     3,
		Name:          "Fridge",
		Category:      models.CategoryRefrigerator,
		Room:          "kitchen",
		PowerRatingKW: 0.2,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != 11 {
		t.Fatalf("id = %d, want 11", id)
	}
}

func TestDeviceSQLite_Get(t *testing.T) {
	tests := []struct {
		name     string
		expect   func(sqlmock.Sqlmock)
		wantKind apperr.Kind
		wantErr  bool
	}{
		{
			name: "found",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectDeviceSQL)).
					WithArgs(5, 3).
					WillReturnRows(sqlmock.NewRows(deviceCols).
						AddRow(5, 3, "AC", "air_conditioner", "bedroom", 2.5, fixedNow.Unix()))
			},
		},
		{
			name: "other account",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectDeviceSQL)).
					WithArgs(5, 3).
					WillReturnRows(sqlmock.NewRows(deviceCols))
			},
			wantErr:  true,
			wantKind: apperr.KindNotFound,
		},
		{
			name: "deadline exceeded",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectDeviceSQL)).
					WithArgs(5, 3).
					WillReturnError(context.DeadlineExceeded)
			},
			wantErr:  true,
			wantKind: apperr.KindTransientIO,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := newMockDB(t)
			defer cleanup()
			tt.expect(mock)

			d, err := NewDeviceSQLite(db).Get(context.Background(), 3, 5)
			if tt.wantErr {
				if apperr.KindOf(err) != tt.wantKind {
					t.Fatalf("kind = %q, want %q (%v)", apperr.KindOf(err), tt.wantKind, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if d.Category != models.CategoryAirConditioner || d.Room != "bedroom" || !d.CreatedAt.Equal(fixedNow) {
				t.Fatalf("unexpected device: %+v", d)
			}
		})
	}
}

func TestDeviceSQLite_ListByAccount_NormalizesUnknownCategory(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(selectDevicesByAccountSQL)).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(deviceCols).
			AddRow(1, 3, "Fridge", "refrigerator", "kitchen", 0.2, 0).
			AddRow(2, 3, "Heater", "space_heater", "office", 1.5, 0))

	got, err := NewDeviceSQLite(db).ListByAccount(context.Background(), 3)
	if err != nil {
		t.Fatalf("ListByAccount: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[1].Category != models.CategoryOther {
		t.Fatalf("category = %q, want other", got[1].Category)
	}
}

func TestDeviceSQLite_UpdateAndDelete_NotFound(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewDeviceSQLite(db)

	mock.ExpectExec(regexp.QuoteMeta(updateDeviceSQL)).
		WithArgs("Lamp", "lighting", "hall", 0.06, 9, 3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(deleteDeviceSQL)).
		WithArgs(9, 3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(deleteDeviceSQL)).
		WithArgs(4, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), models.Device{
		ID: 9, AccountID: 3, Name: "Lamp", Category: models.CategoryLighting, Room: "hall", PowerRatingKW: 0.06,
	})
	if !apperr.IsNotFound(err) {
		t.Fatalf("Update err = %v, want not found", err)
	}
	if err := repo.Delete(context.Background(), 3, 9); !apperr.IsNotFound(err) {
		t.Fatalf("Delete err = %v, want not found", err)
	}
	if err := repo.Delete(context.Background(), 3, 4); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestDeviceSQLite_Create_ExecError(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(insertDeviceSQL)).WillReturnError(errors.New("disk full"))

	if _, err := NewDeviceSQLite(db).Create(context.Background(), models.Device{AccountID: 1}); err == nil {
		t.Fatal("expected error")
	}
}
