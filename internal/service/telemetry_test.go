package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"home_energy/internal/apperr"
	"home_energy/internal/models"
)

type recordingPublisher struct {
	got []models.TelemetryReading
	err error
}

func (p *recordingPublisher) Publish(_ context.Context, r models.TelemetryReading) error {
	p.got = append(p.got, r)
	return p.err
}

func newTestTelemetry(store *fakeStore, pub *recordingPublisher) *TelemetryService {
	var svc *TelemetryService
	if pub == nil {
		svc = NewTelemetryService(fakeDevices{store}, fakeTelemetry{store}, nil, nil)
	} else {
		svc = NewTelemetryService(fakeDevices{store}, fakeTelemetry{store}, pub, nil)
	}
	svc.now = fixedClock(monday1030)
	return svc
}

func TestTelemetryService_SubmitIsIdempotent(t *testing.T) {
	store := newFakeStore()
	id := store.addDevice(1, "Fridge", models.CategoryRefrigerator, "kitchen")
	svc := newTestTelemetry(store, nil)
	ctx := context.Background()
	ts := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	for _, v := range []float64{0.15, 0.17} {
		if err := svc.Submit(ctx, testSession, models.TelemetryReading{DeviceID: id, Timestamp: ts, EnergyUsage: v}); err != nil {
			t.Fatalf("Submit error: %v", err)
		}
	}

	got, err := svc.ListReadings(ctx, testSession, id, ReadingFilter{})
	if err != nil {
		t.Fatalf("ListReadings error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 reading after upsert, got %d", len(got))
	}
	if got[0].EnergyUsage != 0.17 {
		t.Fatalf("expected last value to win, got %v", got[0].EnergyUsage)
	}
}

func TestTelemetryService_SubmitDefaultsTimestamp(t *testing.T) {
	store := newFakeStore()
	id := store.addDevice(1, "Fridge", models.CategoryRefrigerator, "kitchen")
	svc := newTestTelemetry(store, nil)

	if err := svc.Submit(context.Background(), testSession, models.TelemetryReading{DeviceID: id, EnergyUsage: 0.1}); err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if _, ok := store.readings[id][monday1030.Unix()]; !ok {
		t.Fatalf("expected reading stamped with now, got %+v", store.readings[id])
	}
}

func TestTelemetryService_SubmitRejects(t *testing.T) {
	store := newFakeStore()
	mine := store.addDevice(1, "Fridge", models.CategoryRefrigerator, "kitchen")
	theirs := store.addDevice(2, "Fridge", models.CategoryRefrigerator, "kitchen")
	svc := newTestTelemetry(store, nil)

	cases := []struct {
		name  string
		r     models.TelemetryReading
		check func(error) bool
	}{
		{"negative", models.TelemetryReading{DeviceID: mine, EnergyUsage: -1}, apperr.IsValidation},
		{"nan", models.TelemetryReading{DeviceID: mine, EnergyUsage: math.NaN()}, apperr.IsValidation},
		{"inf", models.TelemetryReading{DeviceID: mine, EnergyUsage: math.Inf(1)}, apperr.IsValidation},
		{"other account", models.TelemetryReading{DeviceID: theirs, EnergyUsage: 1}, apperr.IsNotFound},
		{"missing device", models.TelemetryReading{DeviceID: 99, EnergyUsage: 1}, apperr.IsNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Submit(context.Background(), testSession, tc.r)
			if !tc.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
	if store.upserts != 0 {
		t.Fatalf("rejected readings must not be stored, got %d upserts", store.upserts)
	}
}

func TestTelemetryService_MirrorFailureDoesNotFailSubmit(t *testing.T) {
	store := newFakeStore()
	id := store.addDevice(1, "Fridge", models.CategoryRefrigerator, "kitchen")
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := newTestTelemetry(store, pub)

	if err := svc.Submit(context.Background(), testSession, models.TelemetryReading{DeviceID: id, EnergyUsage: 0.2}); err != nil {
		t.Fatalf("Submit should ignore mirror failure, got %v", err)
	}
	if len(pub.got) != 1 || pub.got[0].DeviceID != id {
		t.Fatalf("expected one mirrored reading, got %+v", pub.got)
	}
	if store.upserts != 1 {
		t.Fatalf("expected reading stored, upserts=%d", store.upserts)
	}
}

func TestTelemetryService_StoreErrorSkipsMirror(t *testing.T) {
	store := newFakeStore()
	id := store.addDevice(1, "Fridge", models.CategoryRefrigerator, "kitchen")
	store.upsertErr = apperr.Transient("telemetry upsert", errors.New("database is locked"))
	pub := &recordingPublisher{}
	svc := newTestTelemetry(store, pub)

	err := svc.Submit(context.Background(), testSession, models.TelemetryReading{DeviceID: id, EnergyUsage: 0.2})
	if !apperr.IsTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if len(pub.got) != 0 {
		t.Fatalf("failed reading must not be mirrored")
	}
}

func TestTelemetryService_ListReadingsFilter(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	id := store.addDevice(1, "Fridge", models.CategoryRefrigerator, "kitchen")
	base := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	for h := 0; h < 4; h++ {
		store.put(id, base.Add(time.Duration(h)*time.Hour), 0.1)
	}
	svc := newTestTelemetry(store, nil)
	plus3 := time.FixedZone("UTC+3", 3*3600)

	cases := []struct {
		name string
		f    ReadingFilter
		want int
	}{
		{"open", ReadingFilter{}, 4},
		{"from inclusive", ReadingFilter{From: base.Add(time.Hour)}, 3},
		{"to exclusive", ReadingFilter{To: base.Add(2 * time.Hour)}, 2},
		{"other zone", ReadingFilter{From: base.Add(time.Hour).In(plus3), To: base.Add(3 * time.Hour).In(plus3)}, 2},
		{"equal bounds", ReadingFilter{From: base, To: base}, 0},
	}
	for _, tc := range cases {
		got, err := svc.ListReadings(context.Background(), testSession, id, tc.f)
		if err != nil {
			t.Fatalf("%s: ListReadings error: %v", tc.name, err)
		}
		if len(got) != tc.want {
			t.Fatalf("%s: got %d readings, want %d", tc.name, len(got), tc.want)
		}
	}

	_, err := svc.ListReadings(context.Background(), testSession, id, ReadingFilter{From: base.Add(time.Hour), To: base})
	if !apperr.IsValidation(err) {
		t.Fatalf("inverted range: expected validation error, got %v", err)
	}
}
