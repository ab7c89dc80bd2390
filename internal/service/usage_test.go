package service

import (
	"context"
	"math"
	"testing"
	"time"

	"home_energy/internal/models"
)

func newTestUsage(store *fakeStore) *UsageService {
	svc := NewUsageService(fakeDevices{store}, fakeSchedules{store}, fakeTelemetry{store}, 0.12, "")
	svc.now = fixedClock(monday1030)
	return svc
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestUsageService_EmptyAccountIsZero(t *testing.T) {
	svc := newTestUsage(newFakeStore())
	ctx := context.Background()

	cur, err := svc.CurrentUsage(ctx, testSession)
	if err != nil {
		t.Fatalf("CurrentUsage error: %v", err)
	}
	if cur.TotalKW != 0 || len(cur.PerDevice) != 0 || len(cur.PerRoom) != 0 {
		t.Fatalf("expected zero usage, got %+v", cur)
	}

	daily, err := svc.DailyTotal(ctx, testSession)
	if err != nil || daily != 0 {
		t.Fatalf("DailyTotal = %v, %v; want 0, nil", daily, err)
	}

	mc, err := svc.MonthlyCost(ctx, testSession)
	if err != nil {
		t.Fatalf("MonthlyCost error: %v", err)
	}
	if mc.Amount != 0 || mc.WeeklyKWh != 0 || mc.MonthToDateKWh != 0 {
		t.Fatalf("expected zero cost, got %+v", mc)
	}
	if mc.Currency != defaultCurrency {
		t.Fatalf("currency = %q, want %q", mc.Currency, defaultCurrency)
	}
}

func TestUsageService_MondayOfficeHours(t *testing.T) {
	store := newFakeStore()
	ac := store.addDevice(1, "AC", models.CategoryAirConditioner, "office")
	tv := store.addDevice(1, "TV", models.CategoryTelevision, "living")
	store.schedules[ac] = []models.ScheduleBlock{{DayOfWeek: 1, StartHour: 9, EndHour: 17, PowerKW: 2}}
	store.schedules[tv] = []models.ScheduleBlock{{DayOfWeek: 1, StartHour: 19, EndHour: 23, PowerKW: 0.1}}

	store.put(ac, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), 1.5)
	store.put(ac, time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC), 0.7) // Sunday, same month
	store.put(ac, time.Date(2025, 5, 31, 15, 0, 0, 0, time.UTC), 9)  // previous month

	svc := newTestUsage(store)
	ctx := context.Background()

	cur, err := svc.CurrentUsage(ctx, testSession)
	if err != nil {
		t.Fatalf("CurrentUsage error: %v", err)
	}
	if !almostEqual(cur.TotalKW, 2) {
		t.Fatalf("TotalKW = %v, want 2", cur.TotalKW)
	}
	if !almostEqual(cur.PerRoom["office"], 2) || cur.PerRoom["living"] != 0 {
		t.Fatalf("PerRoom = %+v", cur.PerRoom)
	}

	daily, err := svc.DailyTotal(ctx, testSession)
	if err != nil {
		t.Fatalf("DailyTotal error: %v", err)
	}
	if !almostEqual(daily, 1.5) {
		t.Fatalf("DailyTotal = %v, want 1.5", daily)
	}

	mc, err := svc.MonthlyCost(ctx, testSession)
	if err != nil {
		t.Fatalf("MonthlyCost error: %v", err)
	}
	weekly := 16 + 0.4
	if !almostEqual(mc.WeeklyKWh, weekly) {
		t.Fatalf("WeeklyKWh = %v, want %v", mc.WeeklyKWh, weekly)
	}
	if !almostEqual(mc.Amount, weekly*0.12*30/7) {
		t.Fatalf("Amount = %v, want %v", mc.Amount, weekly*0.12*30/7)
	}
	if mc.DaysInMonth != 30 || mc.DaysRemaining != 28 {
		t.Fatalf("days = %d/%d, want 30/28", mc.DaysInMonth, mc.DaysRemaining)
	}
	if !almostEqual(mc.MonthToDateKWh, 2.2) || !almostEqual(mc.MonthToDateCost, 2.2*0.12) {
		t.Fatalf("month to date = %v kWh / %v, want 2.2 kWh", mc.MonthToDateKWh, mc.MonthToDateCost)
	}
}

func TestUsageService_MonthToDateStopsAtNow(t *testing.T) {
	store := newFakeStore()
	ac := store.addDevice(1, "AC", models.CategoryAirConditioner, "office")
	store.put(ac, monday1030, 1)
	store.put(ac, monday1030.Add(time.Second), 5)

	svc := newTestUsage(store)
	svc.now = fixedClock(monday1030.Add(500 * time.Millisecond))

	mc, err := svc.MonthlyCost(context.Background(), testSession)
	if err != nil {
		t.Fatalf("MonthlyCost error: %v", err)
	}
	if !almostEqual(mc.MonthToDateKWh, 1) {
		t.Fatalf("month to date = %v kWh, want 1 (reading after now excluded)", mc.MonthToDateKWh)
	}
}

func TestUsageService_RequiresSession(t *testing.T) {
	svc := newTestUsage(newFakeStore())
	if _, err := svc.CurrentUsage(context.Background(), models.Session{}); err == nil {
		t.Fatal("expected error without account")
	}
}
