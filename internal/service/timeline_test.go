package service

import (
	"context"
	"testing"
	"time"

	"home_energy/internal/apperr"
	"home_energy/internal/models"
)

func TestTimelineService_DailyView(t *testing.T) {
	store := newFakeStore()
	ac := store.addDevice(1, "AC", models.CategoryAirConditioner, "office")
	store.schedules[ac] = []models.ScheduleBlock{{DayOfWeek: 1, StartHour: 9, EndHour: 17, PowerKW: 2}}
	store.put(ac, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), 0.5)
	store.put(ac, time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC), 0.25)
	store.put(ac, time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC), 0.1)
	store.put(ac, time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC), 7) // after now, ignored

	svc := NewTimelineService(fakeSchedules{store}, fakeTelemetry{store})
	svc.now = fixedClock(monday1030)

	entries, err := svc.GetTimeline(context.Background(), testSession, models.ViewDaily)
	if err != nil {
		t.Fatalf("GetTimeline error: %v", err)
	}
	if len(entries) != 26 {
		t.Fatalf("got %d entries, want 2 actual + 24 forecast", len(entries))
	}

	for i, e := range entries {
		if i > 0 && !entries[i-1].Timestamp.Before(e.Timestamp) {
			t.Fatalf("entries not ascending at %d", i)
		}
		if (e.ActualUsage == nil) == (e.ForecastUsage == nil) {
			t.Fatalf("entry %d must carry exactly one value: %+v", i, e)
		}
		future := e.Timestamp.After(monday1030)
		if future != (e.Kind == models.EntryForecast) {
			t.Fatalf("entry %d at %s tagged %s", i, e.Timestamp, e.Kind)
		}
	}

	if entries[0].Usage() != 0.75 || entries[1].Usage() != 0.1 {
		t.Fatalf("actual buckets = %v, %v; want 0.75, 0.1", entries[0].Usage(), entries[1].Usage())
	}
	// 11:00 Monday is still inside the 9-17 block
	if entries[2].Usage() != 2 {
		t.Fatalf("first forecast = %v, want 2", entries[2].Usage())
	}
}

func TestTimelineService_NoScheduleNoForecast(t *testing.T) {
	store := newFakeStore()
	tv := store.addDevice(1, "TV", models.CategoryTelevision, "living")
	store.put(tv, time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC), 0.12)

	svc := NewTimelineService(fakeSchedules{store}, fakeTelemetry{store})
	svc.now = fixedClock(monday1030)

	entries, err := svc.GetTimeline(context.Background(), testSession, models.ViewWeekly)
	if err != nil {
		t.Fatalf("GetTimeline error: %v", err)
	}
	if len(entries) != 1 || entries[0].Kind != models.EntryActual {
		t.Fatalf("expected a single actual entry, got %+v", entries)
	}
}

func TestTimelineService_EmptyAndUnknownView(t *testing.T) {
	svc := NewTimelineService(fakeSchedules{newFakeStore()}, fakeTelemetry{newFakeStore()})
	svc.now = fixedClock(monday1030)

	entries, err := svc.GetTimeline(context.Background(), testSession, models.ViewMonthly)
	if err != nil {
		t.Fatalf("GetTimeline error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty timeline, got %d entries", len(entries))
	}

	if _, err := svc.GetTimeline(context.Background(), testSession, "yearly"); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for unknown view, got %v", err)
	}
}
