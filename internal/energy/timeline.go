package energy

import (
	"time"

	"home_energy/internal/apperr"
	"home_energy/internal/models"
)

// Window is the closed range of bucket starts a view covers.
type Window struct {
	Resolution models.Resolution
	Start      time.Time
	End        time.Time
}

// WindowFor returns the buckets of view around now:
// daily is 48 hourly buckets (23 back, the current one, 24 ahead),
// weekly is 7 days (today ±3), monthly is 30 days (15 back, 14 ahead).
func WindowFor(view models.View, now time.Time) (Window, error) {
	switch view {
	case models.ViewDaily:
		cur := BucketStart(now, models.ResolutionHour)
		return Window{Resolution: models.ResolutionHour, Start: cur.Add(-23 * time.Hour), End: cur.Add(24 * time.Hour)}, nil
	case models.ViewWeekly:
		today := BucketStart(now, models.ResolutionDay)
		return Window{Resolution: models.ResolutionDay, Start: today.AddDate(0, 0, -3), End: today.AddDate(0, 0, 3)}, nil
	case models.ViewMonthly:
		today := BucketStart(now, models.ResolutionDay)
		return Window{Resolution: models.ResolutionDay, Start: today.AddDate(0, 0, -15), End: today.AddDate(0, 0, 14)}, nil
	default:
		return Window{}, apperr.Validation("unknown view %q: use daily, weekly or monthly", view)
	}
}

// BucketActuals sums readings per bucket start (unix seconds) in now's location.
// Readings after now are ignored.
func BucketActuals(readings []models.TelemetryReading, res models.Resolution, now time.Time) map[int64]float64 {
	out := make(map[int64]float64)
	for _, r := range readings {
		if r.Timestamp.After(now) {
			continue
		}
		b := BucketStart(r.Timestamp.In(now.Location()), res)
		out[b.Unix()] += r.EnergyUsage
	}
	return out
}

// Combine merges actuals and forecast over w, split at now.
// Buckets at or before now come from readings only and are omitted when empty;
// buckets after now come from Forecast only, and only when a schedule exists.
func Combine(w Window, now time.Time, readings []models.TelemetryReading, blocks []models.ScheduleBlock) []models.TimelineEntry {
	actuals := BucketActuals(readings, w.Resolution, now)
	out := make([]models.TimelineEntry, 0)

	for ts := w.Start; !ts.After(w.End) && !ts.After(now); ts = Advance(ts, w.Resolution, 1) {
		v, ok := actuals[ts.Unix()]
		if !ok {
			continue
		}
		out = append(out, ActualEntry(ts, v))
	}

	if len(blocks) == 0 || !w.End.After(now) {
		return out
	}
	for p := range Forecast(blocks, now, w.End.Sub(now), w.Resolution) {
		if p.Timestamp.Before(w.Start) {
			continue
		}
		out = append(out, ForecastEntry(p.Timestamp, p.Usage))
	}
	return out
}

func ActualEntry(ts time.Time, v float64) models.TimelineEntry {
	return models.TimelineEntry{Timestamp: ts, Kind: models.EntryActual, ActualUsage: &v}
}

func ForecastEntry(ts time.Time, v float64) models.TimelineEntry {
	return models.TimelineEntry{Timestamp: ts, Kind: models.EntryForecast, ForecastUsage: &v}
}
