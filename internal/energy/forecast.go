package energy

import (
	"iter"
	"time"

	"home_energy/internal/models"
)

// BucketStart truncates t to the start of its hour or day in t's location.
func BucketStart(t time.Time, res models.Resolution) time.Time {
	y, m, d := t.Date()
	if res == models.ResolutionDay {
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	}
	return time.Date(y, m, d, t.Hour(), 0, 0, 0, t.Location())
}

// Advance moves a bucket start by n buckets. Days use the calendar so a
// DST change never shifts midnight.
func Advance(t time.Time, res models.Resolution, n int) time.Time {
	if res == models.ResolutionDay {
		return t.AddDate(0, 0, n)
	}
	return t.Add(time.Duration(n) * time.Hour)
}

// DefaultHorizon is one cycle of the resolution: a day of hours or a week of days.
func DefaultHorizon(res models.Resolution) time.Duration {
	if res == models.ResolutionDay {
		return DaysPerWeek * HoursPerDay * time.Hour
	}
	return HoursPerDay * time.Hour
}

// ForecastAt is the projected usage of the bucket starting at ts: the additive
// scheduled draw for an hour bucket, the scheduled kWh for a day bucket.
func ForecastAt(blocks []models.ScheduleBlock, ts time.Time, res models.Resolution) float64 {
	if res == models.ResolutionDay {
		return DayEnergy(blocks, int(ts.Weekday()))
	}
	return PowerAt(blocks, int(ts.Weekday()), ts.Hour())
}

// Forecast yields one point per bucket strictly after from, up to from+horizon.
// A non-positive horizon means DefaultHorizon. The sequence holds no state:
// ranging over it twice yields the same points.
func Forecast(blocks []models.ScheduleBlock, from time.Time, horizon time.Duration, res models.Resolution) iter.Seq[models.ForecastPoint] {
	if horizon <= 0 {
		horizon = DefaultHorizon(res)
	}
	end := from.Add(horizon)
	return func(yield func(models.ForecastPoint) bool) {
		for ts := Advance(BucketStart(from, res), res, 1); !ts.After(end); ts = Advance(ts, res, 1) {
			if !yield(models.ForecastPoint{Timestamp: ts, Usage: ForecastAt(blocks, ts, res)}) {
				return
			}
		}
	}
}
