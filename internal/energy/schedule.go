// Package energy holds the pure consumption math: schedule evaluation,
// aggregation, forecasting, timeline merging and synthetic samples.
// Nothing here performs I/O; every function is a function of its arguments.
package energy

import (
	"math"
	"sort"
	"time"

	"home_energy/internal/apperr"
	"home_energy/internal/models"
)

const (
	HoursPerDay = 24
	DaysPerWeek = 7
)

// ValidateSchedule checks the structural invariants of a full weekly schedule:
// day in [0,6], hours in [0,24) with start < end, finite non-negative power,
// and no two blocks sharing (day, start_hour).
func ValidateSchedule(blocks []models.ScheduleBlock) error {
	type key struct{ day, start int }
	seen := make(map[key]int, len(blocks))
	for i, b := range blocks {
		if b.DayOfWeek < 0 || b.DayOfWeek >= DaysPerWeek {
			return apperr.Validation("block %d: day_of_week %d out of range [0,6]", i, b.DayOfWeek)
		}
		if b.StartHour < 0 || b.StartHour >= HoursPerDay {
			return apperr.Validation("block %d: start_hour %d out of range [0,23]", i, b.StartHour)
		}
		if b.EndHour < 0 || b.EndHour >= HoursPerDay {
			return apperr.Validation("block %d: end_hour %d out of range [0,23]", i, b.EndHour)
		}
		if b.StartHour >= b.EndHour {
			return apperr.Validation("block %d: start_hour %d must be before end_hour %d", i, b.StartHour, b.EndHour)
		}
		if math.IsNaN(b.PowerKW) || math.IsInf(b.PowerKW, 0) || b.PowerKW < 0 {
			return apperr.Validation("block %d: power_consumption %v must be a non-negative number", i, b.PowerKW)
		}
		k := key{b.DayOfWeek, b.StartHour}
		if j, dup := seen[k]; dup {
			return apperr.Validation("block %d: duplicates block %d (day %d, start_hour %d)", i, j, b.DayOfWeek, b.StartHour)
		}
		seen[k] = i
	}
	return nil
}

// SortBlocks returns a copy ordered by day, start hour, end hour.
func SortBlocks(blocks []models.ScheduleBlock) []models.ScheduleBlock {
	out := make([]models.ScheduleBlock, len(blocks))
	copy(out, blocks)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek < b.DayOfWeek
		}
		if a.StartHour != b.StartHour {
			return a.StartHour < b.StartHour
		}
		return a.EndHour < b.EndHour
	})
	return out
}

// PowerAt sums the draw of every block active on day at hour.
// Overlapping blocks add up (base load + boost).
func PowerAt(blocks []models.ScheduleBlock, day, hour int) float64 {
	var kw float64
	for _, b := range blocks {
		if b.Contains(day, hour) {
			kw += b.PowerKW
		}
	}
	return kw
}

// InstantUsage is the scheduled draw at now, in now's location.
func InstantUsage(blocks []models.ScheduleBlock, now time.Time) float64 {
	return PowerAt(blocks, int(now.Weekday()), now.Hour())
}

// DayEnergy is the scheduled kWh over one day of the week.
func DayEnergy(blocks []models.ScheduleBlock, day int) float64 {
	var kwh float64
	for _, b := range blocks {
		if b.DayOfWeek == day {
			kwh += b.PowerKW * float64(b.Hours())
		}
	}
	return kwh
}

// WeeklyEnergy is the scheduled kWh over a full week.
func WeeklyEnergy(blocks []models.ScheduleBlock) float64 {
	var kwh float64
	for _, b := range blocks {
		kwh += b.PowerKW * float64(b.Hours())
	}
	return kwh
}
