package energy

import (
	"sort"
	"time"

	"home_energy/internal/models"
)

// DayBounds returns [midnight, next midnight) of t's calendar day in t's location.
func DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// MonthBounds returns [first of month, first of next month) in t's location.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	y, m, _ := t.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}

// DaysInMonth uses the host calendar, so leap years come for free.
func DaysInMonth(t time.Time) int {
	y, m, _ := t.Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// SumBetween adds readings with from <= ts < to.
func SumBetween(readings []models.TelemetryReading, from, to time.Time) float64 {
	var total float64
	for _, r := range readings {
		if !r.Timestamp.Before(from) && r.Timestamp.Before(to) {
			total += r.EnergyUsage
		}
	}
	return total
}

// SumThrough adds readings with from <= ts <= now.
func SumThrough(readings []models.TelemetryReading, from, now time.Time) float64 {
	var total float64
	for _, r := range readings {
		if !r.Timestamp.Before(from) && !r.Timestamp.After(now) {
			total += r.EnergyUsage
		}
	}
	return total
}

// DailyTotal sums readings that fall within now's local day.
func DailyTotal(readings []models.TelemetryReading, now time.Time) float64 {
	start, end := DayBounds(now)
	return SumBetween(readings, start, end)
}

// MonthlyProjection is the weekly schedule profile extrapolated to now's month.
type MonthlyProjection struct {
	WeeklyKWh    float64
	ProjectedKWh float64
	Cost         float64
	DaysInMonth  int
}

// ProjectMonth computes weekly kWh × price × daysInMonth/7.
// It is schedule based and ignores actual readings.
func ProjectMonth(blocks []models.ScheduleBlock, pricePerKWh float64, now time.Time) MonthlyProjection {
	weekly := WeeklyEnergy(blocks)
	days := DaysInMonth(now)
	projected := weekly * float64(days) / DaysPerWeek
	return MonthlyProjection{
		WeeklyKWh:    weekly,
		ProjectedKWh: projected,
		Cost:         projected * pricePerKWh,
		DaysInMonth:  days,
	}
}

// Breakdown groups instantaneous usage per device and per room.
// Devices without a schedule entry contribute 0.
func Breakdown(devices []models.Device, schedules map[int][]models.ScheduleBlock, now time.Time) models.CurrentUsage {
	out := models.CurrentUsage{
		PerDevice: make([]models.DeviceUsage, 0, len(devices)),
		PerRoom:   make(map[string]float64),
	}
	for _, d := range devices {
		kw := InstantUsage(schedules[d.ID], now)
		out.PerDevice = append(out.PerDevice, models.DeviceUsage{
			DeviceID: d.ID,
			Name:     d.Name,
			Category: d.Category,
			Room:     d.Room,
			UsageKW:  kw,
		})
		out.PerRoom[d.Room] += kw
		out.TotalKW += kw
	}
	sort.SliceStable(out.PerDevice, func(i, j int) bool {
		a, b := out.PerDevice[i], out.PerDevice[j]
		if a.Room != b.Room {
			return a.Room < b.Room
		}
		return a.Name < b.Name
	})
	return out
}
