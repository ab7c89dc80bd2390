package energy

import (
	"time"

	"home_energy/internal/models"
)

const defaultRatingKW = 1.0

func isWeekend(day int) bool {
	return day == int(time.Sunday) || day == int(time.Saturday)
}

func block(day, start, end int, kw float64) models.ScheduleBlock {
	return models.ScheduleBlock{DayOfWeek: day, StartHour: start, EndHour: end, PowerKW: kw}
}

// DefaultSchedule returns a typical weekly schedule for category at ratingKW.
// Used to bootstrap devices that have no declared schedule yet.
func DefaultSchedule(c models.Category, ratingKW float64) []models.ScheduleBlock {
	if ratingKW <= 0 {
		ratingKW = defaultRatingKW
	}
	var out []models.ScheduleBlock
	switch c {
	case models.CategoryRefrigerator:
		for d := 0; d < DaysPerWeek; d++ {
			out = append(out, block(d, 0, 23, ratingKW))
		}
	case models.CategoryAirConditioner:
		for d := 0; d < DaysPerWeek; d++ {
			if isWeekend(d) {
				out = append(out, block(d, 10, 22, ratingKW))
				continue
			}
			out = append(out, block(d, 6, 8, ratingKW*0.7), block(d, 18, 23, ratingKW))
		}
	case models.CategoryWashingMachine:
		out = append(out,
			block(int(time.Monday), 8, 10, ratingKW),
			block(int(time.Wednesday), 19, 21, ratingKW),
			block(int(time.Saturday), 10, 12, ratingKW),
		)
	case models.CategoryTelevision:
		for d := 0; d < DaysPerWeek; d++ {
			if isWeekend(d) {
				out = append(out, block(d, 10, 12, ratingKW), block(d, 14, 23, ratingKW))
				continue
			}
			out = append(out, block(d, 19, 23, ratingKW))
		}
	case models.CategoryLighting:
		for d := 0; d < DaysPerWeek; d++ {
			out = append(out, block(d, 6, 8, ratingKW), block(d, 18, 23, ratingKW))
		}
	case models.CategoryComputer:
		for d := int(time.Monday); d <= int(time.Friday); d++ {
			out = append(out, block(d, 9, 17, ratingKW))
		}
	default:
		for d := 0; d < DaysPerWeek; d++ {
			out = append(out, block(d, 7, 9, ratingKW*0.5), block(d, 18, 21, ratingKW))
		}
	}
	return out
}
