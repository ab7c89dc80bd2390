package models

// ScheduleBlock declares that a device draws PowerKW during [StartHour, EndHour)
// on DayOfWeek (0 = Sunday, matching time.Weekday).
type ScheduleBlock struct {
	DayOfWeek int     `json:"day_of_week" yaml:"day_of_week"`
	StartHour int     `json:"start_hour" yaml:"start_hour"`
	EndHour   int     `json:"end_hour" yaml:"end_hour"`
	PowerKW   float64 `json:"power_consumption" yaml:"power_consumption"`
}

// Hours is the length of the block in hours.
func (b ScheduleBlock) Hours() int {
	if b.EndHour <= b.StartHour {
		return 0
	}
	return b.EndHour - b.StartHour
}

// Contains reports whether the block is active on day at hour.
func (b ScheduleBlock) Contains(day, hour int) bool {
	return b.DayOfWeek == day && b.StartHour <= hour && hour < b.EndHour
}
