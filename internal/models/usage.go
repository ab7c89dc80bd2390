package models

// DeviceUsage is the instantaneous, schedule-derived draw of one device.
type DeviceUsage struct {
	DeviceID int      `json:"device_id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Room     string   `json:"room"`
	UsageKW  float64  `json:"usage_kw"`
}

// CurrentUsage is the dashboard breakdown for one account.
type CurrentUsage struct {
	PerDevice []DeviceUsage      `json:"per_device"`
	PerRoom   map[string]float64 `json:"per_room"`
	TotalKW   float64            `json:"total_kw"`
}

// MonthlyCost is the schedule-based projection for the current month.
// MonthToDate figures are actual-reading based and reported separately.
type MonthlyCost struct {
	WeeklyKWh       float64 `json:"weekly_kwh"`
	ProjectedKWh    float64 `json:"projected_kwh"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	PricePerKWh     float64 `json:"price_per_kwh"`
	DaysInMonth     int     `json:"days_in_month"`
	MonthToDateKWh  float64 `json:"month_to_date_kwh"`
	MonthToDateCost float64 `json:"month_to_date_cost"`
	DaysRemaining   int     `json:"days_remaining"`
}
