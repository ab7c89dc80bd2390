package models

import (
	"strings"
	"time"
)

// Category is the fixed set of device kinds the engine knows patterns for.
type Category string

const (
	CategoryRefrigerator   Category = "refrigerator"
	CategoryAirConditioner Category = "air_conditioner"
	CategoryWashingMachine Category = "washing_machine"
	CategoryLighting       Category = "lighting"
	CategoryTelevision     Category = "television"
	CategoryComputer       Category = "computer"
	CategoryOther          Category = "other"
)

// Categories lists every known category, "other" last.
var Categories = []Category{
	CategoryRefrigerator,
	CategoryAirConditioner,
	CategoryWashingMachine,
	CategoryLighting,
	CategoryTelevision,
	CategoryComputer,
	CategoryOther,
}

// ParseCategory normalizes "Air-Conditioner", "air_conditioner" etc.
// The second result is false when the input is not a known category;
// the returned value is then CategoryOther.
func ParseCategory(s string) (Category, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	for _, c := range Categories {
		if string(c) == norm {
			return c, true
		}
	}
	return CategoryOther, false
}

// Device is a metered appliance owned by one account.
type Device struct {
	ID            int       `json:"id"`
	AccountID     int       `json:"account_id"`
	Name          string    `json:"name"`
	Category      Category  `json:"category"`
	Room          string    `json:"room"`
	PowerRatingKW float64   `json:"power_rating_kw"`
	CreatedAt     time.Time `json:"created_at"`
}
