package model

import "time"

// BusinessStats is the per-business consensus view the UI renders. It is
// derived from the ordered set of Reports at read time and never persisted
// as a source of truth. JSON field names match the read-side view consumed
// by the frontend.
type BusinessStats struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	ZipCode   string    `json:"zip_code"`
	Country   string    `json:"country"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Computed consensus fields. Nil means "unknown".
	ComputedTipPractice             *TipPractice `json:"computed_tip_practice"`
	ComputedTipsGoToStaff           *bool        `json:"computed_tips_go_to_staff"`
	ComputedSuggestedTips           []int        `json:"computed_suggested_tips"`
	ComputedServiceChargePercentage *int         `json:"computed_service_charge_percentage"`
	ReportCount                     int          `json:"report_count"`
}
