package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Report is one user's observation of a Business's tipping practice at a
// point in time. Reports are append-only; there is no edit or delete path.
type Report struct {
	ID         string   `gorm:"primaryKey" json:"id"`
	BusinessID string   `gorm:"index;not null" json:"business_id"`
	Business   Business `gorm:"foreignKey:BusinessID" json:"-"`
	// UserID is the external identity provider's subject. Nil means the
	// report was submitted anonymously.
	UserID      *string     `json:"user_id,omitempty"`
	TipPractice TipPractice `gorm:"size:32;not null" json:"tip_practice"`
	// TipsGoToStaff is only meaningful for tip-relevant categories.
	TipsGoToStaff           *bool                    `json:"tips_go_to_staff"`
	SuggestedTips           datatypes.JSONSlice[int] `json:"suggested_tips"`
	ServiceChargePercentage *int                     `json:"service_charge_percentage"`
	Details                 *string                  `json:"details"`
	CreatedAt               time.Time                `gorm:"index" json:"created_at"`
}

// BeforeCreate hook will be called before creating a new Report record
func (r *Report) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = generateSecureID("rpt_")
	}
	return nil
}
