package model

import (
	"time"

	"gorm.io/gorm"
)

// Business represents one canonical physical establishment. Duplicate
// submissions converge onto a single row through the identity hash.
type Business struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Hash      string    `gorm:"uniqueIndex;size:64;not null" json:"-"`
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
}

// BeforeCreate hook will be called before creating a new Business record
func (b *Business) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = generateSecureID("biz_")
	}
	return nil
}
