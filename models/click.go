package models

import (
	"time"
)

// Click is one recorded access to a Link's tracking endpoint. Rows are
// append-only and only ever removed by cascade when their Link is deleted.
type Click struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	LinkID    string    `json:"link_id" gorm:"size:36;not null;index"`
	TS        time.Time `json:"ts" gorm:"column:ts;index"`
	IP        string    `json:"ip" gorm:"size:64;index"`
	UserAgent string    `json:"user_agent" gorm:"type:text"`
	Referer   string    `json:"referer" gorm:"type:text"`
	Path      string    `json:"path" gorm:"size:255"`

	// Geolocation is best-effort: either all nil or a partial subset.
	Country *string  `json:"country" gorm:"size:64"`
	Region  *string  `json:"region" gorm:"size:64"`
	City    *string  `json:"city" gorm:"size:64"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}
