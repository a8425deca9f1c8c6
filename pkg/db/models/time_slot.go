package models

import (
	"time"

	"github.com/google/uuid"
)

// TimeSlot is one bookable pickup window. CurrentOrders only moves through the
// conditional updates in the timeslots repository.
type TimeSlot struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	BakeryID      uuid.UUID `gorm:"column:bakery_id;type:uuid;not null;index" json:"bakery_id"`
	StartTime     time.Time `gorm:"column:start_time;not null" json:"start_time"`
	EndTime       time.Time `gorm:"column:end_time;not null" json:"end_time"`
	MaxOrders     int       `gorm:"column:max_orders;not null" json:"max_orders"`
	CurrentOrders int       `gorm:"column:current_orders;not null" json:"current_orders"`
	IsActive      bool      `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
