package models

import (
	"time"

	"github.com/google/uuid"
)

// Bakery is a tenant of the platform. The slot fields drive the automatic seeding of pickup windows.
type Bakery struct {
	ID                  uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Slug                string    `gorm:"column:slug;not null;uniqueIndex"`
	Name                string    `gorm:"column:name;not null"`
	Timezone            string    `gorm:"column:timezone;not null"`
	OpeningHour         int       `gorm:"column:opening_hour;not null"`
	ClosingHour         int       `gorm:"column:closing_hour;not null"`
	SlotIntervalMinutes int       `gorm:"column:slot_interval_minutes;not null"`
	SlotCapacity        int       `gorm:"column:slot_capacity;not null"`
	BookingHorizonDays  int       `gorm:"column:booking_horizon_days;not null"`
	SlotSeedingEnabled  bool      `gorm:"column:slot_seeding_enabled;not null"`
	IsActive            bool      `gorm:"column:is_active;not null"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
