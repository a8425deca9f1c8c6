package timeslots

import (
	"time"

	"github.com/crumbhq/crumb-backend/pkg/db/models"
	"github.com/google/uuid"
)

// CreateSlotInput describes a manually configured pickup window.
type CreateSlotInput struct {
	BakeryID  uuid.UUID
	StartTime time.Time
	EndTime   time.Time
	MaxOrders int
}

// GenerateSlotsInput asks for one day of generated windows.
type GenerateSlotsInput struct {
	BakeryID        uuid.UUID
	Date            time.Time
	StartHour       int
	EndHour         int
	IntervalMinutes int
	MaxOrders       int
	// Location interprets Date's calendar day; nil uses the service default.
	Location *time.Location
}

// SlotView is the dashboard projection of a slot.
type SlotView struct {
	models.TimeSlot
	RemainingCapacity  int      `json:"remaining_capacity"`
	CapacityPercentage *float64 `json:"capacity_percentage"`
	DurationMinutes    int      `json:"duration_minutes"`
	Bookable           bool     `json:"bookable"`
}

// SeedResult reports how many windows a seeding pass created.
type SeedResult struct {
	BakeryID uuid.UUID
	Days     int
	Created  int
}

func newSlotView(slot models.TimeSlot, now time.Time) SlotView {
	view := SlotView{
		TimeSlot:          slot,
		RemainingCapacity: RemainingCapacity(slot),
		DurationMinutes:   int(Duration(slot) / time.Minute),
		Bookable:          CanBook(slot, 1, now),
	}
	if pct, err := CapacityPercentage(slot); err == nil {
		view.CapacityPercentage = &pct
	}
	return view
}
