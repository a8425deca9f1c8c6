package timeslots

import (
	"time"

	"github.com/crumbhq/crumb-backend/pkg/db/models"
	pkgerrors "github.com/crumbhq/crumb-backend/pkg/errors"
)

// DefaultMinDurationMinutes is the shortest pickup window a bakery may configure.
const DefaultMinDurationMinutes = 15

// dateKeyLayout formats the grouping key used by GroupByDate.
const dateKeyLayout = "2006-01-02"

// The functions below are pure predicates over a slot value. CanBook answers
// "would this booking be valid right now"; capacity is only ever claimed by
// Repository.Reserve, which re-checks the same conditions in a single UPDATE.

// IsAvailable reports whether the slot is active and still has room.
func IsAvailable(slot models.TimeSlot) bool {
	return slot.IsActive && slot.CurrentOrders < slot.MaxOrders
}

// IsInFuture reports whether the slot starts strictly after now.
func IsInFuture(slot models.TimeSlot, now time.Time) bool {
	return slot.StartTime.After(now)
}

// RemainingCapacity never goes negative, even for overbooked slots.
func RemainingCapacity(slot models.TimeSlot) int {
	return max(0, slot.MaxOrders-slot.CurrentOrders)
}

// CapacityPercentage returns how full the slot is, in percent. A slot without
// capacity has no meaningful percentage and yields a validation error.
func CapacityPercentage(slot models.TimeSlot) (float64, error) {
	if slot.MaxOrders <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "slot has no capacity").
			WithDetails(map[string]any{"max_orders": slot.MaxOrders})
	}
	return float64(slot.CurrentOrders) / float64(slot.MaxOrders) * 100, nil
}

// CanBook is a pre-flight check for booking additional orders into slot.
func CanBook(slot models.TimeSlot, additional int, now time.Time) bool {
	return IsAvailable(slot) &&
		IsInFuture(slot, now) &&
		slot.CurrentOrders+additional <= slot.MaxOrders
}

// FilterAvailable keeps the slots that are both available and upcoming.
func FilterAvailable(slots []models.TimeSlot, now time.Time) []models.TimeSlot {
	out := make([]models.TimeSlot, 0, len(slots))
	for _, slot := range slots {
		if IsAvailable(slot) && IsInFuture(slot, now) {
			out = append(out, slot)
		}
	}
	return out
}

// DateKey returns the YYYY-MM-DD grouping key of a slot, computed in UTC.
func DateKey(slot models.TimeSlot) string {
	return slot.StartTime.UTC().Format(dateKeyLayout)
}

// GroupByDate buckets slots by DateKey, preserving input order within each bucket.
func GroupByDate(slots []models.TimeSlot) map[string][]models.TimeSlot {
	grouped := make(map[string][]models.TimeSlot)
	for _, slot := range slots {
		key := DateKey(slot)
		grouped[key] = append(grouped[key], slot)
	}
	return grouped
}

// Duration is the length of the pickup window.
func Duration(slot models.TimeSlot) time.Duration {
	return slot.EndTime.Sub(slot.StartTime)
}

// DurationMillis is Duration expressed in milliseconds.
func DurationMillis(slot models.TimeSlot) int64 {
	return Duration(slot).Milliseconds()
}

// IsDurationValid reports whether the window lasts at least minMinutes.
func IsDurationValid(slot models.TimeSlot, minMinutes int) bool {
	return Duration(slot) >= time.Duration(minMinutes)*time.Minute
}
