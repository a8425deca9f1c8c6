package timeslots

import (
	"testing"
	"time"

	"github.com/crumbhq/crumb-backend/pkg/db/models"
	pkgerrors "github.com/crumbhq/crumb-backend/pkg/errors"
)

var refNow = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

func slotAt(start time.Time, minutes, maxOrders, current int, active bool) models.TimeSlot {
	return models.TimeSlot{
		StartTime:     start,
		EndTime:       start.Add(time.Duration(minutes) * time.Minute),
		MaxOrders:     maxOrders,
		CurrentOrders: current,
		IsActive:      active,
	}
}

func TestIsAvailable(t *testing.T) {
	start := refNow.Add(time.Hour)
	cases := []struct {
		name string
		slot models.TimeSlot
		want bool
	}{
		{"room left", slotAt(start, 30, 10, 3, true), true},
		{"full", slotAt(start, 30, 10, 10, true), false},
		{"overbooked", slotAt(start, 30, 10, 12, true), false},
		{"inactive with room", slotAt(start, 30, 10, 0, false), false},
		{"inactive and full", slotAt(start, 30, 10, 10, false), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsAvailable(tc.slot); got != tc.want {
				t.Fatalf("IsAvailable = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsInFuture(t *testing.T) {
	if !IsInFuture(slotAt(refNow.Add(time.Second), 30, 1, 0, true), refNow) {
		t.Fatal("slot starting after now should be in the future")
	}
	if IsInFuture(slotAt(refNow, 30, 1, 0, true), refNow) {
		t.Fatal("slot starting exactly now is not in the future")
	}
	if IsInFuture(slotAt(refNow.Add(-time.Hour), 30, 1, 0, true), refNow) {
		t.Fatal("past slot reported as future")
	}
}

func TestRemainingCapacityNeverNegative(t *testing.T) {
	for current := 0; current <= 15; current++ {
		slot := slotAt(refNow, 30, 10, current, true)
		got := RemainingCapacity(slot)
		if got < 0 {
			t.Fatalf("remaining capacity negative for current=%d: %d", current, got)
		}
		if current <= 10 && got != 10-current {
			t.Fatalf("remaining capacity for current=%d = %d", current, got)
		}
	}
}

func TestCapacityPercentage(t *testing.T) {
	pct, err := CapacityPercentage(slotAt(refNow, 30, 8, 2, true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pct != 25 {
		t.Fatalf("expected 25%%, got %f", pct)
	}

	_, err = CapacityPercentage(slotAt(refNow, 30, 0, 0, true))
	if err == nil {
		t.Fatal("expected error for zero-capacity slot")
	}
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCanBook(t *testing.T) {
	future := refNow.Add(2 * time.Hour)
	cases := []struct {
		name       string
		slot       models.TimeSlot
		additional int
		want       bool
	}{
		{"single order with room", slotAt(future, 30, 10, 9, true), 1, true},
		{"exactly fills", slotAt(future, 30, 10, 7, true), 3, true},
		{"exceeds capacity", slotAt(future, 30, 10, 8, true), 3, false},
		{"full slot", slotAt(future, 30, 10, 10, true), 1, false},
		{"inactive", slotAt(future, 30, 10, 0, false), 1, false},
		{"already started", slotAt(refNow.Add(-time.Minute), 30, 10, 0, true), 1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CanBook(tc.slot, tc.additional, refNow)
			if got != tc.want {
				t.Fatalf("CanBook = %v, want %v", got, tc.want)
			}
			if got && tc.slot.CurrentOrders+tc.additional > tc.slot.MaxOrders {
				t.Fatal("CanBook accepted a booking beyond capacity")
			}
		})
	}
}

func TestFilterAvailable(t *testing.T) {
	slots := []models.TimeSlot{
		slotAt(refNow.Add(time.Hour), 30, 10, 0, true),
		slotAt(refNow.Add(-time.Hour), 30, 10, 0, true),
		slotAt(refNow.Add(2*time.Hour), 30, 10, 10, true),
		slotAt(refNow.Add(3*time.Hour), 30, 10, 0, false),
		slotAt(refNow.Add(4*time.Hour), 30, 10, 5, true),
	}
	got := FilterAvailable(slots, refNow)
	if len(got) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(got))
	}
	if !got[0].StartTime.Equal(slots[0].StartTime) || !got[1].StartTime.Equal(slots[4].StartTime) {
		t.Fatalf("unexpected filtered slots: %+v", got)
	}
}

func TestGroupByDateKeepsInputOrder(t *testing.T) {
	dayOne := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	dayTwo := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	slots := []models.TimeSlot{
		slotAt(dayOne.Add(time.Hour), 30, 1, 0, true),
		slotAt(dayTwo, 30, 1, 0, true),
		slotAt(dayOne, 30, 1, 0, true),
	}
	grouped := GroupByDate(slots)
	if len(grouped) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(grouped))
	}
	first := grouped["2026-03-10"]
	if len(first) != 2 {
		t.Fatalf("expected 2 slots on 2026-03-10, got %d", len(first))
	}
	if !first[0].StartTime.Equal(dayOne.Add(time.Hour)) || !first[1].StartTime.Equal(dayOne) {
		t.Fatal("group order does not follow input order")
	}
	if len(grouped["2026-03-11"]) != 1 {
		t.Fatal("expected 1 slot on 2026-03-11")
	}
}

func TestGroupByDateNormalizesToUTC(t *testing.T) {
	paris := time.FixedZone("CET", 3600)
	// 00:30 in Paris is still the previous day in UTC.
	slot := slotAt(time.Date(2026, 3, 11, 0, 30, 0, 0, paris), 30, 1, 0, true)
	grouped := GroupByDate([]models.TimeSlot{slot})
	if _, ok := grouped["2026-03-10"]; !ok {
		t.Fatalf("expected UTC date key, got %v", grouped)
	}
}

func TestDurationAndValidity(t *testing.T) {
	slot := slotAt(refNow, 30, 1, 0, true)
	if Duration(slot) != 30*time.Minute {
		t.Fatalf("unexpected duration %s", Duration(slot))
	}
	if DurationMillis(slot) != 1_800_000 {
		t.Fatalf("unexpected millis %d", DurationMillis(slot))
	}
	if !IsDurationValid(slot, DefaultMinDurationMinutes) {
		t.Fatal("30 minute slot should be valid")
	}
	if !IsDurationValid(slotAt(refNow, 15, 1, 0, true), DefaultMinDurationMinutes) {
		t.Fatal("15 minute slot should meet the default minimum")
	}
	if IsDurationValid(slotAt(refNow, 10, 1, 0, true), DefaultMinDurationMinutes) {
		t.Fatal("10 minute slot should be too short")
	}
}
