package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestBookingMetricsCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewBookingMetrics(reg)

	metrics.ObserveReservation(true)
	metrics.ObserveReservation(true)
	metrics.ObserveReservation(false)
	metrics.IncOrderPlaced()
	metrics.ObserveTransition("PENDING", "CONFIRMED")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "crumb_slot_reservations_total", "outcome", ReservationAccepted); err != nil {
		t.Fatalf("fetch accepted: %v", err)
	} else if got != 2 {
		t.Fatalf("expected accepted=2, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "crumb_slot_reservations_total", "outcome", ReservationRejected); err != nil {
		t.Fatalf("fetch rejected: %v", err)
	} else if got != 1 {
		t.Fatalf("expected rejected=1, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "crumb_order_status_transitions_total", "to", "CONFIRMED"); err != nil {
		t.Fatalf("fetch transitions: %v", err)
	} else if got != 1 {
		t.Fatalf("expected transitions=1, got %f", got)
	}

	placed := findMetricFamily(mfs, "crumb_orders_placed_total")
	if placed == nil || len(placed.GetMetric()) != 1 {
		t.Fatalf("orders placed metric missing")
	}
	if got := placed.GetMetric()[0].GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected placed=1, got %f", got)
	}
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var metrics *BookingMetrics
	metrics.ObserveReservation(true)
	metrics.IncOrderPlaced()
	metrics.ObserveTransition("a", "b")
	NewBookingMetrics(nil).IncOrderPlaced()
}
