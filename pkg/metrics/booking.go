package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	ReservationAccepted = "accepted"
	ReservationRejected = "rejected"
)

// BookingMetrics tracks pickup slot reservations and order lifecycle events.
type BookingMetrics struct {
	reservations *prometheus.CounterVec
	placed       prometheus.Counter
	transitions  *prometheus.CounterVec
}

// NewBookingMetrics registers booking metrics on reg. A nil registerer yields a no-op recorder.
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	if reg == nil {
		return &BookingMetrics{}
	}
	reservations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crumb_slot_reservations_total",
		Help: "Pickup slot reservation attempts by outcome.",
	}, []string{"outcome"})
	placed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crumb_orders_placed_total",
		Help: "Orders successfully placed.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crumb_order_status_transitions_total",
		Help: "Applied order status transitions.",
	}, []string{"from", "to"})
	reg.MustRegister(reservations, placed, transitions)
	return &BookingMetrics{
		reservations: reservations,
		placed:       placed,
		transitions:  transitions,
	}
}

// ObserveReservation counts a slot reservation attempt.
func (b *BookingMetrics) ObserveReservation(accepted bool) {
	if b == nil || b.reservations == nil {
		return
	}
	outcome := ReservationRejected
	if accepted {
		outcome = ReservationAccepted
	}
	b.reservations.WithLabelValues(outcome).Inc()
}

// IncOrderPlaced counts a committed order.
func (b *BookingMetrics) IncOrderPlaced() {
	if b == nil || b.placed == nil {
		return
	}
	b.placed.Inc()
}

// ObserveTransition counts an applied status change.
func (b *BookingMetrics) ObserveTransition(from, to string) {
	if b == nil || b.transitions == nil {
		return
	}
	b.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}
