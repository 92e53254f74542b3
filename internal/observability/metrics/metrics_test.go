package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestBookingMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveBooking("booked", 0.02)
	m.ObserveBooking("conflict", 0.01)
	m.ObserveBooking("booked", 0.03)
	m.ObserveSlotQuery()

	if got := testutil.ToFloat64(m.bookingsTotal.WithLabelValues("booked")); got != 2 {
		t.Fatalf("expected 2 booked appointments, got %v", got)
	}
	if got := testutil.ToFloat64(m.bookingsTotal.WithLabelValues("conflict")); got != 1 {
		t.Fatalf("expected 1 conflict, got %v", got)
	}
	if got := testutil.ToFloat64(m.slotQueries); got != 1 {
		t.Fatalf("expected 1 slot query, got %v", got)
	}
}

func TestSyncMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSyncMetrics(reg)

	m.ObserveDelivery("appointment.booked.v1", "ok")
	m.ObserveDelivery("appointment.booked.v1", "error")

	if got := testutil.ToFloat64(m.deliveriesTotal.WithLabelValues("appointment.booked.v1", "ok")); got != 1 {
		t.Fatalf("expected 1 ok delivery, got %v", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var b *BookingMetrics
	var s *SyncMetrics
	b.ObserveBooking("booked", 0)
	b.ObserveSlotQuery()
	s.ObserveDelivery("pet.upserted.v1", "ok")
}
