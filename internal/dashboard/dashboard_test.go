package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetsuite/clinic-crm/internal/appointments"
	"github.com/vetsuite/clinic-crm/pkg/logging"
)

type stubAppointmentStats struct {
	countedDay time.Time
	count      int
	recent     []*appointments.Appointment
}

func (s *stubAppointmentStats) CountOn(_ context.Context, day time.Time) (int, error) {
	s.countedDay = day
	return s.count, nil
}

func (s *stubAppointmentStats) Recent(_ context.Context, limit int) ([]*appointments.Appointment, error) {
	if len(s.recent) > limit {
		return s.recent[:limit], nil
	}
	return s.recent, nil
}

type stubPetCounter struct {
	count int
}

func (s *stubPetCounter) Count(_ context.Context) (int, error) {
	return s.count, nil
}

func TestBuildStats(t *testing.T) {
	appts := &stubAppointmentStats{
		count: 3,
		recent: []*appointments.Appointment{
			{ID: "a1", PetName: "Buddy"},
			{ID: "a2", PetName: "Milo"},
		},
	}
	dash := NewHandler(appts, &stubPetCounter{count: 12}, logging.Default())
	dash.now = func() time.Time {
		return time.Date(2024, 6, 10, 15, 42, 7, 0, time.UTC)
	}

	stats, err := dash.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.AppointmentsToday)
	assert.Equal(t, 12, stats.TotalPets)
	require.Len(t, stats.RecentAppointments, 2)
	assert.Equal(t, "a1", stats.RecentAppointments[0].ID)
}

func TestBuildQueriesMidnight(t *testing.T) {
	appts := &stubAppointmentStats{}
	dash := NewHandler(appts, &stubPetCounter{}, logging.Default())
	dash.now = func() time.Time {
		return time.Date(2024, 6, 10, 23, 59, 59, 0, time.UTC)
	}

	_, err := dash.Build(context.Background())
	require.NoError(t, err)

	want := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, want, appts.countedDay)
}

func TestServeStats(t *testing.T) {
	appts := &stubAppointmentStats{count: 1}
	dash := NewHandler(appts, &stubPetCounter{count: 4}, logging.Default())

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	dash.ServeStats(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.AppointmentsToday)
	assert.Equal(t, 4, body.TotalPets)
}
