package crmsync

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vetsuite/clinic-crm/internal/events"
	"github.com/vetsuite/clinic-crm/internal/pets"
	"github.com/vetsuite/clinic-crm/pkg/logging"
)

func TestPublisher_EnqueuePetSync(t *testing.T) {
	queue := &stubQueue{}
	publisher := NewPublisher(queue, logging.Default())

	pet := &pets.Pet{
		ID:           "p002",
		Name:         "Milo",
		Species:      pets.SpeciesCat,
		Breed:        "Tabby",
		AgeYears:     4,
		OwnerName:    "Sarah Jones",
		OwnerEmail:   "sarah@example.com",
		OwnerContact: "+15551234567",
	}
	if err := publisher.EnqueuePetSync(context.Background(), pet); err != nil {
		t.Fatalf("enqueue returned error: %v", err)
	}
	if len(queue.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(queue.sent))
	}

	var payload queuePayload
	if err := json.Unmarshal([]byte(queue.sent[0]), &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload.Kind != events.TypePetUpserted {
		t.Fatalf("expected kind %s, got %s", events.TypePetUpserted, payload.Kind)
	}
	if payload.ID == "" {
		t.Fatal("expected a generated job id")
	}
	if payload.Pet == nil || payload.Pet.PetID != "p002" {
		t.Fatalf("expected pet payload for p002, got %#v", payload.Pet)
	}
	if payload.Pet.OwnerEmail != "sarah@example.com" {
		t.Fatalf("expected owner email to carry over, got %s", payload.Pet.OwnerEmail)
	}
}

func TestPublisher_HandleForwardsBookingEvent(t *testing.T) {
	queue := &stubQueue{}
	publisher := NewPublisher(queue, logging.Default())

	event := events.AppointmentBookedV1{
		EventID:         uuid.NewString(),
		AppointmentID:   "appt-1",
		PetID:           "p003",
		PetName:         "Buddy",
		OwnerName:       "Mike Smith",
		RequesterEmail:  "mike@example.com",
		Date:            "2024-06-11",
		StartTime:       "14:00",
		DurationMinutes: 30,
		BookedAt:        time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC),
	}
	raw, _ := json.Marshal(event)
	entryID := uuid.New()

	err := publisher.Handle(context.Background(), events.OutboxEntry{
		ID:      entryID,
		Type:    events.TypeAppointmentBooked,
		Payload: raw,
	})
	if err != nil {
		t.Fatalf("handle returned error: %v", err)
	}
	if len(queue.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(queue.sent))
	}

	var payload queuePayload
	if err := json.Unmarshal([]byte(queue.sent[0]), &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload.ID != entryID.String() {
		t.Fatalf("expected job id %s, got %s", entryID, payload.ID)
	}
	if payload.Appointment == nil || payload.Appointment.AppointmentID != "appt-1" {
		t.Fatalf("expected appointment payload, got %#v", payload.Appointment)
	}
}

func TestPublisher_HandleSkipsUnknownEvents(t *testing.T) {
	queue := &stubQueue{}
	publisher := NewPublisher(queue, logging.Default())

	err := publisher.Handle(context.Background(), events.OutboxEntry{
		ID:      uuid.New(),
		Type:    "something.else.v1",
		Payload: json.RawMessage(`{}`),
	})
	if err != nil {
		t.Fatalf("unknown events should not error, got %v", err)
	}
	if len(queue.sent) != 0 {
		t.Fatalf("expected no messages, got %d", len(queue.sent))
	}
}

func TestPublisher_HandleRejectsBadPayload(t *testing.T) {
	queue := &stubQueue{}
	publisher := NewPublisher(queue, logging.Default())

	err := publisher.Handle(context.Background(), events.OutboxEntry{
		ID:      uuid.New(),
		Type:    events.TypeAppointmentBooked,
		Payload: json.RawMessage(`not json`),
	})
	if err == nil {
		t.Fatal("expected decode error")
	}
}

type stubQueue struct {
	sent []string
}

func (s *stubQueue) Send(ctx context.Context, body string) error {
	s.sent = append(s.sent, body)
	return nil
}

func (s *stubQueue) Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error) {
	return nil, context.Canceled
}

func (s *stubQueue) Delete(ctx context.Context, receiptHandle string) error {
	return nil
}
