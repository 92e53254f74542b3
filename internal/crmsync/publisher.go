package crmsync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vetsuite/clinic-crm/internal/events"
	"github.com/vetsuite/clinic-crm/internal/pets"
	"github.com/vetsuite/clinic-crm/pkg/logging"
)

// Publisher enqueues CRM mirror jobs. It serves two producers: the outbox
// deliverer forwarding committed booking events, and staff-triggered pet
// syncs from the HTTP API.
type Publisher struct {
	queue  queueClient
	logger *logging.Logger
}

// NewPublisher creates a queue-backed publisher.
func NewPublisher(queue queueClient, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("crmsync: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{
		queue:  queue,
		logger: logger,
	}
}

// EnqueuePetSync publishes a pet.upserted mirror job.
func (p *Publisher) EnqueuePetSync(ctx context.Context, pet *pets.Pet) error {
	event := events.PetUpsertedV1{
		EventID:    uuid.NewString(),
		PetID:      pet.ID,
		PetName:    pet.Name,
		Species:    string(pet.Species),
		Breed:      pet.Breed,
		AgeYears:   pet.AgeYears,
		OwnerName:  pet.OwnerName,
		OwnerEmail: pet.OwnerEmail,
		OwnerPhone: pet.OwnerContact,
		UpsertedAt: time.Now().UTC(),
	}
	return p.publish(ctx, queuePayload{Kind: events.TypePetUpserted, Pet: &event})
}

// Handle forwards a drained outbox entry onto the queue. It implements
// events.DeliveryHandler.
func (p *Publisher) Handle(ctx context.Context, entry events.OutboxEntry) error {
	payload := queuePayload{ID: entry.ID.String(), Kind: entry.Type}
	switch entry.Type {
	case events.TypeAppointmentBooked:
		var event events.AppointmentBookedV1
		if err := json.Unmarshal(entry.Payload, &event); err != nil {
			return fmt.Errorf("crmsync: decode %s: %w", entry.Type, err)
		}
		payload.Appointment = &event
	case events.TypePetUpserted:
		var event events.PetUpsertedV1
		if err := json.Unmarshal(entry.Payload, &event); err != nil {
			return fmt.Errorf("crmsync: decode %s: %w", entry.Type, err)
		}
		payload.Pet = &event
	default:
		p.logger.Warn("skipping unknown outbox event", "type", entry.Type, "event_id", entry.ID)
		return nil
	}
	return p.publish(ctx, payload)
}

func (p *Publisher) publish(ctx context.Context, payload queuePayload) error {
	if ctx == nil {
		ctx = context.Background()
	}
	payload, body, err := encodePayload(payload)
	if err != nil {
		return err
	}
	if err := p.queue.Send(ctx, body); err != nil {
		return fmt.Errorf("crmsync: failed to enqueue job: %w", err)
	}
	p.logger.Debug("crm sync job enqueued", "job_id", payload.ID, "kind", payload.Kind)
	return nil
}
