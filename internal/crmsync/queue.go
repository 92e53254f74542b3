// Package crmsync mirrors bookings and pet profiles into the external CRM
// through a queue so the HTTP path never waits on the CRM.
package crmsync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/vetsuite/clinic-crm/internal/events"
)

type queueClient interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

type queueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

type queuePayload struct {
	ID          string                      `json:"id"`
	Kind        string                      `json:"kind"`
	Appointment *events.AppointmentBookedV1 `json:"appointment,omitempty"`
	Pet         *events.PetUpsertedV1       `json:"pet,omitempty"`
}

func encodePayload(payload queuePayload) (queuePayload, string, error) {
	if payload.ID == "" {
		payload.ID = uuid.NewString()
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return queuePayload{}, "", fmt.Errorf("crmsync: encode payload: %w", err)
	}
	return payload, string(body), nil
}
