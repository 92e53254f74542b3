package crmsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vetsuite/clinic-crm/internal/crm"
	"github.com/vetsuite/clinic-crm/internal/events"
	"github.com/vetsuite/clinic-crm/internal/observability/metrics"
	"github.com/vetsuite/clinic-crm/pkg/logging"
)

const (
	defaultWorkerCount = 2
	defaultWaitSeconds = 5
	defaultBatchSize   = 10
)

// CRMAPI is the CRM surface the worker drives.
type CRMAPI interface {
	UpsertContact(ctx context.Context, req crm.ContactRequest) (*crm.Contact, error)
	CreateAppointment(ctx context.Context, req crm.AppointmentRequest) (*crm.CRMAppointment, error)
}

// AppointmentBackfiller writes the CRM appointment id back onto the clinic's
// row once the mirror lands.
type AppointmentBackfiller interface {
	SetCRMAppointmentID(ctx context.Context, id, crmID string) error
}

// WorkerOption customizes worker behavior.
type WorkerOption func(*workerConfig)

type workerConfig struct {
	workers          int
	receiveWaitSecs  int
	receiveBatchSize int
}

// WithWorkerCount sets the number of concurrent consumers.
func WithWorkerCount(n int) WorkerOption {
	return func(cfg *workerConfig) {
		if n > 0 {
			cfg.workers = n
		}
	}
}

// Worker drains mirror jobs and replays them against the CRM. Each message
// gets exactly one attempt: the delivery is best effort and a failed mirror
// never blocks the queue.
type Worker struct {
	queue        queueClient
	crm          CRMAPI
	appointments AppointmentBackfiller
	metrics      *metrics.SyncMetrics
	logger       *logging.Logger
	cfg          workerConfig
	wg           sync.WaitGroup
}

func NewWorker(queue queueClient, crmAPI CRMAPI, appointments AppointmentBackfiller, m *metrics.SyncMetrics, logger *logging.Logger, opts ...WorkerOption) *Worker {
	if queue == nil {
		panic("crmsync: queue cannot be nil")
	}
	if crmAPI == nil {
		panic("crmsync: crm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	cfg := workerConfig{
		workers:          defaultWorkerCount,
		receiveWaitSecs:  defaultWaitSeconds,
		receiveBatchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Worker{
		queue:        queue,
		crm:          crmAPI,
		appointments: appointments,
		metrics:      m,
		logger:       logger,
		cfg:          cfg,
	}
}

func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.cfg.workers; i++ {
		w.wg.Add(1)
		go w.run(ctx, i+1)
	}
}

// Wait blocks until all worker goroutines exit.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context, workerID int) {
	defer w.wg.Done()
	w.logger.Debug("crm sync worker started", "worker_id", workerID)

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("crm sync worker stopping", "worker_id", workerID)
			return
		default:
		}

		messages, err := w.queue.Receive(ctx, w.cfg.receiveBatchSize, w.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			w.logger.Error("failed to receive crm sync jobs", "error", err, "worker_id", workerID)
			time.Sleep(backoff)
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, msg := range messages {
			w.handleMessage(ctx, msg)
		}
	}
}

func (w *Worker) handleMessage(ctx context.Context, msg queueMessage) {
	// One attempt per message: delete regardless of outcome.
	defer w.deleteMessage(msg.ReceiptHandle)

	var payload queuePayload
	if err := json.Unmarshal([]byte(msg.Body), &payload); err != nil {
		w.logger.Error("failed to decode crm sync job", "error", err, "msg_id", msg.ID)
		return
	}

	var err error
	switch payload.Kind {
	case events.TypeAppointmentBooked:
		err = w.mirrorAppointment(ctx, payload.Appointment)
	case events.TypePetUpserted:
		err = w.mirrorPet(ctx, payload.Pet)
	default:
		w.logger.Warn("unknown crm sync job kind", "kind", payload.Kind, "job_id", payload.ID)
		return
	}

	if err != nil {
		w.metrics.ObserveDelivery(payload.Kind, "error")
		w.logger.Error("crm mirror failed", "error", err, "kind", payload.Kind, "job_id", payload.ID)
		return
	}
	w.metrics.ObserveDelivery(payload.Kind, "ok")
}

func (w *Worker) mirrorAppointment(ctx context.Context, event *events.AppointmentBookedV1) error {
	if event == nil {
		return fmt.Errorf("crmsync: appointment job without payload")
	}

	contact, err := w.crm.UpsertContact(ctx, crm.ContactRequest{
		Email:     event.RequesterEmail,
		FirstName: firstName(event.OwnerName),
		LastName:  lastName(event.OwnerName),
		CustomField: crm.ContactPet{
			PetName: event.PetName,
			PetID:   event.PetID,
		},
	})
	if err != nil {
		return fmt.Errorf("crmsync: upsert contact: %w", err)
	}

	start, err := time.Parse("2006-01-02 15:04", event.Date+" "+event.StartTime)
	if err != nil {
		return fmt.Errorf("crmsync: parse appointment start: %w", err)
	}
	end := start.Add(time.Duration(event.DurationMinutes) * time.Minute)

	appt, err := w.crm.CreateAppointment(ctx, crm.AppointmentRequest{
		Title:       "Pet Appointment: " + event.PetName,
		Description: event.Reason,
		StartTime:   start.UTC().Format(time.RFC3339),
		EndTime:     end.UTC().Format(time.RFC3339),
		ContactID:   contact.ID,
	})
	if err != nil {
		return fmt.Errorf("crmsync: create appointment: %w", err)
	}

	if w.appointments != nil {
		if err := w.appointments.SetCRMAppointmentID(ctx, event.AppointmentID, appt.ID); err != nil {
			w.logger.Warn("crm id backfill failed", "error", err, "appointment_id", event.AppointmentID)
		}
	}
	return nil
}

func (w *Worker) mirrorPet(ctx context.Context, event *events.PetUpsertedV1) error {
	if event == nil {
		return fmt.Errorf("crmsync: pet job without payload")
	}
	_, err := w.crm.UpsertContact(ctx, crm.ContactRequest{
		Email:     event.OwnerEmail,
		Phone:     event.OwnerPhone,
		FirstName: firstName(event.OwnerName),
		LastName:  lastName(event.OwnerName),
		CustomField: crm.ContactPet{
			PetName:    event.PetName,
			PetSpecies: event.Species,
			PetBreed:   event.Breed,
			PetAge:     event.AgeYears,
			PetID:      event.PetID,
		},
	})
	if err != nil {
		return fmt.Errorf("crmsync: upsert contact: %w", err)
	}
	return nil
}

func (w *Worker) deleteMessage(receiptHandle string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.queue.Delete(ctx, receiptHandle); err != nil {
		w.logger.Warn("failed to delete crm sync message", "error", err)
	}
}

func firstName(full string) string {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

func lastName(full string) string {
	parts := strings.Fields(full)
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts[1:], " ")
}
