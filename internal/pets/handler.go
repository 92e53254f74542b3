package pets

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vetsuite/clinic-crm/internal/identity"
	"github.com/vetsuite/clinic-crm/internal/web"
	"github.com/vetsuite/clinic-crm/pkg/logging"
)

// ContactSyncer enqueues a best-effort mirror of the pet's owner contact to
// the external CRM.
type ContactSyncer interface {
	EnqueuePetSync(ctx context.Context, pet *Pet) error
}

// ImageStore persists uploaded profile photos and returns their object key.
type ImageStore interface {
	PutProfileImage(ctx context.Context, petID, contentType string, data []byte) (string, error)
}

const maxImageBytes = 5 << 20

// Handler exposes pet CRUD, record appends, QR lookup, CRM sync, and login
// provisioning over HTTP.
type Handler struct {
	service     *Service
	provisioner *identity.Provisioner
	syncer      ContactSyncer
	images      ImageStore
	logger      *logging.Logger
}

// NewHandler creates a pets HTTP handler. The provisioner, syncer, and image
// store may be nil when the corresponding integrations are disabled.
func NewHandler(service *Service, provisioner *identity.Provisioner, syncer ContactSyncer, images ImageStore, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, provisioner: provisioner, syncer: syncer, images: images, logger: logger}
}

// SyncPet handles POST /pets/{petID}/sync (staff only). It enqueues a CRM
// contact mirror for the pet's owner.
func (h *Handler) SyncPet(w http.ResponseWriter, r *http.Request) {
	if h.syncer == nil {
		web.WriteError(w, http.StatusServiceUnavailable, "CRM sync is not configured")
		return
	}

	pet, err := h.service.repo.GetByID(r.Context(), chi.URLParam(r, "petID"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if err := h.syncer.EnqueuePetSync(r.Context(), pet); err != nil {
		h.logger.Error("pet sync enqueue failed", "error", err, "pet_id", pet.ID)
		web.WriteError(w, http.StatusBadGateway, "could not enqueue CRM sync")
		return
	}
	web.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "petId": pet.ID})
}

// ListPets handles GET /pets.
func (h *Handler) ListPets(w http.ResponseWriter, r *http.Request) {
	caller, ok := web.IdentityFromContext(r.Context())
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	list, err := h.service.ListForCaller(r.Context(), caller)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, list)
}

// CreatePet handles POST /pets (staff only).
func (h *Handler) CreatePet(w http.ResponseWriter, r *http.Request) {
	var req CreatePetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	pet, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusCreated, pet)
}

// GetPet handles GET /pets/{petID} with ownership scoping.
func (h *Handler) GetPet(w http.ResponseWriter, r *http.Request) {
	caller, ok := web.IdentityFromContext(r.Context())
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	pet, err := h.service.GetForCaller(r.Context(), caller, chi.URLParam(r, "petID"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, pet)
}

// UpdatePet handles PUT /pets/{petID} (staff only).
func (h *Handler) UpdatePet(w http.ResponseWriter, r *http.Request) {
	var req CreatePetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	pet, err := h.service.Update(r.Context(), chi.URLParam(r, "petID"), &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, pet)
}

// GetPetByQR handles GET /pets/qr/{code}.
func (h *Handler) GetPetByQR(w http.ResponseWriter, r *http.Request) {
	pet, err := h.service.GetByQRCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, pet)
}

// AddMedicalRecord handles POST /pets/{petID}/medical-records (staff only).
func (h *Handler) AddMedicalRecord(w http.ResponseWriter, r *http.Request) {
	var rec MedicalRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created, err := h.service.AddMedicalRecord(r.Context(), chi.URLParam(r, "petID"), &rec)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusCreated, created)
}

// ListMedicalRecords handles GET /pets/{petID}/medical-records.
func (h *Handler) ListMedicalRecords(w http.ResponseWriter, r *http.Request) {
	caller, ok := web.IdentityFromContext(r.Context())
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	recs, err := h.service.MedicalRecords(r.Context(), caller, chi.URLParam(r, "petID"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, recs)
}

// AddVaccineRecord handles POST /pets/{petID}/vaccine-records (staff only).
func (h *Handler) AddVaccineRecord(w http.ResponseWriter, r *http.Request) {
	var rec VaccineRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created, err := h.service.AddVaccineRecord(r.Context(), chi.URLParam(r, "petID"), &rec)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusCreated, created)
}

// ListVaccineRecords handles GET /pets/{petID}/vaccine-records.
func (h *Handler) ListVaccineRecords(w http.ResponseWriter, r *http.Request) {
	caller, ok := web.IdentityFromContext(r.Context())
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	recs, err := h.service.VaccineRecords(r.Context(), caller, chi.URLParam(r, "petID"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, recs)
}

// AddNote handles POST /pets/{petID}/notes (staff only).
func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	var note Note
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created, err := h.service.AddNote(r.Context(), chi.URLParam(r, "petID"), &note)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusCreated, created)
}

// ListNotes handles GET /pets/{petID}/notes with private-note filtering.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	caller, ok := web.IdentityFromContext(r.Context())
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	notes, err := h.service.VisibleNotes(r.Context(), caller, chi.URLParam(r, "petID"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, notes)
}

// UploadProfileImage handles PUT /pets/{petID}/profile-image (staff only).
// The body is the raw image; the stored object key lands on the pet record.
func (h *Handler) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		web.WriteError(w, http.StatusServiceUnavailable, "image storage is not configured")
		return
	}

	petID := chi.URLParam(r, "petID")
	if _, err := h.service.repo.GetByID(r.Context(), petID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImageBytes))
	if err != nil {
		web.WriteError(w, http.StatusRequestEntityTooLarge, "image exceeds the size limit")
		return
	}
	if len(data) == 0 {
		web.WriteError(w, http.StatusBadRequest, "image body required")
		return
	}

	key, err := h.images.PutProfileImage(r.Context(), petID, r.Header.Get("Content-Type"), data)
	if err != nil {
		h.logger.Error("profile image upload failed", "error", err, "pet_id", petID)
		web.WriteError(w, http.StatusBadGateway, "could not store image")
		return
	}

	pet, err := h.service.SetProfileImage(r.Context(), petID, key)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, pet)
}

// GenerateLogin handles POST /pets/{petID}/generate-login (staff only).
func (h *Handler) GenerateLogin(w http.ResponseWriter, r *http.Request) {
	if h.provisioner == nil {
		web.WriteError(w, http.StatusServiceUnavailable, "login provisioning is not configured")
		return
	}

	petID := chi.URLParam(r, "petID")
	pet, err := h.service.repo.GetByID(r.Context(), petID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if pet.OwnerEmail == "" {
		web.WriteError(w, http.StatusBadRequest, "pet has no owner email on file")
		return
	}

	result, err := h.provisioner.GenerateLogin(r.Context(), identity.LoginRequest{
		OwnerEmail: pet.OwnerEmail,
		OwnerName:  pet.OwnerName,
		PetID:      pet.ID,
		PetName:    pet.Name,
	})
	if err != nil {
		h.logger.Error("login provisioning failed", "error", err, "pet_id", petID)
		web.WriteError(w, http.StatusBadGateway, "could not provision owner login")
		return
	}
	web.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPetNotFound):
		web.WriteError(w, http.StatusNotFound, "pet not found")
	case errors.Is(err, ErrNotAuthorized):
		web.WriteError(w, http.StatusForbidden, "you are not permitted to view this record")
	case errors.Is(err, ErrInvalidName), errors.Is(err, ErrInvalidAge),
		errors.Is(err, ErrInvalidWeight), errors.Is(err, ErrMissingOwner):
		web.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("pets request failed", "error", err)
		web.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
