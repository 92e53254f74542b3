package clinic

import (
	"encoding/json"
	"net/http"

	"github.com/vetsuite/clinic-crm/internal/web"
	"github.com/vetsuite/clinic-crm/pkg/logging"
)

// Handler exposes the scheduling settings over HTTP (staff only).
type Handler struct {
	store  *Store
	logger *logging.Logger
}

// NewHandler creates a clinic settings HTTP handler.
func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if store == nil {
		panic("clinic: settings store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// GetSettings handles GET /settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to load clinic settings", "error", err)
		web.WriteError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	web.WriteJSON(w, http.StatusOK, settings)
}

// UpdateSettings handles PUT /settings.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := settings.Validate(); err != nil {
		web.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.store.Set(r.Context(), &settings); err != nil {
		h.logger.Error("failed to save clinic settings", "error", err)
		web.WriteError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}
	web.WriteJSON(w, http.StatusOK, settings)
}
