// Package router assembles the clinic HTTP API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vetsuite/clinic-crm/internal/appointments"
	"github.com/vetsuite/clinic-crm/internal/clinic"
	"github.com/vetsuite/clinic-crm/internal/dashboard"
	"github.com/vetsuite/clinic-crm/internal/pets"
	"github.com/vetsuite/clinic-crm/internal/web"
	"github.com/vetsuite/clinic-crm/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	PetsHandler         *pets.Handler
	AppointmentsHandler *appointments.Handler
	Dashboard           *dashboard.Handler
	SettingsHandler     *clinic.Handler
	AuthSecret          string
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(web.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(web.RequestLogger(cfg.Logger))
	}

	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	r.Group(func(authed chi.Router) {
		authed.Use(web.Auth(cfg.AuthSecret))

		if cfg.PetsHandler != nil {
			authed.Route("/pets", func(p chi.Router) {
				p.Get("/", cfg.PetsHandler.ListPets)
				p.Get("/{petID}", cfg.PetsHandler.GetPet)
				p.Get("/{petID}/medical-records", cfg.PetsHandler.ListMedicalRecords)
				p.Get("/{petID}/vaccine-records", cfg.PetsHandler.ListVaccineRecords)
				p.Get("/{petID}/notes", cfg.PetsHandler.ListNotes)

				p.Group(func(staff chi.Router) {
					staff.Use(web.RequireStaff)
					// The QR scanner is a front-desk tool; tokens default to
					// the pet id, so owners must not resolve them.
					staff.Get("/qr/{code}", cfg.PetsHandler.GetPetByQR)
					staff.Post("/", cfg.PetsHandler.CreatePet)
					staff.Put("/{petID}", cfg.PetsHandler.UpdatePet)
					staff.Put("/{petID}/profile-image", cfg.PetsHandler.UploadProfileImage)
					staff.Post("/{petID}/medical-records", cfg.PetsHandler.AddMedicalRecord)
					staff.Post("/{petID}/vaccine-records", cfg.PetsHandler.AddVaccineRecord)
					staff.Post("/{petID}/notes", cfg.PetsHandler.AddNote)
					staff.Post("/{petID}/generate-login", cfg.PetsHandler.GenerateLogin)
					staff.Post("/{petID}/sync", cfg.PetsHandler.SyncPet)
				})
			})
		}

		if cfg.AppointmentsHandler != nil {
			authed.Route("/appointments", func(a chi.Router) {
				a.Get("/slots", cfg.AppointmentsHandler.GetSlots)
				a.Post("/", cfg.AppointmentsHandler.Book)
				a.Get("/", cfg.AppointmentsHandler.List)
				a.With(web.RequireStaff).Get("/recent", cfg.AppointmentsHandler.Recent)
			})
		}

		if cfg.Dashboard != nil {
			authed.With(web.RequireStaff).Get("/dashboard", cfg.Dashboard.ServeStats)
		}

		if cfg.SettingsHandler != nil {
			authed.Group(func(staff chi.Router) {
				staff.Use(web.RequireStaff)
				staff.Get("/settings", cfg.SettingsHandler.GetSettings)
				staff.Put("/settings", cfg.SettingsHandler.UpdateSettings)
			})
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	web.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
