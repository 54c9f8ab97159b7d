// Package httpapi exposes the event use cases as a JSON REST API.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"eventplanner/internal/ports/input"
	"eventplanner/internal/ports/output"
)

// Config wires the router to the application.
type Config struct {
	Events        input.EventUseCase
	Registrations input.RegistrationUseCase
	Confirmations input.ConfirmationUseCase
	Auth          *Authenticator
	Translator    output.T
	DefaultLocale string
	Logger        *slog.Logger
	// Now defaults to time.Now; it picks the year when a listing has none.
	Now func() time.Time
}

type api struct {
	events        input.EventUseCase
	registrations input.RegistrationUseCase
	confirmations input.ConfirmationUseCase
	auth          *Authenticator
	translator    output.T
	defaultLocale string
	logger        *slog.Logger
	now           func() time.Time
}

// NewRouter builds the HTTP handler for the API.
func NewRouter(cfg Config) http.Handler {
	a := &api{
		events:        cfg.Events,
		registrations: cfg.Registrations,
		confirmations: cfg.Confirmations,
		auth:          cfg.Auth,
		translator:    cfg.Translator,
		defaultLocale: cfg.DefaultLocale,
		logger:        cfg.Logger,
		now:           cfg.Now,
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.defaultLocale == "" {
		a.defaultLocale = "de"
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/health", health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(a.authenticate)

		r.Route("/events", func(r chi.Router) {
			r.Get("/", a.listEvents)
			r.Post("/", a.createEvent)

			r.Route("/{eventKey}", func(r chi.Router) {
				r.Get("/", a.getEvent)
				r.Patch("/", a.updateEvent)
				r.Delete("/", a.deleteEvent)
				r.Put("/slots", a.setSlots)

				r.Route("/registrations", func(r chi.Router) {
					r.Post("/", a.addRegistration)
					r.Put("/{registrationKey}", a.updateRegistration)
					r.Delete("/{registrationKey}", a.removeRegistration)
					r.Post("/{registrationKey}/confirm", a.confirmRegistration)
					r.Post("/{registrationKey}/decline", a.declineRegistration)
				})
			})
		})
	})
	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// accessLog writes one line per request.
func (a *api) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		a.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
