package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mzeev8/online-medical-consultation/internal/app"
	"github.com/mzeev8/online-medical-consultation/internal/signal"
	"github.com/mzeev8/online-medical-consultation/internal/store"
	"github.com/mzeev8/online-medical-consultation/pkg/auth"
	"github.com/mzeev8/online-medical-consultation/pkg/metrics"
)

// NewRouter wires up all HTTP routes, middleware, and handlers
func NewRouter(cfg app.Config, logger *slog.Logger, hub *signal.Hub, db *store.Postgres, events *signal.Publisher) http.Handler {
	jwt := auth.New(cfg.JWTSecret)
	mw := NewMiddleware(cfg, jwt)

	authAPI := &AuthAPI{DB: db, JWT: jwt}
	apptAPI := &AppointmentsAPI{DB: db}
	docAPI := &DoctorsAPI{DB: db}
	patAPI := &PatientsAPI{DB: db}

	mux := http.NewServeMux()

	// Health / readiness / metrics
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) })
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if events != nil {
			if err := events.Ping(ctx); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(200)
	})
	mux.Handle("/metrics", metrics.Handler())

	// WebSocket signaling endpoint; identity arrives in join-room, not here
	mux.Handle("/ws", http.HandlerFunc(hub.ServeWS))

	// Auth endpoints
	mux.Handle("POST /api/auth/register", http.HandlerFunc(authAPI.Register))
	mux.Handle("POST /api/auth/login", http.HandlerFunc(authAPI.Login))
	mux.Handle("GET /api/auth/me", mw.Auth(http.HandlerFunc(authAPI.Me)))

	// Doctor endpoints (JWT-protected)
	mux.Handle("POST /api/doctors", mw.Auth(http.HandlerFunc(docAPI.Create)))
	mux.Handle("GET /api/doctors/user/{userId}", mw.Auth(http.HandlerFunc(docAPI.GetByUser)))
	mux.Handle("GET /api/doctors/user/{userId}/hours", mw.Auth(http.HandlerFunc(docAPI.WorkingHours)))
	mux.Handle("GET /api/doctors/city/{city}", mw.Auth(http.HandlerFunc(docAPI.ListByCity)))
	mux.Handle("GET /api/doctors/{id}", mw.Auth(http.HandlerFunc(docAPI.Get)))
	mux.Handle("PUT /api/doctors/{id}", mw.Auth(http.HandlerFunc(docAPI.Update)))
	mux.Handle("DELETE /api/doctors/{id}", mw.Auth(http.HandlerFunc(docAPI.Delete)))

	// Patient endpoints
	mux.Handle("POST /api/patients", mw.Auth(http.HandlerFunc(patAPI.Create)))
	mux.Handle("GET /api/patients/user/{userId}", mw.Auth(http.HandlerFunc(patAPI.GetByUser)))
	mux.Handle("PUT /api/patients/{id}", mw.Auth(http.HandlerFunc(patAPI.Update)))
	mux.Handle("DELETE /api/patients/{id}", mw.Auth(http.HandlerFunc(patAPI.Delete)))

	// Appointment endpoints
	mux.Handle("POST /api/appointments", mw.Auth(http.HandlerFunc(apptAPI.Create)))
	mux.Handle("GET /api/appointments/doctor/{userId}", mw.Auth(http.HandlerFunc(apptAPI.ListByDoctor)))
	mux.Handle("GET /api/appointments/patient/{userId}", mw.Auth(http.HandlerFunc(apptAPI.ListByPatient)))
	mux.Handle("POST /api/appointments/confirm/{id}", mw.Auth(mw.RequireRole("doctor", http.HandlerFunc(apptAPI.Confirm))))
	mux.Handle("PATCH /api/appointments/cancel/{id}", mw.Auth(http.HandlerFunc(apptAPI.Cancel)))
	mux.Handle("POST /api/appointments/complete/{id}", mw.Auth(mw.RequireRole("doctor", http.HandlerFunc(apptAPI.Complete))))
	mux.Handle("GET /api/appointments/{id}", mw.Auth(http.HandlerFunc(apptAPI.Get)))
	mux.Handle("PUT /api/appointments/{id}", mw.Auth(http.HandlerFunc(apptAPI.Update)))
	mux.Handle("DELETE /api/appointments/{id}", mw.Auth(http.HandlerFunc(apptAPI.Delete)))

	// CORS + rate limit applied globally
	return mw.Wrap(mux)
}
