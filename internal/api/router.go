package api

import (
	"github.com/gorilla/mux"

	"github.com/careerpilot/shadowcal/internal/api/recovery"
	"github.com/careerpilot/shadowcal/internal/auth"
	"github.com/careerpilot/shadowcal/internal/enrich"
	"github.com/careerpilot/shadowcal/internal/services"
)

// Deps carries the wired services the router exposes.
type Deps struct {
	Calendar   *services.CalendarService
	Preflight  *services.PreflightService
	Enricher   *enrich.Enricher
	Authorizer auth.Authorizer
}

// NewRouter wires all HTTP routes to handlers.
func NewRouter(d Deps) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware)

	// Health
	healthHandler := NewHealthHandler()
	root.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	// Calendar events
	events := NewEventHandler(d.Calendar, d.Authorizer)
	root.HandleFunc("/api/users/{userId}/events", events.CreateEvent).Methods("POST")
	root.HandleFunc("/api/users/{userId}/events", events.ListEvents).Methods("GET")
	root.HandleFunc("/api/users/{userId}/events/{eventId}", events.GetEvent).Methods("GET")
	root.HandleFunc("/api/users/{userId}/events/{eventId}", events.UpdateEvent).Methods("PUT")
	root.HandleFunc("/api/users/{userId}/events/{eventId}", events.DeleteEvent).Methods("DELETE")

	// Profiles
	profile := NewProfileHandler(d.Calendar, d.Authorizer)
	root.HandleFunc("/api/users/{userId}/profile", profile.GetProfile).Methods("GET")
	root.HandleFunc("/api/users/{userId}/profile", profile.PutProfile).Methods("PUT")

	// Preflight
	preflight := NewPreflightHandler(d.Preflight, d.Authorizer)
	root.HandleFunc("/api/users/{userId}/preflight", preflight.Preflight).Methods("POST")

	// Job enrichment
	enrichHandler := NewEnrichHandler(d.Enricher, d.Authorizer)
	root.HandleFunc("/api/jobs/enrich", enrichHandler.EnrichJobs).Methods("POST")

	return root
}
