package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Session
	r.HandleFunc("/api/session", deps.SessionHandler.SignIn).Methods("POST")
	r.HandleFunc("/api/session", deps.SessionHandler.CurrentSession).Methods("GET")
	r.HandleFunc("/api/session", deps.SessionHandler.SignOut).Methods("DELETE")

	// Catalog
	r.HandleFunc("/api/catalog", deps.CatalogHandler.GetCatalog).Methods("GET")

	// Schedule workspace
	s := r.PathPrefix("/api/schedule").Subrouter()
	s.Use(RequireSession(deps.SessionGate))
	s.HandleFunc("", deps.WorkspaceHandler.GetSchedule).Methods("GET")
	s.HandleFunc("/form", deps.WorkspaceHandler.GetForm).Methods("GET")
	s.HandleFunc("/status", deps.WorkspaceHandler.GetStatus).Methods("GET")
	s.HandleFunc("/event", deps.WorkspaceHandler.AddEvent).Methods("POST")
	s.HandleFunc("/event/{eventId}", deps.WorkspaceHandler.RemoveEvent).Methods("DELETE")
	s.HandleFunc("/submit", deps.WorkspaceHandler.Submit).Methods("POST")
	s.HandleFunc("/export.ics", deps.WorkspaceHandler.ExportICS).Methods("GET")
	s.HandleFunc("/export.csv", deps.WorkspaceHandler.ExportCSV).Methods("GET")
	s.HandleFunc("/live", deps.WorkspaceHandler.Live).Methods("GET")
}
