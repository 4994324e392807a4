package api

import (
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRoutes configures all routes. Dashboard pages and assets live under the
// handler's base path; health and metrics stay at the root.
func SetupRoutes(handler *Handler, static fs.FS, metrics http.Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	if metrics != nil {
		r.Handle("/metrics", metrics).Methods("GET")
	}

	base := handler.basePath
	if base != "/" {
		// "/app" -> "/app/"
		r.Handle(base[:len(base)-1], http.RedirectHandler(base, http.StatusMovedPermanently)).Methods("GET")
	}

	// Dashboard routes
	page := r.PathPrefix(base).Subrouter()
	page.HandleFunc("/", handler.Dashboard).Methods("GET")
	page.HandleFunc("/api/dashboard", handler.DashboardJSON).Methods("GET")
	page.PathPrefix("/static/").Handler(
		http.StripPrefix(base+"static/", http.FileServer(http.FS(static))),
	).Methods("GET")

	return r
}
