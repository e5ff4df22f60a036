// It defines the API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vrsandeep/mango-catalog/internal/core"
	"github.com/vrsandeep/mango-catalog/internal/store"
)

// Server holds the dependencies for our API.
type Server struct {
	app         *core.App
	db          *sql.DB
	store       *store.Store
	diagnostics *store.DiagnosticStore
}

// NewServer creates a new Server instance.
func NewServer(app *core.App) *Server {
	return &Server{
		app:         app,
		db:          app.DB(),
		store:       store.New(app.DB()),
		diagnostics: store.NewDiagnosticStore(app.DB()),
	}
}

// Store returns the store instance.
func (s *Server) Store() *store.Store {
	return s.store
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Logs requests to the console
	r.Use(middleware.Recoverer) // Recovers from panics
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", s.handleGetVersion)
		r.Get("/health", s.handleHealth)

		r.Get("/catalog", s.handleGetCatalog)
		r.Get("/catalog/count", s.handleGetCatalogCount)

		r.Get("/diagnostics", s.handleGetDiagnostics)
		r.Get("/diagnostics/count", s.handleGetDiagnosticsCount)
		r.Get("/diagnostics/download", s.handleDownloadDiagnosticsCSV)
		r.Delete("/diagnostics", s.handleDeleteDiagnostic)

		r.Get("/jobs/status", s.handleGetJobsStatus)
		r.Post("/jobs/run", s.handleRunJob)
	})

	// Job progress is pushed to the cataloguing app as it happens.
	r.Get("/ws/progress", func(w http.ResponseWriter, r *http.Request) {
		s.app.WsHub().ServeWs(w, r)
	})

	return r
}
