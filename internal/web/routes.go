package web

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/facegate/internal/web/handlers"
	"github.com/kozaktomas/facegate/internal/web/static"
)

func (s *Server) setupRoutes() {
	// Create handlers
	facesHandler := handlers.NewFacesHandler(s.service)
	recognizeHandler := handlers.NewRecognizeHandler(s.service)
	statsHandler := handlers.NewStatsHandler(s.service)
	healthHandler := handlers.NewHealthHandler(s.health)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.Get)

		// Faces
		r.Post("/faces/enroll", facesHandler.Enroll)
		r.Get("/faces", facesHandler.List)
		r.Get("/faces/{id}", facesHandler.Get)
		r.Delete("/faces/{id}", facesHandler.Delete)

		// Recognition
		r.Post("/faces/recognize", recognizeHandler.Recognize)
		r.Post("/faces/recognize/live", recognizeHandler.RecognizeLive)

		// Stats & logs
		r.Get("/stats", statsHandler.Get)
		r.Get("/logs", statsHandler.Logs)
	})

	// Serve the embedded dashboard
	s.router.Get("/*", s.serveDashboard)
}

// serveDashboard serves the embedded single-page dashboard
func (s *Server) serveDashboard(w http.ResponseWriter, r *http.Request) {
	fs := static.FS()
	path := r.URL.Path
	if path == "/" {
		path = "/index.html"
	}

	f, err := fs.Open(path)
	if err != nil {
		// Unknown paths fall back to the dashboard page
		f, err = fs.Open("/index.html")
		if err != nil {
			http.NotFound(w, r)
			return
		}
		path = "/index.html"
	}
	defer f.Close()

	contentType := "application/octet-stream"
	switch {
	case strings.HasSuffix(path, ".html"):
		contentType = "text/html; charset=utf-8"
	case strings.HasSuffix(path, ".css"):
		contentType = "text/css; charset=utf-8"
	case strings.HasSuffix(path, ".js"):
		contentType = "application/javascript; charset=utf-8"
	case strings.HasSuffix(path, ".svg"):
		contentType = "image/svg+xml"
	case strings.HasSuffix(path, ".ico"):
		contentType = "image/x-icon"
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, f)
}
