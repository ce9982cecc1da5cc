package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/photo-faces/internal/web/handlers"
)

func (s *Server) setupRoutes(deps Deps) {
	uploadHandler := handlers.NewUploadHandler(deps.Processor)
	identitiesHandler := handlers.NewIdentitiesHandler(deps.Store, deps.Artifacts)
	similarHandler := handlers.NewSimilarHandler(deps.Store, deps.Index)
	processHandler := handlers.NewProcessHandler(deps.Processor, s.jobManager, s.config.Library.Dir)

	s.router.Get("/api/health", handlers.HealthCheck)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/upload", uploadHandler.Upload)

		r.Get("/identities", identitiesHandler.List)
		r.Get("/identities/{id}/similar", similarHandler.Similar)
		r.Get("/identities/{id}/thumbnail", identitiesHandler.Thumbnail)
		r.Post("/identities/{id}/rename", identitiesHandler.Rename)

		r.Post("/process", processHandler.Start)
		r.Get("/jobs/{jobId}", processHandler.Status)
		r.Get("/jobs/{jobId}/events", processHandler.Events)
		r.Delete("/jobs/{jobId}", processHandler.Cancel)
	})
}
