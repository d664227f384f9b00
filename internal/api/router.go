package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/api/handlers"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/api/response"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/version"
)

// setupRoutes configures all routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	h := handlers.NewDashboardHandler(s.facade)

	// Dashboard page and the charts it embeds
	s.router.Get("/", h.Index)
	s.router.With(s.rateLimit).Get("/charts/{name}", h.RenderChart)

	// API v1 routes
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/classes", h.GetClasses)
		r.Get("/cards", h.GetCards)
		r.Get("/summary", h.GetSummary)
		r.Get("/class-frequency", h.GetClassFrequency)
		r.Get("/cost-distribution", h.GetCostDistribution)
		r.Get("/decks-per-day", h.GetDecksPerDay)
		r.Get("/rarity-structure", h.GetRarityStructure)
		r.Get("/card-popularity", h.GetCardPopularity)
		r.Get("/mechanic-profile", h.GetMechanicProfile)
		r.With(s.rateLimit).Get("/export/{name}", h.ExportChartData)
		r.Get("/metrics", s.getMetrics)
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "deck-dashboard",
		"version": version.String(),
	})
}

// getMetrics returns request counts and latencies per route.
func (s *Server) getMetrics(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, s.metrics.Snapshot())
}
