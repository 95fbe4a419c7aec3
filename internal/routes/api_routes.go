package routes

import (
	"github.com/go-chi/chi/v5"

	"marathon-readiness/toolkit/internal/api"
	"marathon-readiness/toolkit/internal/middleware"
)

// RegisterAPIRoutes registers all API v1 routes and handlers. Calculators
// are public; everything touching per-user state requires auth.
func RegisterAPIRoutes(r chi.Router, deps *api.Dependencies) {

	trendSvc := deps.Services.Trendline

	r.Route("/api/v1", func(v1 chi.Router) {

		// Public calculators
		v1.Post("/estimator/race-time", api.RaceTimeHandler())
		v1.Post("/converter/pace", api.PaceConvertHandler())
		v1.Post("/timeline/check", api.TimelineCheckHandler())

		// Per-user trendline state
		v1.Group(func(authed chi.Router) {
			authed.Use(middleware.RateLimitMiddleware)
			authed.Use(middleware.AuthMiddleware(deps.Services.Tokens, deps.Repo.Keys))

			authed.Get("/trendline", api.GetStateHandler(trendSvc))
			authed.Post("/trendline", api.SaveStateHandler(trendSvc))
			authed.Delete("/trendline", api.WipeHandler(trendSvc))

			authed.Post("/trendline/config", api.SetConfigHandler(trendSvc))
			authed.Post("/trendline/checkins", api.AddCheckInHandler(trendSvc))
			authed.Delete("/trendline/checkins/{id}", api.DeleteCheckInHandler(trendSvc))

			authed.Get("/trendline/projections", api.ProjectionsHandler(trendSvc))
			authed.Get("/trendline/chart", api.ChartDataHandler(trendSvc))
		})
	})

	// Server-rendered chart page, outside the API prefix
	r.Group(func(ui chi.Router) {
		ui.Use(middleware.AuthMiddleware(deps.Services.Tokens, deps.Repo.Keys))
		ui.Get("/trendline/chart.html", api.ChartHTMLHandler(trendSvc))
	})
}
