package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"prerender/internal/core/job"
	"prerender/internal/core/meta"
	"prerender/internal/core/prerender"
	"prerender/internal/core/settings"
	"prerender/internal/core/sitemap"
	"prerender/internal/core/snapshot"
	"prerender/internal/health"
	"prerender/internal/platform/redis"
)

type Dependencies struct {
	Prerender *prerender.Service
	Store     *snapshot.Store
	Settings  *settings.Store
	Sitemap   *sitemap.Service
	Jobs      *job.Service
	Meta      *meta.FixtureService
	Redis     *redis.Service
}

// RegisterRoutes wires the boundary contract. Paths are part of the existing
// external interface and must not change.
func RegisterRoutes(app *fiber.App, d Dependencies) *health.Handler {
	app.Use(cors.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("SSR Prerender Service is running!")
	})

	healthHandler := health.NewHandler(d.Redis)
	app.Get("/healthz", health.Limiter(), healthHandler.HandleHealth)

	h := prerender.NewHandler(d.Prerender, d.Store, d.Settings, d.Sitemap, d.Jobs)
	api := app.Group("/api")
	api.Post("/config", h.HandleConfig)
	api.Post("/sitemap", h.HandleSitemap)
	api.Post("/prerender", h.HandlePrerender)
	api.Get("/last-config", h.HandleLastConfig)
	api.Get("/jobs/:jobId", h.HandleJobStatus)

	metaHandler := meta.NewHandler(d.Meta)
	api.Get("/meta", metaHandler.HandleGet)

	app.Get("/prerender", h.HandleServe)

	return healthHandler
}
