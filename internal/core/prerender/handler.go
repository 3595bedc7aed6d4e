package prerender

import (
	"github.com/gofiber/fiber/v2"

	"prerender/internal/core/bot"
	"prerender/internal/core/job"
	"prerender/internal/core/settings"
	"prerender/internal/core/sitemap"
	"prerender/internal/core/snapshot"
	"prerender/internal/logger"
)

type Handler struct {
	service  *Service
	store    *snapshot.Store
	settings *settings.Store
	sitemap  *sitemap.Service
	jobs     *job.Service
	log      *logger.Logger
}

func NewHandler(service *Service, store *snapshot.Store, settingsStore *settings.Store, sitemapSvc *sitemap.Service, jobs *job.Service) *Handler {
	return &Handler{
		service:  service,
		store:    store,
		settings: settingsStore,
		sitemap:  sitemapSvc,
		jobs:     jobs,
		log:      logger.New("PrerenderHandler"),
	}
}

// HandleConfig accepts and stores the configuration snapshot used by the
// scheduled recache.
func (h *Handler) HandleConfig(c *fiber.Ctx) error {
	var body settings.Pair
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if body.SitemapURL == "" || body.MetaAPIBase == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "sitemapUrl and metaApiBase are required"})
	}
	h.settings.Accept(body)
	return c.JSON(fiber.Map{"success": true})
}

// HandleSitemap resolves a URL source into the page list without rendering
// anything.
func (h *Handler) HandleSitemap(c *fiber.Ctx) error {
	var body struct {
		SitemapURL string `json:"sitemapUrl"`
	}
	if err := c.BodyParser(&body); err != nil || body.SitemapURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "sitemapUrl is required"})
	}
	urls, err := h.sitemap.Resolve(c.Context(), body.SitemapURL)
	if err != nil {
		h.log.LogError("sitemap resolve failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch or parse sitemap."})
	}
	if urls == nil {
		urls = []string{}
	}
	return c.JSON(fiber.Map{"urls": urls})
}

// HandlePrerender runs a batch synchronously. Per-URL failures are silent by
// contract; the response only reports how many URLs were attempted.
func (h *Handler) HandlePrerender(c *fiber.Ctx) error {
	var body struct {
		URLs        []string `json:"urls"`
		MetaAPIBase string   `json:"metaApiBase"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "urls (array) and metaApiBase are required"})
	}
	if body.URLs == nil || body.MetaAPIBase == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "urls (array) and metaApiBase are required"})
	}
	count := h.service.RunBatch(c.Context(), body.URLs, body.MetaAPIBase)
	return c.JSON(fiber.Map{"success": true, "cached": count})
}

// HandleServe gates cached snapshots behind the bot classifier. The check
// order is load-bearing: a missing or invalid snapshot is a 404 before the
// admin bypass or the bot gate are consulted, so an admin request can never
// resurrect a failed render.
func (h *Handler) HandleServe(c *fiber.Ctx) error {
	url := c.Query("url")
	if url == "" {
		return c.Status(fiber.StatusNotFound).SendString("Not cached")
	}
	html, ok := h.store.Get(url)
	if !ok || !snapshot.IsValid(html) {
		h.log.LogDebugf("not cached or invalid: %s", url)
		return c.Status(fiber.StatusNotFound).SendString("Not cached")
	}

	if c.Query("admin") == "1" {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(html)
	}
	if !bot.IsBot(c.Get(fiber.HeaderUserAgent)) {
		return c.Status(fiber.StatusForbidden).SendString("This endpoint is for search engine bots only.")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(html)
}

// HandleLastConfig reports the most recently accepted configuration pair;
// both fields are null until a config has been accepted.
func (h *Handler) HandleLastConfig(c *fiber.Ctx) error {
	pair, ok := h.settings.Current()
	if !ok {
		return c.JSON(fiber.Map{"sitemapUrl": nil, "metaApiBase": nil})
	}
	return c.JSON(fiber.Map{"sitemapUrl": pair.SitemapURL, "metaApiBase": pair.MetaAPIBase})
}

// HandleJobStatus reports the status of a queued recache run.
func (h *Handler) HandleJobStatus(c *fiber.Ctx) error {
	j, err := h.jobs.Get(c.Context(), c.Params("jobId"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(j)
}
