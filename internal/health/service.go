package health

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"prerender/internal/logger"
	"prerender/internal/platform/redis"
)

type Handler struct {
	log       *logger.Logger
	redis     *redis.Service
	startTime time.Time
	isReady   bool
}

func NewHandler(redisSvc *redis.Service) *Handler {
	return &Handler{log: logger.New("Health"), redis: redisSvc, startTime: time.Now()}
}

// SetReady marks the application as ready to receive traffic.
func (h *Handler) SetReady() {
	h.isReady = true
	h.log.LogInfof("ready for traffic after %v", time.Since(h.startTime))
}

type response struct {
	Status        string `json:"status"`
	Ready         bool   `json:"ready"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Redis         string `json:"redis"`
}

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	resp := response{
		Ready:         h.isReady,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Redis:         "ok",
	}

	redisOK := true
	if err := h.redis.HealthCheck(ctx); err != nil {
		redisOK = false
		resp.Redis = err.Error()
	}

	switch {
	case !h.isReady:
		resp.Status = "starting"
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	case !redisOK:
		resp.Status = "error"
		h.log.LogWarnf("health check failed: %s", resp.Redis)
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	default:
		resp.Status = "ok"
		return c.JSON(resp)
	}
}

func Limiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Rate limit exceeded"})
		},
	})
}
