package controllers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"skillcred/backend/database"
)

const healthTimeout = 2 * time.Second

type HealthController struct {
	Gateway *database.Gateway
	Logger  *log.Logger
}

func NewHealthController(gw *database.Gateway, logger *log.Logger) *HealthController {
	return &HealthController{Gateway: gw, Logger: logger}
}

// Health reports 503 when the store does not answer a ping. The driver
// error goes to the log only; it can name hosts and users.
func (hc *HealthController) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	if err := hc.Gateway.Ping(ctx); err != nil {
		hc.Logger.Printf("health check: database ping failed: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "unhealthy",
			"database": "down",
		})
	}
	return c.JSON(fiber.Map{
		"status":   "healthy",
		"database": "up",
		"time":     time.Now().UTC(),
	})
}
