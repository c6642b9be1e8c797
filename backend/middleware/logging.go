package middleware

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"skillcred/backend/utils"
)

func LoggingMiddleware(logger *log.Logger, colors bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		cause := err
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		if cause == nil {
			cause, _ = c.Locals(utils.CauseLocal).(error)
		}

		var statusColor, reset string
		if colors {
			statusColor, reset = getStatusColor(status), "\033[0m"
		}

		user := UserID(c)
		if user == "" {
			user = "-"
		}
		line := fmt.Sprintf("%s %s %s %s%d%s %v user=%s",
			c.IP(), c.Method(), c.Path(), statusColor, status, reset, time.Since(start), user)
		if cause != nil {
			line += fmt.Sprintf(" err=%v", cause)
		}
		logger.Println(line)
		return err
	}
}

func getStatusColor(status int) string {
	switch {
	case status >= 500:
		return "\033[31m"
	case status >= 400:
		return "\033[33m"
	case status >= 300:
		return "\033[36m"
	default:
		return "\033[32m"
	}
}
