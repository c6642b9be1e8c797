package controllers

import (
	"github.com/gofiber/fiber/v2"

	"skillcred/backend/middleware"
	"skillcred/backend/services"
	"skillcred/backend/utils"
)

type AttemptsController struct {
	Attempts *services.AttemptService
}

func NewAttemptsController(attempts *services.AttemptService) *AttemptsController {
	return &AttemptsController{Attempts: attempts}
}

func (ac *AttemptsController) ListAttempts(c *fiber.Ctx) error {
	attempts, err := ac.Attempts.ListAttempts(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, attempts)
}

func (ac *AttemptsController) GetAttempt(c *fiber.Ctx) error {
	attempt, err := ac.Attempts.GetAttempt(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, attempt)
}
