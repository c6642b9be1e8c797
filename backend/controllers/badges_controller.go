package controllers

import (
	"github.com/gofiber/fiber/v2"

	"skillcred/backend/middleware"
	"skillcred/backend/services"
	"skillcred/backend/utils"
)

type BadgesController struct {
	Badges *services.BadgeService
}

func NewBadgesController(badges *services.BadgeService) *BadgesController {
	return &BadgesController{Badges: badges}
}

func (bc *BadgesController) ListBadges(c *fiber.Ctx) error {
	badges, err := bc.Badges.ListBadges(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, badges)
}
