package controllers

import (
	"github.com/gofiber/fiber/v2"

	"skillcred/backend/catalog"
	"skillcred/backend/middleware"
	"skillcred/backend/models"
	"skillcred/backend/services"
	"skillcred/backend/utils"
)

type TestsController struct {
	Catalog  *catalog.Catalog
	Attempts *services.AttemptService
}

func NewTestsController(cat *catalog.Catalog, attempts *services.AttemptService) *TestsController {
	return &TestsController{Catalog: cat, Attempts: attempts}
}

type SubmitRequest struct {
	Answers models.Answers `json:"answers"`
}

// ListTests handles GET /tests?skillId=
func (tc *TestsController) ListTests(c *fiber.Ctx) error {
	tests, err := tc.Catalog.ListTests(c.UserContext(), c.Query("skillId"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, tests)
}

func (tc *TestsController) GetTest(c *fiber.Ctx) error {
	test, err := tc.Catalog.GetTest(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, test)
}

func (tc *TestsController) StartTest(c *fiber.Ctx) error {
	res, err := tc.Attempts.Start(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Created(c, res)
}

func (tc *TestsController) SubmitTest(c *fiber.Ctx) error {
	var req SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "answers must be an object of question id to answer")
	}
	if req.Answers == nil {
		return utils.BadRequest(c, "answers is required")
	}

	res, err := tc.Attempts.Submit(c.UserContext(), middleware.UserID(c), c.Params("id"), req.Answers)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, res)
}
