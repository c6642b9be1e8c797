package routes

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"skillcred/backend/catalog"
	"skillcred/backend/config"
	"skillcred/backend/controllers"
	"skillcred/backend/database"
	"skillcred/backend/metrics"
	"skillcred/backend/middleware"
	"skillcred/backend/services"
	"skillcred/backend/utils"
)

// Services are the components the HTTP surface delegates to.
type Services struct {
	Gateway  *database.Gateway
	Catalog  *catalog.Catalog
	Attempts *services.AttemptService
	Badges   *services.BadgeService
}

// NewApp builds the Fiber app with the middleware stack and every route.
func NewApp(cfg *config.Config, logger *log.Logger, svc *Services) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "skillcred",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + middleware.HeaderUserID,
	}))
	app.Use(middleware.LoggingMiddleware(logger, cfg.LogFormat != "json"))
	app.Use(metrics.Middleware())

	SetupRoutes(app, cfg, logger, svc)
	return app
}

func SetupRoutes(app *fiber.App, cfg *config.Config, logger *log.Logger, svc *Services) {
	healthController := controllers.NewHealthController(svc.Gateway, logger)
	app.Get("/health", healthController.Health)
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api", middleware.AuthMiddleware(cfg))
	limit := middleware.AttemptLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)

	// Tests routes
	testsController := controllers.NewTestsController(svc.Catalog, svc.Attempts)
	tests := api.Group("/tests")
	tests.Get("/", testsController.ListTests)
	tests.Get("/:id", testsController.GetTest)
	tests.Post("/:id/start", limit, testsController.StartTest)
	tests.Post("/:id/submit", limit, testsController.SubmitTest)

	// Attempts routes
	attemptsController := controllers.NewAttemptsController(svc.Attempts)
	api.Get("/attempts", attemptsController.ListAttempts)
	api.Get("/attempts/:id", attemptsController.GetAttempt)

	// Badges routes
	badgesController := controllers.NewBadgesController(svc.Badges)
	api.Get("/badges", badgesController.ListBadges)
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return utils.Error(c, code, err)
}
