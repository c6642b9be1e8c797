package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillcred/backend/config"
	"skillcred/backend/database"
	"skillcred/backend/utils"
)

func whoAmI(c *fiber.Ctx) error {
	ctxID, _ := database.UserIDFromContext(c.UserContext())
	return c.JSON(fiber.Map{"local": UserID(c), "ctx": ctxID})
}

func newAuthApp(cfg *config.Config) *fiber.App {
	app := fiber.New()
	app.Get("/me", AuthMiddleware(cfg), whoAmI)
	return app
}

func decode(t *testing.T, body io.Reader) map[string]interface{} {
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestAuthMiddlewareHeaderIdentity(t *testing.T) {
	app := newAuthApp(&config.Config{JWTSecret: "s"})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set(HeaderUserID, "user-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode(t, resp.Body)
	assert.Equal(t, "user-1", body["local"])
	assert.Equal(t, "user-1", body["ctx"])
}

func TestAuthMiddlewareBearerToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: "s"}
	app := newAuthApp(cfg)
	token, err := utils.GenerateJWTToken("user-2", cfg)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "user-2", decode(t, resp.Body)["ctx"])
}

func TestAuthMiddlewareRejectsMissingOrBadIdentity(t *testing.T) {
	app := newAuthApp(&config.Config{JWTSecret: "s"})

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	body := decode(t, resp.Body)
	assert.Equal(t, false, body["success"])

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAttemptLimiterPerUser(t *testing.T) {
	app := fiber.New()
	app.Post("/start", AuthMiddleware(&config.Config{}), AttemptLimiter(2, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	call := func(user string) int {
		req := httptest.NewRequest("POST", "/start", nil)
		req.Header.Set(HeaderUserID, user)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusCreated, call("user-1"))
	assert.Equal(t, fiber.StatusCreated, call("user-1"))
	assert.Equal(t, fiber.StatusTooManyRequests, call("user-1"))
	assert.Equal(t, fiber.StatusCreated, call("user-2"))
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(LoggingMiddleware(log.New(&buf, "", 0), false))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, buf.String(), "GET /ping 200")
	assert.Contains(t, buf.String(), "user=-")
}
