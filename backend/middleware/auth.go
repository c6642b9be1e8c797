package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"skillcred/backend/config"
	"skillcred/backend/database"
	"skillcred/backend/utils"
)

// HeaderUserID carries the caller identity asserted by the upstream gateway.
const HeaderUserID = "X-User-Id"

const userIDLocal = "userID"

// AuthMiddleware resolves the caller identity from X-User-Id or, failing
// that, a bearer JWT. Requests without one stop here with 401. The identity
// is stored in Locals and bound to the request's user context.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get(HeaderUserID))
		if userID == "" {
			token := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
			token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
			if token == "" {
				return utils.Unauthorized(c, "missing caller identity")
			}
			id, err := utils.ParseUserID(token, cfg)
			if err != nil {
				return utils.Unauthorized(c, "invalid token")
			}
			userID = id
		}

		c.Locals(userIDLocal, userID)
		c.SetUserContext(database.WithUserID(c.UserContext(), userID))
		return c.Next()
	}
}

// UserID returns the identity AuthMiddleware resolved, or "".
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDLocal).(string)
	return id
}
