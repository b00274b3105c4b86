package middleware

import (
	"github.com/gofiber/fiber/v2"
)

const (
	corsAllowOrigin  = "*"
	corsAllowHeaders = "authorization, x-client-info, apikey, content-type"
	corsAllowMethods = "GET, POST, OPTIONS"
)

// NewCORSMiddleware stamps permissive CORS headers on every response and answers
// every OPTIONS request with an empty 200.
func (m *middleware) NewCORSMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAccessControlAllowOrigin, corsAllowOrigin)
		c.Set(fiber.HeaderAccessControlAllowHeaders, corsAllowHeaders)
		c.Set(fiber.HeaderAccessControlAllowMethods, corsAllowMethods)

		if c.Method() == fiber.MethodOptions {
			c.Status(fiber.StatusOK)
			return c.Send(nil)
		}

		return c.Next()
	}
}
