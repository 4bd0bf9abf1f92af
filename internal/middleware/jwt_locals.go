package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/workit/internal/utils"
)

func claimsFrom(c *fiber.Ctx) (*utils.Claims, bool) {
	claims, ok := c.Locals("claims").(*utils.Claims)
	return claims, ok && claims != nil
}

// AttachJWTLocals exposes the numeric user id as "userId" and the role as
// "role" for handlers.
func AttachJWTLocals() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := claimsFrom(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		uid, err := claims.UID()
		if err != nil || uid <= 0 {
			return fiber.ErrUnauthorized
		}

		c.Locals("userId", uid)
		c.Locals("role", strings.ToLower(strings.TrimSpace(claims.Role)))
		return c.Next()
	}
}

// UserID returns the id attached by AttachJWTLocals, or 0.
func UserID(c *fiber.Ctx) int {
	uid, _ := c.Locals("userId").(int)
	return uid
}
