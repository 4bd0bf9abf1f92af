package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// RoleLookup returns the stored role of a user, or "" when the user no
// longer exists.
type RoleLookup func(ctx context.Context, userID int) (string, error)

// RequireRoles admits requests whose user holds one of the allowed roles.
// With a lookup the role is read from storage, so a role changed after login
// takes effect at once; without one the token claim is trusted.
func RequireRoles(lookup RoleLookup, allowed ...string) fiber.Handler {
	allowedSet := map[string]bool{}
	for _, r := range allowed {
		allowedSet[strings.ToLower(r)] = true
	}

	return func(c *fiber.Ctx) error {
		claims, ok := claimsFrom(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		role := claims.Role
		if lookup != nil {
			uid := UserID(c)
			if uid <= 0 {
				return fiber.ErrUnauthorized
			}
			stored, err := lookup(c.UserContext(), uid)
			if err != nil {
				return err
			}
			if stored == "" {
				return fiber.ErrUnauthorized
			}
			role = stored
		}

		if !allowedSet[strings.ToLower(strings.TrimSpace(role))] {
			return fiber.NewError(fiber.StatusForbidden, "forbidden: insufficient role")
		}

		return c.Next()
	}
}
