package handler

import (
	"strings"

	"github.com/artfolio/auth-service/pkg/constant"
	"github.com/gofiber/fiber/v2"
)

// RequireAuth resolves the caller from a Bearer access token and
// stashes the loaded user in locals. Every failure is the same 401.
func (h *AuthHandler) RequireAuth(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return unauthenticated(c)
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return unauthenticated(c)
	}

	user, err := h.userService.ResolveAccessToken(c.Context(), parts[1])
	if err != nil {
		return unauthenticated(c)
	}

	c.Locals(constant.LocalsUserKey, user)
	return c.Next()
}

// RequireAdmin must run after RequireAuth.
func (h *AuthHandler) RequireAdmin(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return unauthenticated(c)
	}
	if !user.IsAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin access required"})
	}
	return c.Next()
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthenticated"})
}
