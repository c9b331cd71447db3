package handler

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App, h *AuthHandler, enableRegistration bool) {
	v1 := app.Group("/api/v1")

	if enableRegistration {
		v1.Post("/register", h.Register)
	}
	v1.Post("/login", h.Login)
	v1.Post("/refresh", h.Refresh)

	v1.Post("/logout", h.RequireAuth, h.Logout)
	v1.Post("/logout-all", h.RequireAuth, h.LogoutAll)
	v1.Get("/me", h.RequireAuth, h.Me)

	// Admin-only endpoints
	admin := v1.Group("/admin", h.RequireAuth, h.RequireAdmin)
	admin.Delete("/users/:id/sessions", h.ForceLogout)
	admin.Patch("/users/:id/active", h.SetUserActive)
}
