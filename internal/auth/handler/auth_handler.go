package handler

import (
	"errors"

	"github.com/artfolio/auth-service/internal/auth/domain"
	"github.com/artfolio/auth-service/internal/auth/dto"
	"github.com/artfolio/auth-service/internal/auth/service"
	autherror "github.com/artfolio/auth-service/internal/errors"
	"github.com/artfolio/auth-service/pkg/constant"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	userService *service.UserService
}

func NewAuthHandler(userService *service.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input dto.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid input",
		})
	}

	resp, err := h.userService.Register(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid input",
		})
	}

	resp, err := h.userService.Login(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input dto.RefreshInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	resp, err := h.userService.Refresh(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	caller := currentUser(c)
	if caller == nil {
		return respondError(c, autherror.ErrUnauthenticated)
	}

	// Body is optional: logout without a refresh token only drops the
	// access session on the client side.
	var input dto.LogoutInput
	_ = c.BodyParser(&input)

	if err := h.userService.Logout(c.Context(), caller.ID, input.RefreshToken); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "logged out successfully"})
}

func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	caller := currentUser(c)
	if caller == nil {
		return respondError(c, autherror.ErrUnauthenticated)
	}

	if err := h.userService.LogoutAll(c.Context(), caller.ID); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "logged out from all devices successfully"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	caller := currentUser(c)
	if caller == nil {
		return respondError(c, autherror.ErrUnauthenticated)
	}

	out, err := h.userService.Profile(c.Context(), caller.ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"user": out})
}

func (h *AuthHandler) ForceLogout(c *fiber.Ctx) error {
	userID := c.Params("id")

	if err := h.userService.ForceLogout(c.Context(), userID); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "sessions revoked"})
}

func (h *AuthHandler) SetUserActive(c *fiber.Ctx) error {
	var input dto.SetActiveInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	if err := h.userService.SetUserActive(c.Context(), c.Params("id"), input.Active); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "user updated"})
}

// respondError translates the internal error taxonomy into the HTTP
// contract. Anything unrecognized (including store outages) is a
// generic 500.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, autherror.ErrValidation),
		errors.Is(err, autherror.ErrEmailAlreadyInUse):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, autherror.ErrRegistrationDisabled):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, autherror.ErrInvalidCredentials),
		errors.Is(err, autherror.ErrRefreshTokenRequired),
		errors.Is(err, autherror.ErrTokenExpired),
		errors.Is(err, autherror.ErrTokenMalformed),
		errors.Is(err, autherror.ErrInvalidRefreshToken),
		errors.Is(err, autherror.ErrUnauthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "server error"})
	}
}

func currentUser(c *fiber.Ctx) *domain.User {
	user, _ := c.Locals(constant.LocalsUserKey).(*domain.User)
	return user
}
