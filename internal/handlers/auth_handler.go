package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/tenant"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.authService.Signup(c.UserContext(), &req)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := dto.Validate(&req, true); err != nil {
		return writeError(c, err)
	}

	resp, err := h.authService.Refresh(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return errorJSON(c, fiber.StatusUnauthorized, services.ErrInvalidToken.Error())
		}
		return writeError(c, err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := dto.Validate(&req, true); err != nil {
		return writeError(c, err)
	}

	if err := h.authService.Logout(c.UserContext(), &req); err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to logout")
	}

	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	userID, err := tenant.CallerID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.DeleteAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := dto.Validate(&req, true); err != nil {
		return writeError(c, err)
	}

	if err := h.authService.DeleteAccount(c.UserContext(), userID, req.Password); err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return errorJSON(c, fiber.StatusUnauthorized, "Incorrect password. Please try again.")
		}
		return writeError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
