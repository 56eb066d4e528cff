package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/store"
)

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

// writeError maps service and store errors onto HTTP responses.
func writeError(c *fiber.Ctx, err error) error {
	var verr *dto.ValidationError
	switch {
	case errors.As(err, &verr):
		return errorJSON(c, fiber.StatusBadRequest, verr.Error())
	case errors.Is(err, services.ErrAppNotFound),
		errors.Is(err, services.ErrSubscriptionNotFound),
		errors.Is(err, services.ErrPlanNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, store.ErrNotFound):
		return errorJSON(c, fiber.StatusNotFound, notFoundMessage(err))
	case errors.Is(err, services.ErrEmailTaken):
		return errorJSON(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidToken):
		return errorJSON(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, store.ErrReferentialIntegrity):
		return errorJSON(c, fiber.StatusUnprocessableEntity, "Referenced record does not exist")
	case errors.Is(err, store.ErrConstraint):
		return errorJSON(c, fiber.StatusConflict, "Request conflicts with existing data")
	}

	slog.ErrorContext(c.UserContext(), "request failed",
		"method", c.Method(),
		"path", c.Path(),
		"request_id", requestID(c),
		"error", err.Error(),
	)
	return errorJSON(c, fiber.StatusInternalServerError, "Internal server error")
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrAppNotFound):
		return "App not found"
	case errors.Is(err, services.ErrSubscriptionNotFound):
		return "Subscription not found"
	case errors.Is(err, services.ErrPlanNotFound):
		return "Plan not found"
	case errors.Is(err, services.ErrUserNotFound):
		return "User not found"
	default:
		return "Not found"
	}
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}
