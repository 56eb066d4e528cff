package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/tenant"
)

type AppHandler struct {
	appService *services.AppService
}

func NewAppHandler(appService *services.AppService) *AppHandler {
	return &AppHandler{appService: appService}
}

func (h *AppHandler) List(c *fiber.Ctx) error {
	userID, err := tenant.CallerID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	apps, err := h.appService.List(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(apps)
}

func (h *AppHandler) Get(c *fiber.Ctx) error {
	userID, err := tenant.CallerID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "App not found")
	}

	app, err := h.appService.Get(c.UserContext(), userID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(app)
}

func (h *AppHandler) Create(c *fiber.Ctx) error {
	userID, err := tenant.CallerID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.AppRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	app, err := h.appService.Create(c.UserContext(), userID, &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(app)
}

// Update serves both PUT (full replace) and PATCH (partial update).
func (h *AppHandler) Update(c *fiber.Ctx) error {
	userID, err := tenant.CallerID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "App not found")
	}

	var req dto.AppRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	app, err := h.appService.Update(c.UserContext(), userID, id, &req, c.Method() == fiber.MethodPatch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(app)
}

func (h *AppHandler) Delete(c *fiber.Ctx) error {
	userID, err := tenant.CallerID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "App not found")
	}

	if err := h.appService.Delete(c.UserContext(), userID, id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
