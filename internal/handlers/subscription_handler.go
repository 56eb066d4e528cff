package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/tenant"
)

// SubscriptionHandler has no delete route; subscriptions go away with
// their app.
type SubscriptionHandler struct {
	subscriptionService *services.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

func (h *SubscriptionHandler) List(c *fiber.Ctx) error {
	userID, err := tenant.CallerID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	subs, err := h.subscriptionService.List(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(subs)
}

func (h *SubscriptionHandler) Get(c *fiber.Ctx) error {
	userID, err := tenant.CallerID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "Subscription not found")
	}

	sub, err := h.subscriptionService.Get(c.UserContext(), userID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(sub)
}

func (h *SubscriptionHandler) Create(c *fiber.Ctx) error {
	userID, err := tenant.CallerID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.SubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	sub, err := h.subscriptionService.Create(c.UserContext(), userID, &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

// Update serves both PUT (full replace) and PATCH (partial update).
func (h *SubscriptionHandler) Update(c *fiber.Ctx) error {
	userID, err := tenant.CallerID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "Subscription not found")
	}

	var req dto.SubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	sub, err := h.subscriptionService.Update(c.UserContext(), userID, id, &req, c.Method() == fiber.MethodPatch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(sub)
}
