package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/services"
)

type PlanHandler struct {
	planService *services.PlanService
}

func NewPlanHandler(planService *services.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

func (h *PlanHandler) List(c *fiber.Ctx) error {
	plans, err := h.planService.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(plans)
}

func (h *PlanHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "Plan not found")
	}

	plan, err := h.planService.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(plan)
}

// Create and Update are mounted under the admin group.
func (h *PlanHandler) Create(c *fiber.Ctx) error {
	var req dto.PlanRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	plan, err := h.planService.Create(c.UserContext(), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

func (h *PlanHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "Plan not found")
	}

	var req dto.PlanRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	plan, err := h.planService.Update(c.UserContext(), id, &req, c.Method() == fiber.MethodPatch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(plan)
}
