package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/store"
)

var ErrPlanNotFound = errors.New("plan not found")

// PlanService reads the global plan catalogue. Create and Update are for
// admins and operators only.
type PlanService struct {
	store *store.Store
}

func NewPlanService(st *store.Store) *PlanService {
	return &PlanService{store: st}
}

func (s *PlanService) List(ctx context.Context) ([]models.Plan, error) {
	plans := []models.Plan{}
	err := s.store.DB(ctx).Order("created_at ASC").Find(&plans).Error
	return plans, err
}

func (s *PlanService) Get(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	return findPlan(s.store.DB(ctx), id)
}

func (s *PlanService) Create(ctx context.Context, req *dto.PlanRequest) (*models.Plan, error) {
	if err := validatePlan(req, true); err != nil {
		return nil, err
	}

	var plan models.Plan
	applyPlan(&plan, req)
	if err := s.store.SavePlan(ctx, &plan); err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}
	return &plan, nil
}

func (s *PlanService) Update(ctx context.Context, id uuid.UUID, req *dto.PlanRequest, partial bool) (*models.Plan, error) {
	if err := validatePlan(req, !partial); err != nil {
		return nil, err
	}

	var plan *models.Plan
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		var err error
		plan, err = findPlan(tx.DB(ctx), id)
		if err != nil {
			return err
		}
		if !partial {
			plan.Price = nil
		}
		applyPlan(plan, req)
		return tx.SavePlan(ctx, plan)
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func findPlan(db *gorm.DB, id uuid.UUID) (*models.Plan, error) {
	var plan models.Plan
	err := db.First(&plan, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func validatePlan(req *dto.PlanRequest, full bool) error {
	if err := dto.Validate(req, full); err != nil {
		return err
	}
	if req.Price != nil && strings.HasPrefix(strings.TrimSpace(*req.Price), "-") {
		return &dto.ValidationError{Fields: []string{"price: must not be negative"}}
	}
	return nil
}

func applyPlan(plan *models.Plan, req *dto.PlanRequest) {
	if req.Name != nil {
		plan.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.Price != nil {
		if price, err := models.NormalizePrice(*req.Price); err == nil {
			plan.Price = &price
		}
	}
}
