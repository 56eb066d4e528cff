package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/store"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/tenant"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

// SubscriptionService exposes the caller's subscriptions. Visibility follows
// the cached owner, which the store keeps equal to the app's owner.
type SubscriptionService struct {
	store *store.Store
}

func NewSubscriptionService(st *store.Store) *SubscriptionService {
	return &SubscriptionService{store: st}
}

func (s *SubscriptionService) List(ctx context.Context, owner uuid.UUID) ([]models.Subscription, error) {
	subs := []models.Subscription{}
	err := s.store.DB(ctx).Scopes(tenant.ForOwner(owner)).
		Order("created_at ASC").
		Find(&subs).Error
	return subs, err
}

func (s *SubscriptionService) Get(ctx context.Context, owner, id uuid.UUID) (*models.Subscription, error) {
	return findOwnedSubscription(s.store.DB(ctx), owner, id)
}

// Create attaches a plan to one of the caller's apps. The app's current
// subscription pointer moves to the new subscription.
func (s *SubscriptionService) Create(ctx context.Context, owner uuid.UUID, req *dto.SubscriptionRequest) (*models.Subscription, error) {
	if err := dto.Validate(req, true); err != nil {
		return nil, err
	}

	sub := models.Subscription{}
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if err := s.apply(ctx, tx, owner, &sub, req); err != nil {
			return err
		}
		return tx.SaveSubscription(ctx, &sub)
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Update rewrites a subscription the caller can see. A full update (PUT)
// needs every field; a partial one (PATCH) leaves absent fields alone.
func (s *SubscriptionService) Update(ctx context.Context, owner, id uuid.UUID, req *dto.SubscriptionRequest, partial bool) (*models.Subscription, error) {
	if err := dto.Validate(req, !partial); err != nil {
		return nil, err
	}

	var sub *models.Subscription
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		var err error
		sub, err = findOwnedSubscription(tx.DB(ctx), owner, id)
		if err != nil {
			return err
		}
		if err := s.apply(ctx, tx, owner, sub, req); err != nil {
			return err
		}
		return tx.SaveSubscription(ctx, sub)
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// apply copies req onto sub after checking the referenced app belongs to
// owner and the referenced plan exists.
func (s *SubscriptionService) apply(ctx context.Context, tx *store.Store, owner uuid.UUID, sub *models.Subscription, req *dto.SubscriptionRequest) error {
	db := tx.DB(ctx)
	if req.App != nil {
		app, err := findOwnedApp(db, owner, *req.App)
		if err != nil {
			return err
		}
		sub.AppID = app.ID
	}
	if req.Plan != nil {
		plan, err := findPlan(db, *req.Plan)
		if err != nil {
			return err
		}
		sub.PlanID = plan.ID
	}
	if req.Active != nil {
		sub.Active = *req.Active
	}
	return nil
}

func findOwnedSubscription(db *gorm.DB, owner, id uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	err := db.Scopes(tenant.ForOwner(owner)).First(&sub, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
