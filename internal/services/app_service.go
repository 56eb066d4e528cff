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
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/tenant"
)

var ErrAppNotFound = errors.New("app not found")

// AppService manages the caller's apps. Apps owned by anyone else are
// reported as not found.
type AppService struct {
	store *store.Store
}

func NewAppService(st *store.Store) *AppService {
	return &AppService{store: st}
}

func (s *AppService) List(ctx context.Context, owner uuid.UUID) ([]models.App, error) {
	apps := []models.App{}
	err := s.store.DB(ctx).Scopes(tenant.ForOwner(owner)).
		Order("created_at ASC").
		Find(&apps).Error
	return apps, err
}

func (s *AppService) Get(ctx context.Context, owner, id uuid.UUID) (*models.App, error) {
	return findOwnedApp(s.store.DB(ctx), owner, id)
}

func (s *AppService) Create(ctx context.Context, owner uuid.UUID, req *dto.AppRequest) (*models.App, error) {
	if err := dto.Validate(req, true); err != nil {
		return nil, err
	}

	app := models.App{UserID: owner}
	applyApp(&app, req)
	if err := s.store.SaveApp(ctx, &app); err != nil {
		return nil, fmt.Errorf("failed to create app: %w", err)
	}
	return &app, nil
}

// Update replaces the app's fields (PUT) or only the supplied ones (PATCH).
// Owner and cached subscription are never taken from the request.
func (s *AppService) Update(ctx context.Context, owner, id uuid.UUID, req *dto.AppRequest, partial bool) (*models.App, error) {
	if err := dto.Validate(req, !partial); err != nil {
		return nil, err
	}

	var app *models.App
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		var err error
		app, err = findOwnedApp(tx.DB(ctx), owner, id)
		if err != nil {
			return err
		}
		if !partial {
			resetApp(app)
		}
		applyApp(app, req)
		return tx.SaveApp(ctx, app)
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (s *AppService) Delete(ctx context.Context, owner, id uuid.UUID) error {
	return s.store.Transaction(ctx, func(tx *store.Store) error {
		app, err := findOwnedApp(tx.DB(ctx), owner, id)
		if err != nil {
			return err
		}
		return tx.DeleteApp(ctx, app)
	})
}

func findOwnedApp(db *gorm.DB, owner, id uuid.UUID) (*models.App, error) {
	var app models.App
	err := db.Scopes(tenant.ForOwner(owner)).First(&app, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAppNotFound
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// resetApp clears the optional fields before a full replace.
func resetApp(app *models.App) {
	app.Description = ""
	app.DomainName = ""
	app.Screenshot = ""
}

func applyApp(app *models.App, req *dto.AppRequest) {
	if req.Name != nil {
		app.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		app.Description = *req.Description
	}
	if req.Type != nil {
		app.Type = *req.Type
	}
	if req.Framework != nil {
		app.Framework = *req.Framework
	}
	if req.DomainName != nil {
		app.DomainName = strings.TrimSpace(*req.DomainName)
	}
	if req.Screenshot != nil {
		app.Screenshot = strings.TrimSpace(*req.Screenshot)
	}
}
