package store

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/models"
)

type SweepReport struct {
	Apps     int `json:"apps"`
	Scanned  int `json:"scanned"`
	Repaired int `json:"repaired"`
	Failed   int `json:"failed"`
}

// Sweep re-establishes the cached fields for every app. Per app, the most
// recently updated subscription gets a full reconciliation pass, so it ends
// up as the app's current subscription; older subscriptions only have their
// cached owner corrected. Each subscription is repaired in its own
// transaction; failures are counted and logged, not returned.
func (s *Store) Sweep(ctx context.Context, batchSize int) (SweepReport, error) {
	var report SweepReport
	if batchSize <= 0 {
		batchSize = 100
	}

	var apps []models.App
	err := s.db.WithContext(ctx).FindInBatches(&apps, batchSize, func(_ *gorm.DB, _ int) error {
		for i := range apps {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := s.sweepApp(ctx, &apps[i], &report); err != nil {
				return err
			}
		}
		return nil
	}).Error
	if err != nil {
		return report, wrap("sweep", "app", err)
	}
	return report, nil
}

func (s *Store) sweepApp(ctx context.Context, app *models.App, report *SweepReport) error {
	var subs []models.Subscription
	if err := s.db.WithContext(ctx).
		Where("app_id = ?", app.ID).
		Order("updated_at DESC").Order("created_at DESC").
		Find(&subs).Error; err != nil {
		return err
	}
	report.Apps++

	for i := range subs {
		sub := &subs[i]
		report.Scanned++

		repaired := false
		err := s.Transaction(ctx, func(tx *Store) error {
			if i == 0 {
				outcome, err := tx.reconciler.AfterSubscriptionWrite(ctx, tx, sub, false)
				repaired = outcome == OutcomeRepaired
				return err
			}
			if sub.OwnedBy(app.UserID) {
				return nil
			}
			if err := tx.setOwner(ctx, sub, app.UserID); err != nil {
				return err
			}
			repaired = true
			return nil
		})
		if err != nil {
			report.Failed++
			slog.ErrorContext(ctx, "sweep repair failed",
				"action", "reconcile.sweep",
				"subscription_id", sub.ID.String(),
				"app_id", app.ID.String(),
				"error", err.Error(),
			)
			continue
		}
		if repaired {
			report.Repaired++
		}
	}
	return nil
}
