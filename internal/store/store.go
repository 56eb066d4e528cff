// Package store is the entity store: every write to users, plans, apps and
// subscriptions goes through it. Subscription writes are followed by a
// reconciliation pass that keeps the cached owner and the app's current
// subscription pointer in sync.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/models"
)

type Store struct {
	db         *gorm.DB
	reconciler *Reconciler
	inTx       bool
}

type Option func(*Store)

func WithReconciler(r *Reconciler) Option {
	return func(s *Store) {
		s.reconciler = r
	}
}

func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}
	if s.reconciler == nil {
		s.reconciler = NewReconciler(nil)
	}
	return s
}

// DB returns the handle for read queries. Inside Transaction it is the
// transaction's handle.
func (s *Store) DB(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Transaction runs fn against a store bound to a single database
// transaction. Calls made on a store that is already transactional reuse it.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		return fn(&Store{db: gtx, reconciler: s.reconciler, inTx: true})
	})
}

type saveOptions struct {
	skipReconciliation bool
}

// SaveOption tunes a single save call.
type SaveOption func(*saveOptions)

// SkipReconciliation suppresses the post-write reconciliation pass for the
// call it is passed to, and only that call.
func SkipReconciliation() SaveOption {
	return func(o *saveOptions) {
		o.skipReconciliation = true
	}
}

// SaveSubscription inserts sub when it has no id and updates it otherwise,
// then reconciles the cached fields on both sides. The write and the repair
// commit or roll back together.
func (s *Store) SaveSubscription(ctx context.Context, sub *models.Subscription, opts ...SaveOption) error {
	var o saveOptions
	for _, opt := range opts {
		opt(&o)
	}

	created := sub.ID == uuid.Nil
	err := s.Transaction(ctx, func(tx *Store) error {
		if err := tx.save(ctx, "subscription", sub, created); err != nil {
			return err
		}
		if o.skipReconciliation {
			return nil
		}
		_, err := tx.reconciler.AfterSubscriptionWrite(ctx, tx, sub, created)
		return err
	})
	if err != nil && created && !s.inTx {
		// the insert was rolled back; let a retry insert again
		sub.ID = uuid.Nil
	}
	return err
}

// SaveApp writes the app's own fields. The current subscription pointer is
// left alone on update; only PointApp moves it.
func (s *Store) SaveApp(ctx context.Context, app *models.App) error {
	if app.ID == uuid.Nil {
		return s.save(ctx, "app", app, true)
	}
	err := s.db.WithContext(ctx).Omit(clause.Associations, "subscription_id").Save(app).Error
	return wrap("update", "app", err)
}

// PointApp sets the app's current subscription with a single-column update,
// so concurrent edits to the app's other fields are not overwritten.
func (s *Store) PointApp(ctx context.Context, app *models.App, subscriptionID uuid.UUID) error {
	err := s.db.WithContext(ctx).Model(&models.App{}).
		Where("id = ?", app.ID).
		UpdateColumn("subscription_id", subscriptionID).Error
	if err != nil {
		return wrap("update", "app", err)
	}
	app.SubscriptionID = &subscriptionID
	return nil
}

// setOwner rewrites only the cached owner. updated_at is left untouched so
// the sweep's newest-first ordering stays stable.
func (s *Store) setOwner(ctx context.Context, sub *models.Subscription, owner uuid.UUID) error {
	err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ?", sub.ID).
		UpdateColumn("user_id", owner).Error
	if err != nil {
		return wrap("update", "subscription", err)
	}
	sub.UserID = &owner
	return nil
}

func (s *Store) SavePlan(ctx context.Context, plan *models.Plan) error {
	return s.save(ctx, "plan", plan, plan.ID == uuid.Nil)
}

func (s *Store) SaveUser(ctx context.Context, user *models.User) error {
	return s.save(ctx, "user", user, user.ID == uuid.Nil)
}

func (s *Store) save(ctx context.Context, entity string, value interface{}, created bool) error {
	q := s.db.WithContext(ctx).Omit(clause.Associations)
	if created {
		return wrap("insert", entity, q.Create(value).Error)
	}
	return wrap("update", entity, q.Save(value).Error)
}

// ResolveApp loads the app sub points at and attaches it to sub.App. A
// missing app is a referential integrity violation.
func (s *Store) ResolveApp(ctx context.Context, sub *models.Subscription) (*models.App, error) {
	if sub.AppID == uuid.Nil {
		return nil, &StorageError{Op: "resolve", Entity: "app", Err: fmt.Errorf("subscription %s has no app: %w", sub.ID, ErrReferentialIntegrity)}
	}

	var app models.App
	err := s.db.WithContext(ctx).First(&app, "id = ?", sub.AppID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &StorageError{Op: "resolve", Entity: "app", Err: fmt.Errorf("app %s: %w", sub.AppID, ErrReferentialIntegrity)}
	}
	if err != nil {
		return nil, wrap("resolve", "app", err)
	}

	sub.App = &app
	return &app, nil
}

// ResolveOwner loads the user that owns app.
func (s *Store) ResolveOwner(ctx context.Context, app *models.App) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", app.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &StorageError{Op: "resolve", Entity: "user", Err: fmt.Errorf("user %s: %w", app.UserID, ErrReferentialIntegrity)}
	}
	if err != nil {
		return nil, wrap("resolve", "user", err)
	}
	app.User = &user
	return &user, nil
}

// DeleteApp removes app and its subscriptions. Pointers from any app to
// those subscriptions are cleared first so no app is left referencing a
// deleted row.
func (s *Store) DeleteApp(ctx context.Context, app *models.App) error {
	return s.Transaction(ctx, func(tx *Store) error {
		db := tx.db.WithContext(ctx)
		owned := db.Model(&models.Subscription{}).Select("id").Where("app_id = ?", app.ID)

		if err := db.Model(&models.App{}).
			Where("id = ? OR subscription_id IN (?)", app.ID, owned).
			Update("subscription_id", nil).Error; err != nil {
			return wrap("delete", "app", err)
		}
		if err := db.Where("app_id = ?", app.ID).Delete(&models.Subscription{}).Error; err != nil {
			return wrap("delete", "subscription", err)
		}
		if err := db.Delete(&models.App{}, "id = ?", app.ID).Error; err != nil {
			return wrap("delete", "app", err)
		}
		return nil
	})
}

// DeleteUser removes a user together with their apps, subscriptions and
// refresh tokens.
func (s *Store) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return s.Transaction(ctx, func(tx *Store) error {
		var apps []models.App
		if err := tx.db.WithContext(ctx).Where("user_id = ?", userID).Find(&apps).Error; err != nil {
			return wrap("delete", "user", err)
		}
		for i := range apps {
			if err := tx.DeleteApp(ctx, &apps[i]); err != nil {
				return err
			}
		}

		db := tx.db.WithContext(ctx)
		if err := db.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
			return wrap("delete", "refresh_token", err)
		}
		if err := db.Delete(&models.User{}, "id = ?", userID).Error; err != nil {
			return wrap("delete", "user", err)
		}
		return nil
	})
}
