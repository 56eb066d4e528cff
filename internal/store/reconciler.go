package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/models"
)

// SubscriptionWriter is the slice of the store the reconciler writes through.
type SubscriptionWriter interface {
	ResolveApp(ctx context.Context, sub *models.Subscription) (*models.App, error)
	SaveSubscription(ctx context.Context, sub *models.Subscription, opts ...SaveOption) error
	PointApp(ctx context.Context, app *models.App, subscriptionID uuid.UUID) error
}

type Outcome string

const (
	// OutcomeSkipped: the subscription has no persisted identity yet.
	OutcomeSkipped    Outcome = "skipped"
	OutcomeConsistent Outcome = "consistent"
	OutcomeRepaired   Outcome = "repaired"
	OutcomeFailed     Outcome = "failed"
)

// Reconciler keeps Subscription.UserID equal to the owning app's UserID and
// points App.SubscriptionID at the subscription most recently written for it.
//
// A pass issues either no writes, or exactly one subscription write followed
// by one app write. The subscription write carries SkipReconciliation so the
// pass never re-enters itself.
type Reconciler struct {
	metrics *metrics.Reconcile
}

func NewReconciler(m *metrics.Reconcile) *Reconciler {
	return &Reconciler{metrics: m}
}

// AfterSubscriptionWrite runs right after sub has been durably written.
// created reports whether that write was an insert.
func (r *Reconciler) AfterSubscriptionWrite(ctx context.Context, w SubscriptionWriter, sub *models.Subscription, created bool) (Outcome, error) {
	if sub == nil || sub.ID == uuid.Nil {
		r.metrics.ObservePass(string(OutcomeSkipped))
		return OutcomeSkipped, nil
	}

	app, err := w.ResolveApp(ctx, sub)
	if err != nil {
		return r.fail(ctx, sub, "resolve_app", err)
	}
	sub.App = app

	ownerStale := !sub.OwnedBy(app.UserID)
	pointerStale := !app.PointsAt(sub.ID)
	if !ownerStale && !pointerStale {
		r.metrics.ObservePass(string(OutcomeConsistent))
		return OutcomeConsistent, nil
	}

	prevOwner := sub.UserID
	owner := app.UserID
	sub.UserID = &owner
	if err := w.SaveSubscription(ctx, sub, SkipReconciliation()); err != nil {
		sub.UserID = prevOwner
		return r.fail(ctx, sub, "save_subscription", err)
	}
	r.metrics.ObserveWrite("subscription")

	if err := w.PointApp(ctx, app, sub.ID); err != nil {
		sub.UserID = prevOwner
		return r.fail(ctx, sub, "save_app", err)
	}
	r.metrics.ObserveWrite("app")

	slog.DebugContext(ctx, "subscription reconciled",
		"subscription_id", sub.ID.String(),
		"app_id", app.ID.String(),
		"user_id", owner.String(),
		"created", created,
		"owner_stale", ownerStale,
		"pointer_stale", pointerStale,
	)
	r.metrics.ObservePass(string(OutcomeRepaired))
	return OutcomeRepaired, nil
}

func (r *Reconciler) fail(ctx context.Context, sub *models.Subscription, step string, err error) (Outcome, error) {
	r.metrics.ObservePass(string(OutcomeFailed))
	slog.ErrorContext(ctx, "subscription reconciliation failed",
		"action", "reconcile."+step,
		"subscription_id", sub.ID.String(),
		"app_id", sub.AppID.String(),
		"error", err.Error(),
	)
	return OutcomeFailed, fmt.Errorf("reconcile subscription %s: %w", sub.ID, err)
}
