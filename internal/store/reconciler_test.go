package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/models"
)

type fakeWriter struct {
	apps       map[uuid.UUID]models.App
	subWrites  int
	appWrites  int
	skipped    []bool
	subSaveErr error
	appSaveErr error
}

func newFakeWriter(apps ...models.App) *fakeWriter {
	w := &fakeWriter{apps: make(map[uuid.UUID]models.App)}
	for _, a := range apps {
		w.apps[a.ID] = a
	}
	return w
}

func (w *fakeWriter) ResolveApp(_ context.Context, sub *models.Subscription) (*models.App, error) {
	app, ok := w.apps[sub.AppID]
	if !ok {
		return nil, ErrReferentialIntegrity
	}
	return &app, nil
}

func (w *fakeWriter) SaveSubscription(_ context.Context, _ *models.Subscription, opts ...SaveOption) error {
	var o saveOptions
	for _, opt := range opts {
		opt(&o)
	}
	w.skipped = append(w.skipped, o.skipReconciliation)
	if w.subSaveErr != nil {
		return w.subSaveErr
	}
	w.subWrites++
	return nil
}

func (w *fakeWriter) PointApp(_ context.Context, app *models.App, subscriptionID uuid.UUID) error {
	if w.appSaveErr != nil {
		return w.appSaveErr
	}
	w.appWrites++
	app.SubscriptionID = &subscriptionID
	w.apps[app.ID] = *app
	return nil
}

func ptr(id uuid.UUID) *uuid.UUID { return &id }

func fixture() (models.App, *models.Subscription) {
	owner := uuid.New()
	app := models.App{ID: uuid.New(), Name: "app 1", Type: models.AppTypeWeb, Framework: models.FrameworkDjango, UserID: owner}
	sub := &models.Subscription{ID: uuid.New(), AppID: app.ID, PlanID: uuid.New(), Active: true}
	return app, sub
}

func TestReconcileRepairsFreshSubscription(t *testing.T) {
	app, sub := fixture()
	w := newFakeWriter(app)
	r := NewReconciler(nil)

	outcome, err := r.AfterSubscriptionWrite(context.Background(), w, sub, true)
	require.NoError(t, err)

	assert.Equal(t, OutcomeRepaired, outcome)
	assert.Equal(t, 1, w.subWrites)
	assert.Equal(t, 1, w.appWrites)
	assert.Equal(t, []bool{true}, w.skipped, "corrective write must suppress reconciliation")
	require.NotNil(t, sub.UserID)
	assert.Equal(t, app.UserID, *sub.UserID)
	assert.True(t, w.apps[app.ID].PointsAt(sub.ID))
	assert.Equal(t, app.ID, sub.App.ID)
}

func TestReconcileIsIdempotent(t *testing.T) {
	app, sub := fixture()
	w := newFakeWriter(app)
	r := NewReconciler(nil)

	_, err := r.AfterSubscriptionWrite(context.Background(), w, sub, true)
	require.NoError(t, err)

	outcome, err := r.AfterSubscriptionWrite(context.Background(), w, sub, false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeConsistent, outcome)
	assert.Equal(t, 1, w.subWrites, "second pass must not write")
	assert.Equal(t, 1, w.appWrites, "second pass must not write")
}

func TestReconcileRepairsStalePointerOnly(t *testing.T) {
	app, sub := fixture()
	sub.UserID = ptr(app.UserID)
	app.SubscriptionID = ptr(uuid.New())
	w := newFakeWriter(app)

	outcome, err := NewReconciler(nil).AfterSubscriptionWrite(context.Background(), w, sub, false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRepaired, outcome)
	assert.True(t, w.apps[app.ID].PointsAt(sub.ID))
	assert.LessOrEqual(t, w.subWrites, 1)
	assert.LessOrEqual(t, w.appWrites, 1)
}

func TestReconcileRepairsStaleOwnerOnly(t *testing.T) {
	app, sub := fixture()
	sub.UserID = ptr(uuid.New())
	app.SubscriptionID = ptr(sub.ID)
	w := newFakeWriter(app)

	outcome, err := NewReconciler(nil).AfterSubscriptionWrite(context.Background(), w, sub, false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRepaired, outcome)
	assert.Equal(t, app.UserID, *sub.UserID)
}

func TestReconcileSkipsUnpersistedSubscription(t *testing.T) {
	app, sub := fixture()
	sub.ID = uuid.Nil
	w := newFakeWriter(app)

	outcome, err := NewReconciler(nil).AfterSubscriptionWrite(context.Background(), w, sub, true)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.Zero(t, w.subWrites+w.appWrites)
}

func TestReconcileDanglingAppIsReferentialIntegrityError(t *testing.T) {
	_, sub := fixture()
	w := newFakeWriter()

	outcome, err := NewReconciler(nil).AfterSubscriptionWrite(context.Background(), w, sub, true)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.ErrorIs(t, err, ErrReferentialIntegrity)
	assert.Zero(t, w.subWrites+w.appWrites)
	assert.Nil(t, sub.UserID)
}

func TestReconcileSubscriptionWriteFailure(t *testing.T) {
	app, sub := fixture()
	w := newFakeWriter(app)
	w.subSaveErr = errors.New("connection reset")

	outcome, err := NewReconciler(nil).AfterSubscriptionWrite(context.Background(), w, sub, true)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.ErrorIs(t, err, w.subSaveErr)
	assert.Nil(t, sub.UserID, "owner cache restored to pre-repair state")
	assert.Zero(t, w.appWrites)
	assert.False(t, w.apps[app.ID].PointsAt(sub.ID))
}

func TestReconcileAppWriteFailure(t *testing.T) {
	app, sub := fixture()
	stale := uuid.New()
	sub.UserID = &stale
	w := newFakeWriter(app)
	w.appSaveErr = errors.New("disk full")

	outcome, err := NewReconciler(nil).AfterSubscriptionWrite(context.Background(), w, sub, false)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.ErrorIs(t, err, w.appSaveErr)
	assert.Equal(t, stale, *sub.UserID)
	assert.Equal(t, 1, w.subWrites)
	assert.False(t, w.apps[app.ID].PointsAt(sub.ID))
}
