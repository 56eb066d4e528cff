package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// writeCounter counts inserts and updates per table.
type writeCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func countWrites(t *testing.T, db *gorm.DB) *writeCounter {
	t.Helper()
	c := &writeCounter{counts: make(map[string]int)}
	record := func(kind string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			if tx.Error != nil {
				return
			}
			c.mu.Lock()
			c.counts[kind+":"+tx.Statement.Table]++
			c.mu.Unlock()
		}
	}
	require.NoError(t, db.Callback().Create().After("gorm:create").Register("test:count_create", record("create")))
	require.NoError(t, db.Callback().Update().After("gorm:update").Register("test:count_update", record("update")))
	return c
}

func (c *writeCounter) get(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[key]
}

func (c *writeCounter) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts = make(map[string]int)
}

type fixtures struct {
	u1, u2 *models.User
	plan   *models.Plan
	a1, a2 *models.App
}

func seed(t *testing.T, s *Store) fixtures {
	t.Helper()
	ctx := context.Background()
	price := "1.11"
	f := fixtures{
		u1:   &models.User{Email: "lennon@thebeatles.com", Name: "john", Password: "x"},
		u2:   &models.User{Email: "lennon2@thebeatles.com", Name: "john2", Password: "x"},
		plan: &models.Plan{Name: "plan1", Description: "plan 1 desc", Price: &price},
	}
	require.NoError(t, s.SaveUser(ctx, f.u1))
	require.NoError(t, s.SaveUser(ctx, f.u2))
	require.NoError(t, s.SavePlan(ctx, f.plan))

	f.a1 = &models.App{Name: "app 1", Type: models.AppTypeWeb, Framework: models.FrameworkDjango, UserID: f.u1.ID}
	f.a2 = &models.App{Name: "app 2", Type: models.AppTypeMobile, Framework: models.FrameworkReactNative, UserID: f.u2.ID}
	require.NoError(t, s.SaveApp(ctx, f.a1))
	require.NoError(t, s.SaveApp(ctx, f.a2))
	return f
}

func reloadApp(t *testing.T, db *gorm.DB, id uuid.UUID) models.App {
	t.Helper()
	var app models.App
	require.NoError(t, db.First(&app, "id = ?", id).Error)
	return app
}

func reloadSub(t *testing.T, db *gorm.DB, id uuid.UUID) models.Subscription {
	t.Helper()
	var sub models.Subscription
	require.NoError(t, db.First(&sub, "id = ?", id).Error)
	return sub
}

func TestSaveSubscriptionConvergesOnCreate(t *testing.T) {
	db := setupTestDB(t)
	s := New(db)
	f := seed(t, s)

	sub := &models.Subscription{AppID: f.a1.ID, PlanID: f.plan.ID, Active: true}
	require.NoError(t, s.SaveSubscription(context.Background(), sub))
	require.NotEqual(t, uuid.Nil, sub.ID)

	stored := reloadSub(t, db, sub.ID)
	require.NotNil(t, stored.UserID)
	assert.Equal(t, f.u1.ID, *stored.UserID)
	assert.True(t, stored.Active)

	app := reloadApp(t, db, f.a1.ID)
	assert.True(t, app.PointsAt(sub.ID))
}

func TestSaveSubscriptionBoundsWrites(t *testing.T) {
	db := setupTestDB(t)
	s := New(db)
	f := seed(t, s)
	counter := countWrites(t, db)

	sub := &models.Subscription{AppID: f.a1.ID, PlanID: f.plan.ID, Active: true}
	require.NoError(t, s.SaveSubscription(context.Background(), sub))

	assert.Equal(t, 1, counter.get("create:subscriptions"))
	assert.Equal(t, 1, counter.get("update:subscriptions"))
	assert.Equal(t, 1, counter.get("update:apps"))

	// already consistent: only the caller's own write happens
	counter.reset()
	sub.Active = false
	require.NoError(t, s.SaveSubscription(context.Background(), sub))
	assert.Equal(t, 1, counter.get("update:subscriptions"))
	assert.Zero(t, counter.get("update:apps"))
}

func TestSaveSubscriptionSkipReconciliationIsPerCall(t *testing.T) {
	db := setupTestDB(t)
	s := New(db)
	f := seed(t, s)
	ctx := context.Background()

	skipped := &models.Subscription{AppID: f.a1.ID, PlanID: f.plan.ID, Active: true}
	require.NoError(t, s.SaveSubscription(ctx, skipped, SkipReconciliation()))
	assert.Nil(t, reloadSub(t, db, skipped.ID).UserID)
	assert.Nil(t, reloadApp(t, db, f.a1.ID).SubscriptionID)

	// the next independent write is reconciled again
	require.NoError(t, s.SaveSubscription(ctx, skipped))
	assert.Equal(t, f.u1.ID, *reloadSub(t, db, skipped.ID).UserID)
	assert.True(t, reloadApp(t, db, f.a1.ID).PointsAt(skipped.ID))
}

func TestSaveSubscriptionRepointsApp(t *testing.T) {
	db := setupTestDB(t)
	s := New(db)
	f := seed(t, s)
	ctx := context.Background()

	s1 := &models.Subscription{AppID: f.a1.ID, PlanID: f.plan.ID, Active: true}
	require.NoError(t, s.SaveSubscription(ctx, s1))
	before := reloadSub(t, db, s1.ID)

	s2 := &models.Subscription{AppID: f.a1.ID, PlanID: f.plan.ID, Active: true}
	require.NoError(t, s.SaveSubscription(ctx, s2))

	assert.True(t, reloadApp(t, db, f.a1.ID).PointsAt(s2.ID))
	after := reloadSub(t, db, s1.ID)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt, "S1 must not be touched")
	assert.Equal(t, *before.UserID, *after.UserID)
}

func TestSaveSubscriptionCrossAppMoveLeavesOldPointer(t *testing.T) {
	db := setupTestDB(t)
	s := New(db)
	f := seed(t, s)
	ctx := context.Background()

	sub := &models.Subscription{AppID: f.a1.ID, PlanID: f.plan.ID, Active: true}
	require.NoError(t, s.SaveSubscription(ctx, sub))

	sub.AppID = f.a2.ID
	require.NoError(t, s.SaveSubscription(ctx, sub))

	stored := reloadSub(t, db, sub.ID)
	assert.Equal(t, f.u2.ID, *stored.UserID)
	assert.True(t, reloadApp(t, db, f.a2.ID).PointsAt(sub.ID))
	// known gap: the previous app keeps pointing at the moved subscription
	assert.True(t, reloadApp(t, db, f.a1.ID).PointsAt(sub.ID))
}

func TestSaveSubscriptionDanglingAppRollsBack(t *testing.T) {
	db := setupTestDB(t)
	s := New(db)
	f := seed(t, s)

	sub := &models.Subscription{AppID: uuid.New(), PlanID: f.plan.ID, Active: true}
	err := s.SaveSubscription(context.Background(), sub)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReferentialIntegrity)
	assert.Equal(t, uuid.Nil, sub.ID)

	var count int64
	require.NoError(t, db.Model(&models.Subscription{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSaveSubscriptionFailedAppWriteRollsBack(t *testing.T) {
	db := setupTestDB(t)
	s := New(db)
	f := seed(t, s)
	ctx := context.Background()

	sub := &models.Subscription{AppID: f.a1.ID, PlanID: f.plan.ID, Active: true}
	require.NoError(t, s.SaveSubscription(ctx, sub))

	diskFull := errors.New("disk full")
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("test:fail_apps", func(tx *gorm.DB) {
		if tx.Statement.Table == "apps" {
			_ = tx.AddError(diskFull)
		}
	}))

	sub.AppID = f.a2.ID
	err := s.SaveSubscription(ctx, sub)
	require.Error(t, err)
	assert.ErrorIs(t, err, diskFull)

	var storageErr *StorageError
	assert.True(t, errors.As(err, &storageErr))

	stored := reloadSub(t, db, sub.ID)
	assert.Equal(t, f.a1.ID, stored.AppID, "primary write rolled back")
	assert.Equal(t, f.u1.ID, *stored.UserID, "owner cache rolled back")
	assert.Nil(t, reloadApp(t, db, f.a2.ID).SubscriptionID)
}

func TestResolveApp(t *testing.T) {
	db := setupTestDB(t)
	s := New(db)
	f := seed(t, s)
	ctx := context.Background()

	app, err := s.ResolveApp(ctx, &models.Subscription{AppID: f.a2.ID})
	require.NoError(t, err)
	assert.Equal(t, f.u2.ID, app.UserID)

	owner, err := s.ResolveOwner(ctx, app)
	require.NoError(t, err)
	assert.Equal(t, "lennon2@thebeatles.com", owner.Email)

	_, err = s.ResolveApp(ctx, &models.Subscription{})
	assert.ErrorIs(t, err, ErrReferentialIntegrity)
}

func TestDeleteAppRemovesSubscriptionsAndPointers(t *testing.T) {
	db := setupTestDB(t)
	s := New(db)
	f := seed(t, s)
	ctx := context.Background()

	// moved subscription: a1 keeps a stale pointer to a subscription now on a2
	moved := &models.Subscription{AppID: f.a1.ID, PlanID: f.plan.ID, Active: true}
	require.NoError(t, s.SaveSubscription(ctx, moved))
	moved.AppID = f.a2.ID
	require.NoError(t, s.SaveSubscription(ctx, moved))

	require.NoError(t, s.DeleteApp(ctx, f.a2))

	var count int64
	require.NoError(t, db.Model(&models.App{}).Where("id = ?", f.a2.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.Subscription{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Nil(t, reloadApp(t, db, f.a1.ID).SubscriptionID)
}

func TestDeleteUserCascades(t *testing.T) {
	db := setupTestDB(t)
	s := New(db)
	f := seed(t, s)
	ctx := context.Background()

	require.NoError(t, s.SaveSubscription(ctx, &models.Subscription{AppID: f.a1.ID, PlanID: f.plan.ID, Active: true}))
	require.NoError(t, db.Create(&models.RefreshToken{UserID: f.u1.ID, TokenHash: "abc", ExpiresAt: time.Now().Add(time.Hour)}).Error)

	require.NoError(t, s.DeleteUser(ctx, f.u1.ID))

	for _, model := range []interface{}{&models.Subscription{}, &models.RefreshToken{}} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}
	var apps []models.App
	require.NoError(t, db.Find(&apps).Error)
	require.Len(t, apps, 1)
	assert.Equal(t, f.a2.ID, apps[0].ID)
}

func TestTransactionNestsIntoOuterTransaction(t *testing.T) {
	db := setupTestDB(t)
	s := New(db)
	f := seed(t, s)
	ctx := context.Background()

	rollback := errors.New("rollback")
	err := s.Transaction(ctx, func(tx *Store) error {
		sub := &models.Subscription{AppID: f.a1.ID, PlanID: f.plan.ID, Active: true}
		require.NoError(t, tx.SaveSubscription(ctx, sub))
		return rollback
	})
	assert.ErrorIs(t, err, rollback)

	var count int64
	require.NoError(t, db.Model(&models.Subscription{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Nil(t, reloadApp(t, db, f.a1.ID).SubscriptionID)
}

func TestSaveAppKeepsCurrentSubscription(t *testing.T) {
	db := setupTestDB(t)
	s := New(db)
	f := seed(t, s)
	ctx := context.Background()

	// read before the subscription exists, written back after
	stale := reloadApp(t, db, f.a1.ID)
	sub := &models.Subscription{AppID: f.a1.ID, PlanID: f.plan.ID, Active: true}
	require.NoError(t, s.SaveSubscription(ctx, sub))

	stale.Name = "renamed"
	require.NoError(t, s.SaveApp(ctx, &stale))

	got := reloadApp(t, db, f.a1.ID)
	assert.Equal(t, "renamed", got.Name)
	assert.True(t, got.PointsAt(sub.ID))
}

func TestPointAppKeepsConcurrentRename(t *testing.T) {
	db := setupTestDB(t)
	s := New(db)
	f := seed(t, s)
	ctx := context.Background()

	stale := reloadApp(t, db, f.a1.ID)
	require.NoError(t, db.Model(&models.App{}).Where("id = ?", f.a1.ID).Update("name", "renamed").Error)

	sub := &models.Subscription{AppID: f.a1.ID, PlanID: f.plan.ID, Active: true}
	require.NoError(t, s.SaveSubscription(ctx, sub, SkipReconciliation()))
	require.NoError(t, s.PointApp(ctx, &stale, sub.ID))

	got := reloadApp(t, db, f.a1.ID)
	assert.Equal(t, "renamed", got.Name)
	assert.True(t, got.PointsAt(sub.ID))
	assert.True(t, stale.PointsAt(sub.ID))
}
