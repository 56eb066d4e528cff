package services

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/store"
)

func setupStore(t *testing.T) (*store.Store, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return store.New(db), db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: time.Hour,
	}
}

func createUser(t *testing.T, st *store.Store, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Name: email, Password: "x", Role: models.RoleUser}
	require.NoError(t, st.SaveUser(context.Background(), u))
	return u
}

func createPlan(t *testing.T, st *store.Store, name, price string) *models.Plan {
	t.Helper()
	p := &models.Plan{Name: name, Description: name + " plan", Price: &price}
	require.NoError(t, st.SavePlan(context.Background(), p))
	return p
}

func createApp(t *testing.T, svc *AppService, owner uuid.UUID, name string) *models.App {
	t.Helper()
	app, err := svc.Create(context.Background(), owner, &dto.AppRequest{
		Name:      strPtr(name),
		Type:      strPtr(models.AppTypeWeb),
		Framework: strPtr(models.FrameworkDjango),
	})
	require.NoError(t, err)
	return app
}

func strPtr(s string) *string       { return &s }
func boolPtr(b bool) *bool          { return &b }
func idPtr(id uuid.UUID) *uuid.UUID { return &id }
