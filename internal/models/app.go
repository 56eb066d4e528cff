package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AppTypeWeb    = "Web"
	AppTypeMobile = "Mobile"

	FrameworkDjango      = "Django"
	FrameworkReactNative = "React Native"
)

// App is a web or mobile project registered by a user.
//
// SubscriptionID is a cache of the subscription most recently reconciled
// against this app. It is maintained by the store's reconciler and is never
// written by request handlers.
type App struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string        `gorm:"size:50;not null" json:"name"`
	Description    string        `gorm:"type:text" json:"description"`
	Type           string        `gorm:"size:20;not null" json:"type"`
	Framework      string        `gorm:"size:20;not null" json:"framework"`
	DomainName     string        `gorm:"size:50" json:"domain_name"`
	Screenshot     string        `gorm:"size:200" json:"screenshot"`
	SubscriptionID *uuid.UUID    `gorm:"type:uuid;index" json:"subscription"`
	UserID         uuid.UUID     `gorm:"type:uuid;not null;index" json:"user"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	User           *User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Subscription   *Subscription `gorm:"foreignKey:SubscriptionID;constraint:OnDelete:SET NULL" json:"-"`
}

func (a *App) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (App) TableName() string {
	return "apps"
}

// PointsAt reports whether the app's cached current subscription is id.
func (a App) PointsAt(id uuid.UUID) bool {
	return a.SubscriptionID != nil && *a.SubscriptionID == id
}

func ValidAppType(t string) bool {
	return t == AppTypeWeb || t == AppTypeMobile
}

func ValidFramework(f string) bool {
	return f == FrameworkDjango || f == FrameworkReactNative
}
