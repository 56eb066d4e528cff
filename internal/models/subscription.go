package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscription attaches a plan to an app.
//
// UserID caches App.UserID so ownership filters don't need a join. It is
// nil until the first reconciliation pass and is maintained by the store.
type Subscription struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Active    bool       `gorm:"not null" json:"active"`
	PlanID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"plan"`
	AppID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"app"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Plan      *Plan      `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE" json:"-"`
	App       *App       `gorm:"foreignKey:AppID;constraint:OnDelete:CASCADE" json:"-"`
	User      *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// OwnedBy reports whether the cached owner is userID.
func (s Subscription) OwnedBy(userID uuid.UUID) bool {
	return s.UserID != nil && *s.UserID == userID
}
