package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SystemLog stores ERROR-level log records for later inspection.
type SystemLog struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Timestamp      time.Time      `gorm:"not null;index" json:"timestamp"`
	Level          string         `gorm:"size:10;not null;index" json:"level"`
	Message        string         `gorm:"type:text" json:"message"`
	RequestID      string         `gorm:"size:36;index" json:"request_id"`
	UserID         *string        `gorm:"size:36;index" json:"user_id"`
	AppID          *string        `gorm:"size:36" json:"app_id"`
	SubscriptionID *string        `gorm:"size:36" json:"subscription_id"`
	Action         string         `gorm:"size:100" json:"action"`
	Error          string         `gorm:"type:text" json:"error"`
	Extra          datatypes.JSON `json:"extra"`
	CreatedAt      time.Time      `json:"created_at"`
}
