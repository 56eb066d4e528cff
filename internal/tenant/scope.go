package tenant

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ForOwner returns a GORM scope restricting rows to those owned by userID.
// Apps carry the owner directly; subscriptions carry the cached copy.
func ForOwner(userID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}
