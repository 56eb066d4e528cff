package logging

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/models"
)

// Cleanup deletes system_logs older than retentionDays and reports how many
// rows went.
func Cleanup(ctx context.Context, db *gorm.DB, retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}

// StartCleanup runs Cleanup once a day until done is closed.
func StartCleanup(db *gorm.DB, retentionDays int, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deleted, err := Cleanup(context.Background(), db, retentionDays)
				if err != nil {
					slog.Error("log cleanup failed", "action", "logging.cleanup", "error", err.Error())
				} else if deleted > 0 {
					slog.Info("log cleanup completed", "deleted", deleted)
				}
			case <-done:
				return
			}
		}
	}()
}
