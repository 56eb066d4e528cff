package middleware

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/tenant"
)

// CallerRequired runs after JWTProtected. It rejects tokens whose subject
// no longer exists, so access tokens stop working once an account is
// deleted, and records the verified caller for handlers.
func CallerRequired(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := tenant.GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		var count int64
		if err := db.WithContext(c.UserContext()).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		tenant.SetCaller(c, userID)
		return c.Next()
	}
}
