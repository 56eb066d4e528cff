package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/tenant"
)

// AdminRequired lets a request through when any of these hold:
// the X-Admin-Token header matches ADMIN_TOKEN, the caller's email is in
// ADMIN_EMAILS, or the caller's user row has the admin role.
func AdminRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)

	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" && c.Get("X-Admin-Token") == cfg.AdminToken {
			return c.Next()
		}

		userID, err := tenant.CallerID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		if contains(adminEmails, strings.ToLower(tenant.GetEmail(c))) {
			return c.Next()
		}

		var user models.User
		if err := db.WithContext(c.UserContext()).First(&user, "id = ?", userID).Error; err == nil {
			if user.Role == models.RoleAdmin {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(p))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
