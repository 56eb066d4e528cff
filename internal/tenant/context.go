package tenant

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrNoCaller = errors.New("no authenticated caller")

func claims(c *fiber.Ctx) (jwt.MapClaims, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, ErrNoCaller
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return mc, nil
}

// GetUserID extracts the caller's user UUID from the JWT `sub` claim.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	mc, err := claims(c)
	if err != nil {
		return uuid.Nil, err
	}

	sub, ok := mc["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}

	return uuid.Parse(sub)
}

// GetEmail returns the caller's email claim, or "" when absent.
func GetEmail(c *fiber.Ctx) string {
	mc, err := claims(c)
	if err != nil {
		return ""
	}
	email, _ := mc["email"].(string)
	return email
}

const callerKey = "caller_id"

// SetCaller records the authenticated caller once it has been verified.
func SetCaller(c *fiber.Ctx, userID uuid.UUID) {
	c.Locals(callerKey, userID)
}

// CallerID returns the verified caller, falling back to the JWT subject.
func CallerID(c *fiber.Ctx) (uuid.UUID, error) {
	if id, ok := c.Locals(callerKey).(uuid.UUID); ok {
		return id, nil
	}
	return GetUserID(c)
}
