package tenant

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserID(t *testing.T) {
	userID := uuid.New()
	cases := []struct {
		name    string
		token   *jwt.Token
		wantErr bool
	}{
		{name: "valid", token: jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": userID.String(), "email": "a@b.c"})},
		{name: "missing_sub", token: jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{}), wantErr: true},
		{name: "bad_uuid", token: jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "nope"}), wantErr: true},
		{name: "no_token", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				if tc.token != nil {
					c.Locals("user", tc.token)
				}
				got, err := GetUserID(c)
				if tc.wantErr {
					assert.Error(t, err)
					return c.SendStatus(fiber.StatusUnauthorized)
				}
				assert.NoError(t, err)
				assert.Equal(t, userID, got)
				assert.Equal(t, "a@b.c", GetEmail(c))
				return c.SendStatus(fiber.StatusNoContent)
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
			require.NoError(t, err)
			if tc.wantErr {
				assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
			} else {
				assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
			}
		})
	}
}
