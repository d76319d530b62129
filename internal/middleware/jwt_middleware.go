package middleware

import (
	"log"
	"strings"

	"storeapi/internal/models"
	"storeapi/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserLocal is the fiber.Ctx locals key holding the authenticated *models.User.
const UserLocal = "user"

// AuthRequired is a Fiber middleware that rejects requests without a valid JWT
// and resolves the token to a user before calling the next handler.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>" or "JWT <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || (!strings.EqualFold(parts[0], "Bearer") && !strings.EqualFold(parts[0], "JWT")) || parts[1] == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		user, err := authService.Identity(c.UserContext(), claims)
		if err != nil || user == nil {
			if err != nil {
				log.Printf("Identity resolution failed: %v", err)
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		c.Locals(UserLocal, user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by AuthRequired, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(UserLocal).(*models.User)
	return user
}
