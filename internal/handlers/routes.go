package handlers

import (
	"storeapi/internal/middleware"
	"storeapi/internal/services"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the auth, item and store resources on router.
func RegisterRoutes(router fiber.Router, authService *services.AuthService, itemService *services.ItemService, storeService *services.StoreService) {
	NewAuthHandler(authService).RegisterRoutes(router)
	NewItemHandler(itemService).RegisterRoutes(router, middleware.AuthRequired(authService))
	NewStoreHandler(storeService).RegisterRoutes(router)
}
