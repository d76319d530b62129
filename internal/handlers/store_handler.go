package handlers

import (
	"storeapi/internal/services"

	"github.com/gofiber/fiber/v2"
)

// StoreHandler handles HTTP requests for stores. None of its routes require authentication.
type StoreHandler struct {
	service *services.StoreService
}

// NewStoreHandler creates a new StoreHandler.
func NewStoreHandler(service *services.StoreService) *StoreHandler {
	return &StoreHandler{
		service: service,
	}
}

// RegisterRoutes registers the store routes with the Fiber app.
func (h *StoreHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/store/:name", h.HandleGetStore)
	router.Post("/store/:name", h.HandleCreateStore)
	router.Delete("/store/:name", h.HandleDeleteStore)
	router.Get("/stores", h.HandleListStores)
}

func (h *StoreHandler) HandleGetStore(c *fiber.Ctx) error {
	store, err := h.service.Get(c.UserContext(), c.Params("name"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(store)
}

func (h *StoreHandler) HandleCreateStore(c *fiber.Ctx) error {
	store, err := h.service.Create(c.UserContext(), c.Params("name"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(store)
}

// HandleDeleteStore deletes an empty store. A store that still owns items is
// rejected with 400.
func (h *StoreHandler) HandleDeleteStore(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("name")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Store deleted",
	})
}

func (h *StoreHandler) HandleListStores(c *fiber.Ctx) error {
	stores, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"stores": stores,
	})
}
