package handlers

import (
	"storeapi/internal/models"
	"storeapi/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ItemHandler handles HTTP requests for items.
type ItemHandler struct {
	service  *services.ItemService
	validate *validator.Validate
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(service *services.ItemService) *ItemHandler {
	return &ItemHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the item routes. Only reading a single item
// requires authentication.
func (h *ItemHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	router.Get("/item/:name", authRequired, h.HandleGetItem)
	router.Post("/item/:name", h.HandleCreateItem)
	router.Put("/item/:name", h.HandlePutItem)
	router.Delete("/item/:name", h.HandleDeleteItem)
	router.Get("/items", h.HandleListItems)
}

// ItemRequest is the body of item writes. Both fields are mandatory.
type ItemRequest struct {
	Price   *float64 `json:"price" form:"price" validate:"required"`
	StoreID *uint    `json:"store_id" form:"store_id" validate:"required"`
}

var itemMessages = map[string]string{
	"price.required":    "This field cannot be left blank!",
	"store_id.required": "Every item needs a store id.",
}

func (h *ItemHandler) parseItem(c *fiber.Ctx) (services.ItemInput, fiber.Map, bool) {
	var req ItemRequest
	if body, ok := parseBody(c, h.validate, &req, itemMessages); !ok {
		return services.ItemInput{}, body, false
	}
	return services.ItemInput{Price: *req.Price, StoreID: *req.StoreID}, nil, true
}

// HandleGetItem returns a single item.
func (h *ItemHandler) HandleGetItem(c *fiber.Ctx) error {
	item, err := h.service.Get(c.UserContext(), c.Params("name"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item.JSON())
}

// HandleCreateItem creates an item unless the name is taken.
func (h *ItemHandler) HandleCreateItem(c *fiber.Ctx) error {
	in, body, ok := h.parseItem(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}

	item, err := h.service.Create(c.UserContext(), c.Params("name"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item.JSON())
}

// HandlePutItem creates the item or updates its price and store.
func (h *ItemHandler) HandlePutItem(c *fiber.Ctx) error {
	in, body, ok := h.parseItem(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}

	item, _, err := h.service.Upsert(c.UserContext(), c.Params("name"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item.JSON())
}

// HandleDeleteItem deletes the item. It succeeds whether or not the item existed.
func (h *ItemHandler) HandleDeleteItem(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("name")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Item deleted",
	})
}

// HandleListItems returns every item.
func (h *ItemHandler) HandleListItems(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]models.ItemJSON, 0, len(items))
	for i := range items {
		out = append(out, items[i].JSON())
	}
	return c.JSON(fiber.Map{
		"items": out,
	})
}
